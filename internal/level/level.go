package level

import "fmt"

// Level is a player skill tier. The set is ordered: it is used both for
// required-level filtering on matches and for sorting match lists.
type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
	Professional Level = "professional"
)

// ordinals fixes the ordering of the scale. Beginner is the lowest tier.
var ordinals = map[Level]int{
	Beginner:     0,
	Intermediate: 1,
	Advanced:     2,
	Professional: 3,
}

// All returns the levels in ascending order.
func All() []Level {
	return []Level{Beginner, Intermediate, Advanced, Professional}
}

// Ordinal returns the position of l in the scale, or -1 for an unknown value.
func (l Level) Ordinal() int {
	ord, ok := ordinals[l]
	if !ok {
		return -1
	}
	return ord
}

// Valid reports whether l is one of the defined tiers.
func (l Level) Valid() bool {
	_, ok := ordinals[l]
	return ok
}

// Less reports whether l is a lower tier than other.
func (l Level) Less(other Level) bool {
	return l.Ordinal() < other.Ordinal()
}

// Parse converts a string into a Level, rejecting unknown values.
func Parse(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown level %q", s)
	}
	return l, nil
}

func (l Level) String() string {
	return string(l)
}
