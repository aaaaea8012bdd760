package match

import (
	"testing"
	"time"

	"github.com/quattro-app/quattro/internal/level"
	"github.com/stretchr/testify/assert"
)

func matchAt(id uint, when time.Time, required level.Level, joined int) Match {
	m := Match{
		Status:        StatusWaiting,
		RequiredLevel: required,
		ScheduledAt:   when,
	}
	m.ID = id
	for i := 0; i < joined; i++ {
		m.Registrations = append(m.Registrations, Registration{Status: RegistrationJoined})
	}
	return m
}

func matchIDs(matches []Match) []uint {
	ids := make([]uint, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.ID)
	}
	return ids
}

func TestSortMatchesByDate(t *testing.T) {
	base := time.Date(2026, time.September, 1, 18, 0, 0, 0, time.UTC)
	in := []Match{
		matchAt(1, base.Add(2*time.Hour), level.Beginner, 0),
		matchAt(2, base, level.Beginner, 0),
		matchAt(3, base.Add(time.Hour), level.Beginner, 0),
	}

	out := SortMatchesByDate(in)
	assert.Equal(t, []uint{2, 3, 1}, matchIDs(out))
}

func TestSortMatchesByFill(t *testing.T) {
	base := time.Now()
	in := []Match{
		matchAt(1, base, level.Beginner, 1),
		matchAt(2, base, level.Beginner, 3),
		matchAt(3, base, level.Beginner, 2),
	}

	out := SortMatchesByFill(in)
	assert.Equal(t, []uint{2, 3, 1}, matchIDs(out))
}

func TestSortMatchesByFillIgnoresCancelledRegistrations(t *testing.T) {
	base := time.Now()
	a := matchAt(1, base, level.Beginner, 1)
	a.Registrations = append(a.Registrations,
		Registration{Status: RegistrationCancelled},
		Registration{Status: RegistrationCancelled},
	)
	b := matchAt(2, base, level.Beginner, 2)

	out := SortMatchesByFill([]Match{a, b})
	assert.Equal(t, []uint{2, 1}, matchIDs(out))
}

func TestSortMatchesByLevel(t *testing.T) {
	base := time.Now()
	in := []Match{
		matchAt(1, base, level.Advanced, 0),
		matchAt(2, base, level.Beginner, 0),
		matchAt(3, base, level.Intermediate, 0),
	}

	out := SortMatchesByLevel(in)
	assert.Equal(t, []uint{2, 3, 1}, matchIDs(out))
}

func TestSortIsStableOnTies(t *testing.T) {
	base := time.Now()
	in := []Match{
		matchAt(1, base, level.Intermediate, 2),
		matchAt(2, base, level.Intermediate, 2),
		matchAt(3, base, level.Intermediate, 2),
	}

	assert.Equal(t, []uint{1, 2, 3}, matchIDs(SortMatchesByDate(in)))
	assert.Equal(t, []uint{1, 2, 3}, matchIDs(SortMatchesByFill(in)))
	assert.Equal(t, []uint{1, 2, 3}, matchIDs(SortMatchesByLevel(in)))
}

func TestSortDoesNotMutateInput(t *testing.T) {
	base := time.Now()
	in := []Match{
		matchAt(1, base.Add(time.Hour), level.Advanced, 3),
		matchAt(2, base, level.Beginner, 1),
	}

	_ = SortMatchesByDate(in)
	_ = SortMatchesByFill(in)
	_ = SortMatchesByLevel(in)
	assert.Equal(t, []uint{1, 2}, matchIDs(in))
}

func TestSortEmptyAndSingleton(t *testing.T) {
	assert.Empty(t, SortMatchesByDate(nil))
	assert.Empty(t, SortMatchesByFill([]Match{}))

	one := []Match{matchAt(7, time.Now(), level.Beginner, 0)}
	assert.Equal(t, []uint{7}, matchIDs(SortMatchesByLevel(one)))
}

func TestApplySortUnknownNameFallsBackToDate(t *testing.T) {
	base := time.Date(2026, time.September, 1, 18, 0, 0, 0, time.UTC)
	in := []Match{
		matchAt(1, base.Add(time.Hour), level.Beginner, 0),
		matchAt(2, base, level.Beginner, 0),
	}
	strategies := DefaultSortStrategies()

	assert.Equal(t, []uint{2, 1}, matchIDs(ApplySort(strategies, "popularity", in)))
	assert.Equal(t, []uint{2, 1}, matchIDs(ApplySort(strategies, "", in)))
	assert.Equal(t, []uint{1, 2}, matchIDs(ApplySort(strategies, SortByFill, in)))
}
