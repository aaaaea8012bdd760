package match

import (
	"time"

	"github.com/quattro-app/quattro/internal/level"
	"github.com/quattro-app/quattro/internal/user"
	"gorm.io/gorm"
)

// PlayersPerMatch is the fixed group size. A match is confirmed the moment
// this many active registrations exist.
const PlayersPerMatch = 4

type MatchType string

const (
	// TypeFixed matches have date, time and place set at creation.
	TypeFixed MatchType = "fixed"
	// TypeProposed matches gather players first; details are negotiated after.
	TypeProposed MatchType = "proposed"
)

type MatchStatus string

const (
	StatusWaiting   MatchStatus = "waiting"
	StatusConfirmed MatchStatus = "confirmed"
	StatusFinished  MatchStatus = "finished"
)

type RegistrationStatus string

const (
	RegistrationJoined    RegistrationStatus = "joined"
	RegistrationCancelled RegistrationStatus = "cancelled"
)

// Match is one scheduled or proposed game of four players.
type Match struct {
	gorm.Model
	Type            MatchType   `json:"type" gorm:"index;not null;default:'fixed'"`
	Status          MatchStatus `json:"status" gorm:"index;not null;default:'waiting'"`
	RequiredLevel   level.Level `json:"required_level" gorm:"index;not null"`
	ScheduledAt     time.Time   `json:"scheduled_at" gorm:"index"`
	Location        string      `json:"location,omitempty"`
	Description     string      `json:"description,omitempty" gorm:"type:text"`
	CreatedByUserID uint        `json:"created_by_user_id" gorm:"index;not null"`
	CreatedByUser   user.User   `json:"created_by_user" gorm:"foreignKey:CreatedByUserID"`

	Registrations []Registration `json:"registrations,omitempty" gorm:"foreignKey:MatchID"`
	Feedback      []Feedback     `json:"feedback,omitempty" gorm:"foreignKey:MatchID"`
}

// ActiveCount counts the joined registrations preloaded on the match. Use
// MatchRepository.CountActiveRegistrations when a fresh number is required.
func (m *Match) ActiveCount() int {
	n := 0
	for _, r := range m.Registrations {
		if r.Status == RegistrationJoined {
			n++
		}
	}
	return n
}

// Registration joins one user to one match. Cancelled rows are kept for
// history and reactivated on re-join, so a (user, match) pair never holds
// two joined rows at once.
type Registration struct {
	gorm.Model
	MatchID      uint               `json:"match_id" gorm:"index;not null;uniqueIndex:idx_match_user_registration"`
	Match        Match              `json:"-" gorm:"foreignKey:MatchID"`
	UserID       uint               `json:"user_id" gorm:"index;not null;uniqueIndex:idx_match_user_registration"`
	User         user.User          `json:"user" gorm:"foreignKey:UserID"`
	Status       RegistrationStatus `json:"status" gorm:"index;not null;default:'joined'"`
	RegisteredAt time.Time          `json:"registered_at" gorm:"not null"`
}

// Feedback is one player's post-match rating of a peer. Immutable once
// created; at most one per (author, target, match).
type Feedback struct {
	gorm.Model
	MatchID        uint        `json:"match_id" gorm:"index;not null;uniqueIndex:idx_feedback_triple"`
	Match          Match       `json:"-" gorm:"foreignKey:MatchID"`
	AuthorID       uint        `json:"author_id" gorm:"index;not null;uniqueIndex:idx_feedback_triple"`
	Author         user.User   `json:"author" gorm:"foreignKey:AuthorID"`
	TargetID       uint        `json:"target_id" gorm:"index;not null;uniqueIndex:idx_feedback_triple"`
	Target         user.User   `json:"target" gorm:"foreignKey:TargetID"`
	SuggestedLevel level.Level `json:"suggested_level" gorm:"not null"`
	Comment        string      `json:"comment,omitempty" gorm:"size:500"`
}
