package user

import (
	"time"

	"github.com/quattro-app/quattro/internal/level"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username string `gorm:"unique;not null" json:"username"`
	Email    string `gorm:"unique;not null" json:"email"`
	Password string `json:"-"`
	Role     string `gorm:"default:'player'" json:"role"`

	// DeclaredLevel is self-reported at registration. PerceivedLevel is
	// derived from peer feedback and stays NULL until the first rating
	// arrives; only the feedback service writes it.
	DeclaredLevel  level.Level  `gorm:"not null" json:"declared_level"`
	PerceivedLevel *level.Level `json:"perceived_level,omitempty"`

	MatchesPlayed int `gorm:"default:0" json:"matches_played"`
}

type RefreshToken struct {
	gorm.Model
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Revoked   bool      `gorm:"default:false" json:"revoked"`
}
