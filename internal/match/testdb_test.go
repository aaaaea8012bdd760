package match

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/quattro-app/quattro/internal/level"
	"github.com/quattro-app/quattro/internal/user"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A second pooled connection to :memory: would see an empty database, so
	// pin the pool to a single connection.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&user.User{}, &user.RefreshToken{}, &Match{}, &Registration{}, &Feedback{})
	require.NoError(t, err)
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name string, declared level.Level) *user.User {
	t.Helper()
	u := &user.User{
		Username:      name,
		Email:         fmt.Sprintf("%s@example.com", name),
		Password:      "irrelevant",
		Role:          "player",
		DeclaredLevel: declared,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createTestMatch(t *testing.T, repo MatchRepository, creatorID uint, required level.Level) *Match {
	t.Helper()
	m := &Match{
		Type:            TypeFixed,
		Status:          StatusWaiting,
		RequiredLevel:   required,
		ScheduledAt:     time.Now().Add(24 * time.Hour),
		Location:        "Centro Padel",
		CreatedByUserID: creatorID,
	}
	require.NoError(t, repo.CreateMatch(m))
	return m
}

// eventRecorder collects lifecycle events from an observer callback.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) observe(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) ofType(eventType EventType) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
