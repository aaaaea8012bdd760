package match

import (
	"fmt"
	"testing"

	"github.com/quattro-app/quattro/internal/level"
	"github.com/quattro-app/quattro/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func fillMatch(t *testing.T, db *gorm.DB, ledger *RegistrationLedger, matchID uint, n int) []*user.User {
	t.Helper()
	players := make([]*user.User, 0, n)
	for i := 0; i < n; i++ {
		p := createTestUser(t, db, fmt.Sprintf("player%d", i), level.Intermediate)
		_, err := ledger.Join(p.ID, matchID)
		require.NoError(t, err)
		players = append(players, p)
	}
	return players
}

func TestMatchStaysWaitingBelowFourPlayers(t *testing.T) {
	db := setupTestDB(t)
	ledger, _, repo := newLedger(db)

	creator := createTestUser(t, db, "creator", level.Intermediate)
	m := createTestMatch(t, repo, creator.ID, level.Intermediate)

	fillMatch(t, db, ledger, m.ID, 3)

	loaded, err := repo.GetMatchByID(m.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, loaded.Status)
	assert.Equal(t, 3, loaded.ActiveCount())
}

func TestFourthJoinConfirmsMatchOnce(t *testing.T) {
	db := setupTestDB(t)
	ledger, engine, repo := newLedger(db)

	recorder := &eventRecorder{}
	engine.Subscribe(recorder.observe)

	creator := createTestUser(t, db, "creator", level.Intermediate)
	m := createTestMatch(t, repo, creator.ID, level.Intermediate)

	fillMatch(t, db, ledger, m.ID, PlayersPerMatch)

	loaded, err := repo.GetMatchByID(m.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, loaded.Status)

	confirmed := recorder.ofType(EventMatchConfirmed)
	require.Len(t, confirmed, 1)
	assert.Equal(t, m.ID, confirmed[0].Match.ID)
	assert.Equal(t, StatusConfirmed, confirmed[0].Match.Status)
	assert.NotEmpty(t, confirmed[0].ID)
}

func TestConcurrentFillConfirmsExactlyOnce(t *testing.T) {
	db := setupTestDB(t)
	ledger, engine, repo := newLedger(db)

	recorder := &eventRecorder{}
	engine.Subscribe(recorder.observe)

	creator := createTestUser(t, db, "creator", level.Intermediate)
	m := createTestMatch(t, repo, creator.ID, level.Intermediate)
	fillMatch(t, db, ledger, m.ID, 2)

	p3 := createTestUser(t, db, "third", level.Intermediate)
	p4 := createTestUser(t, db, "fourth", level.Intermediate)

	done := make(chan error, 2)
	go func() {
		_, err := ledger.Join(p3.ID, m.ID)
		done <- err
	}()
	go func() {
		_, err := ledger.Join(p4.ID, m.ID)
		done <- err
	}()
	require.NoError(t, <-done)
	require.NoError(t, <-done)

	count, err := ledger.ActiveCount(m.ID)
	require.NoError(t, err)
	assert.EqualValues(t, PlayersPerMatch, count)

	loaded, err := repo.GetMatchByID(m.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, loaded.Status)
	assert.Len(t, recorder.ofType(EventMatchConfirmed), 1)
}

func TestLeaveDoesNotRevertConfirmedMatch(t *testing.T) {
	db := setupTestDB(t)
	ledger, _, repo := newLedger(db)

	creator := createTestUser(t, db, "creator", level.Intermediate)
	m := createTestMatch(t, repo, creator.ID, level.Intermediate)
	players := fillMatch(t, db, ledger, m.ID, PlayersPerMatch)

	require.NoError(t, ledger.Leave(players[0].ID, m.ID))

	loaded, err := repo.GetMatchByID(m.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, loaded.Status)
	assert.Equal(t, 3, loaded.ActiveCount())
}

func TestFinishConfirmedMatch(t *testing.T) {
	db := setupTestDB(t)
	ledger, engine, repo := newLedger(db)

	recorder := &eventRecorder{}
	engine.Subscribe(recorder.observe)

	creator := createTestUser(t, db, "creator", level.Intermediate)
	m := createTestMatch(t, repo, creator.ID, level.Intermediate)
	players := fillMatch(t, db, ledger, m.ID, PlayersPerMatch)

	finished, err := engine.Finish(m.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, finished.Status)

	events := recorder.ofType(EventMatchFinished)
	require.Len(t, events, 1)
	assert.Equal(t, m.ID, events[0].Match.ID)

	// Every active participant gets their matches-played counter bumped.
	for _, p := range players {
		var u user.User
		require.NoError(t, db.First(&u, p.ID).Error)
		assert.Equal(t, 1, u.MatchesPlayed, "player %s", u.Username)
	}
}

func TestFinishWaitingMatchFails(t *testing.T) {
	db := setupTestDB(t)
	_, engine, repo := newLedger(db)

	creator := createTestUser(t, db, "creator", level.Intermediate)
	m := createTestMatch(t, repo, creator.ID, level.Intermediate)

	_, err := engine.Finish(m.ID)
	assert.ErrorIs(t, err, ErrInvalidMatchStatus)

	loaded, err := repo.GetMatchByID(m.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusWaiting, loaded.Status)
}

func TestFinishTwiceFails(t *testing.T) {
	db := setupTestDB(t)
	ledger, engine, repo := newLedger(db)

	creator := createTestUser(t, db, "creator", level.Intermediate)
	m := createTestMatch(t, repo, creator.ID, level.Intermediate)
	fillMatch(t, db, ledger, m.ID, PlayersPerMatch)

	_, err := engine.Finish(m.ID)
	require.NoError(t, err)

	_, err = engine.Finish(m.ID)
	assert.ErrorIs(t, err, ErrInvalidMatchStatus)
}

func TestConcurrentFinishesYieldOneSuccess(t *testing.T) {
	db := setupTestDB(t)
	ledger, engine, repo := newLedger(db)

	recorder := &eventRecorder{}
	engine.Subscribe(recorder.observe)

	creator := createTestUser(t, db, "creator", level.Intermediate)
	m := createTestMatch(t, repo, creator.ID, level.Intermediate)
	players := fillMatch(t, db, ledger, m.ID, PlayersPerMatch)

	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := engine.Finish(m.ID)
			done <- err
		}()
	}

	var successes, rejected int
	for i := 0; i < 2; i++ {
		switch err := <-done; {
		case err == nil:
			successes++
		case assert.ErrorIs(t, err, ErrInvalidMatchStatus):
			rejected++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, rejected)

	// One transition: one event, one counter bump per participant.
	assert.Len(t, recorder.ofType(EventMatchFinished), 1)
	for _, p := range players {
		var u user.User
		require.NoError(t, db.First(&u, p.ID).Error)
		assert.Equal(t, 1, u.MatchesPlayed)
	}
}

func TestFinishUnknownMatchFails(t *testing.T) {
	db := setupTestDB(t)
	_, engine, _ := newLedger(db)

	_, err := engine.Finish(4242)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestJoinFinishedMatchFails(t *testing.T) {
	db := setupTestDB(t)
	ledger, engine, repo := newLedger(db)

	creator := createTestUser(t, db, "creator", level.Intermediate)
	m := createTestMatch(t, repo, creator.ID, level.Intermediate)
	players := fillMatch(t, db, ledger, m.ID, PlayersPerMatch)

	_, err := engine.Finish(m.ID)
	require.NoError(t, err)

	// A freed slot on a finished match cannot be taken.
	require.ErrorIs(t, ledger.Leave(players[0].ID, m.ID), ErrInvalidMatchStatus)
	late := createTestUser(t, db, "late", level.Intermediate)
	_, err = ledger.Join(late.ID, m.ID)
	assert.ErrorIs(t, err, ErrInvalidMatchStatus)
}

func TestPanickingObserverDoesNotBlockTransition(t *testing.T) {
	db := setupTestDB(t)
	ledger, engine, repo := newLedger(db)

	engine.Subscribe(func(Event) { panic("notification backend down") })
	recorder := &eventRecorder{}
	engine.Subscribe(recorder.observe)

	creator := createTestUser(t, db, "creator", level.Intermediate)
	m := createTestMatch(t, repo, creator.ID, level.Intermediate)
	fillMatch(t, db, ledger, m.ID, PlayersPerMatch)

	loaded, err := repo.GetMatchByID(m.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, loaded.Status)
	assert.Len(t, recorder.ofType(EventMatchConfirmed), 1)
}
