package match

import (
	"testing"

	"github.com/quattro-app/quattro/internal/level"
	"github.com/quattro-app/quattro/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// finishedMatchFixture builds a finished match with four players.
func finishedMatchFixture(t *testing.T, db *gorm.DB) (*Match, []*user.User, *FeedbackService) {
	t.Helper()
	ledger, engine, repo := newLedger(db)

	creator := createTestUser(t, db, "organizer", level.Intermediate)
	m := createTestMatch(t, repo, creator.ID, level.Intermediate)
	players := fillMatch(t, db, ledger, m.ID, PlayersPerMatch)

	_, err := engine.Finish(m.ID)
	require.NoError(t, err)

	return m, players, NewFeedbackService(repo)
}

func TestSubmitFeedbackStoresRecord(t *testing.T) {
	db := setupTestDB(t)
	m, players, svc := finishedMatchFixture(t, db)

	fb, err := svc.Submit(players[0].ID, players[1].ID, m.ID, level.Advanced, "great backhand")
	require.NoError(t, err)
	assert.Equal(t, level.Advanced, fb.SuggestedLevel)
	assert.Equal(t, players[0].ID, fb.AuthorID)
	assert.Equal(t, players[1].ID, fb.TargetID)
}

func TestSubmitFeedbackOnUnfinishedMatchFails(t *testing.T) {
	db := setupTestDB(t)
	ledger, _, repo := newLedger(db)
	svc := NewFeedbackService(repo)

	creator := createTestUser(t, db, "organizer", level.Intermediate)
	m := createTestMatch(t, repo, creator.ID, level.Intermediate)
	players := fillMatch(t, db, ledger, m.ID, PlayersPerMatch) // confirmed, not finished

	_, err := svc.Submit(players[0].ID, players[1].ID, m.ID, level.Advanced, "")
	assert.ErrorIs(t, err, ErrInvalidMatchStatus)

	// Nothing was stored.
	var count int64
	require.NoError(t, db.Model(&Feedback{}).Where("match_id = ?", m.ID).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestDuplicateFeedbackFails(t *testing.T) {
	db := setupTestDB(t)
	m, players, svc := finishedMatchFixture(t, db)

	_, err := svc.Submit(players[0].ID, players[1].ID, m.ID, level.Advanced, "")
	require.NoError(t, err)

	_, err = svc.Submit(players[0].ID, players[1].ID, m.ID, level.Intermediate, "")
	assert.ErrorIs(t, err, ErrDuplicateFeedback)

	// The reverse direction is a different triple and still allowed.
	_, err = svc.Submit(players[1].ID, players[0].ID, m.ID, level.Intermediate, "")
	assert.NoError(t, err)
}

func TestSelfFeedbackFails(t *testing.T) {
	db := setupTestDB(t)
	m, players, svc := finishedMatchFixture(t, db)

	_, err := svc.Submit(players[0].ID, players[0].ID, m.ID, level.Professional, "")
	assert.ErrorIs(t, err, ErrSelfFeedback)
}

func TestPerceivedLevelAbsentWithoutFeedback(t *testing.T) {
	db := setupTestDB(t)
	_, players, svc := finishedMatchFixture(t, db)

	perceived, err := svc.PerceivedLevel(players[0].ID)
	require.NoError(t, err)
	assert.Nil(t, perceived)

	var u user.User
	require.NoError(t, db.First(&u, players[0].ID).Error)
	assert.Nil(t, u.PerceivedLevel)
}

func TestPerceivedLevelFollowsSingleFeedback(t *testing.T) {
	db := setupTestDB(t)
	m, players, svc := finishedMatchFixture(t, db)

	_, err := svc.Submit(players[0].ID, players[1].ID, m.ID, level.Advanced, "")
	require.NoError(t, err)

	var u user.User
	require.NoError(t, db.First(&u, players[1].ID).Error)
	require.NotNil(t, u.PerceivedLevel)
	assert.Equal(t, level.Advanced, *u.PerceivedLevel)
}

func TestPerceivedLevelIsModeOfSuggestions(t *testing.T) {
	db := setupTestDB(t)
	m, players, svc := finishedMatchFixture(t, db)

	// {advanced, advanced, intermediate} -> advanced by majority.
	_, err := svc.Submit(players[0].ID, players[3].ID, m.ID, level.Advanced, "")
	require.NoError(t, err)
	_, err = svc.Submit(players[1].ID, players[3].ID, m.ID, level.Advanced, "")
	require.NoError(t, err)
	_, err = svc.Submit(players[2].ID, players[3].ID, m.ID, level.Intermediate, "")
	require.NoError(t, err)

	var u user.User
	require.NoError(t, db.First(&u, players[3].ID).Error)
	require.NotNil(t, u.PerceivedLevel)
	assert.Equal(t, level.Advanced, *u.PerceivedLevel)
}

func TestPerceivedLevelTieResolvesToHigherTier(t *testing.T) {
	db := setupTestDB(t)
	m, players, svc := finishedMatchFixture(t, db)

	// {intermediate, advanced} is a tie; the higher tier wins.
	_, err := svc.Submit(players[0].ID, players[2].ID, m.ID, level.Intermediate, "")
	require.NoError(t, err)
	_, err = svc.Submit(players[1].ID, players[2].ID, m.ID, level.Advanced, "")
	require.NoError(t, err)

	var u user.User
	require.NoError(t, db.First(&u, players[2].ID).Error)
	require.NotNil(t, u.PerceivedLevel)
	assert.Equal(t, level.Advanced, *u.PerceivedLevel)
}

func TestPerceivedLevelSpansMatches(t *testing.T) {
	db := setupTestDB(t)
	ledger, engine, repo := newLedger(db)
	svc := NewFeedbackService(repo)

	creator := createTestUser(t, db, "organizer", level.Intermediate)
	rated := createTestUser(t, db, "rated", level.Beginner)

	var raters []*user.User
	for _, name := range []string{"r1", "r2"} {
		raters = append(raters, createTestUser(t, db, name, level.Intermediate))
	}

	for i := 0; i < 2; i++ {
		m := createTestMatch(t, repo, creator.ID, level.Intermediate)
		_, err := ledger.Join(creator.ID, m.ID)
		require.NoError(t, err)
		_, err = ledger.Join(rated.ID, m.ID)
		require.NoError(t, err)
		for _, r := range raters {
			_, err = ledger.Join(r.ID, m.ID)
			require.NoError(t, err)
		}
		_, err = engine.Finish(m.ID)
		require.NoError(t, err)

		// One intermediate vote per match; feedback accumulates across matches.
		_, err = svc.Submit(raters[0].ID, rated.ID, m.ID, level.Intermediate, "")
		require.NoError(t, err)
	}

	var u user.User
	require.NoError(t, db.First(&u, rated.ID).Error)
	require.NotNil(t, u.PerceivedLevel)
	assert.Equal(t, level.Intermediate, *u.PerceivedLevel)
}
