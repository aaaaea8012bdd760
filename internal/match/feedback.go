package match

import (
	"github.com/quattro-app/quattro/internal/level"
)

// FeedbackService records post-match peer ratings and keeps each player's
// perceived level in sync with the feedback they have received.
type FeedbackService struct {
	repo MatchRepository
}

func NewFeedbackService(repo MatchRepository) *FeedbackService {
	return &FeedbackService{repo: repo}
}

// Submit stores one player's rating of a peer for a finished match and
// recomputes the target's perceived level. Preconditions: the match is
// FINISHED, the author is not rating themselves, and the (author, target,
// match) triple has not been rated before.
func (s *FeedbackService) Submit(authorID, targetID, matchID uint, suggested level.Level, comment string) (*Feedback, error) {
	if authorID == targetID {
		return nil, ErrSelfFeedback
	}

	m, err := s.repo.GetMatchByID(matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	if m.Status != StatusFinished {
		return nil, ErrInvalidMatchStatus
	}

	target, err := s.repo.GetUserByID(targetID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}

	existing, err := s.repo.GetFeedback(matchID, authorID, targetID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateFeedback
	}

	fb := &Feedback{
		MatchID:        matchID,
		AuthorID:       authorID,
		TargetID:       targetID,
		SuggestedLevel: suggested,
		Comment:        comment,
	}

	err = s.repo.WithTransaction(func(tx MatchRepository) error {
		if err := tx.CreateFeedback(fb); err != nil {
			return err
		}
		received, err := tx.GetReceivedFeedback(targetID)
		if err != nil {
			return err
		}
		perceived := aggregateLevels(received)
		target.PerceivedLevel = perceived
		return tx.UpdateUser(target)
	})
	if err != nil {
		return nil, err
	}
	return fb, nil
}

// PerceivedLevel recomputes a user's perceived level from all feedback they
// have received. Nil when no feedback exists yet.
func (s *FeedbackService) PerceivedLevel(userID uint) (*level.Level, error) {
	received, err := s.repo.GetReceivedFeedback(userID)
	if err != nil {
		return nil, err
	}
	return aggregateLevels(received), nil
}

// aggregateLevels picks the statistical mode of the suggested levels. A tie
// resolves to the higher tier: a split jury gives the player the benefit of
// the doubt.
func aggregateLevels(received []Feedback) *level.Level {
	if len(received) == 0 {
		return nil
	}

	counts := make(map[level.Level]int)
	for _, fb := range received {
		counts[fb.SuggestedLevel]++
	}

	var best level.Level
	bestCount := -1
	for _, l := range level.All() {
		if counts[l] >= bestCount && counts[l] > 0 {
			best = l
			bestCount = counts[l]
		}
	}
	return &best
}
