package match

import (
	"log"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventMatchConfirmed EventType = "match.confirmed"
	EventMatchFinished  EventType = "match.finished"
)

// Event is a lifecycle notification carrying a snapshot of the match as it
// was when the transition committed.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Match      Match     `json:"match"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Observer receives lifecycle events. Delivery is synchronous and
// best-effort: a panicking observer is logged and skipped, never rolling
// back the transition that produced the event.
type Observer func(Event)

// LifecycleEngine owns the match state machine:
//
//	WAITING -> CONFIRMED   automatic, the moment the fourth player joins
//	CONFIRMED -> FINISHED  only via an explicit Finish call
//
// FINISHED is terminal. Dropping below four players does not move a
// confirmed match back to waiting.
type LifecycleEngine struct {
	repo      MatchRepository
	observers []Observer
}

func NewLifecycleEngine(repo MatchRepository) *LifecycleEngine {
	return &LifecycleEngine{repo: repo}
}

// Subscribe registers an observer for lifecycle events. Intended to be
// called during startup wiring, before the engine handles traffic.
func (e *LifecycleEngine) Subscribe(obs Observer) {
	e.observers = append(e.observers, obs)
}

func (e *LifecycleEngine) emit(eventType EventType, snapshot Match) {
	event := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Match:      snapshot,
		OccurredAt: time.Now(),
	}
	for _, obs := range e.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("lifecycle observer panicked on %s event %s: %v", event.Type, event.ID, r)
				}
			}()
			obs(event)
		}()
	}
}

// OnRegistrationChanged re-reads the active count of a match and promotes it
// to CONFIRMED when the count has reached the group size. Re-evaluating an
// already confirmed or finished match is a no-op, so the hook is safe to
// call after every join and leave. The caller (the registration ledger)
// holds the per-match lock, so the count read here cannot go stale.
func (e *LifecycleEngine) OnRegistrationChanged(matchID uint) error {
	count, err := e.repo.CountActiveRegistrations(matchID)
	if err != nil {
		return err
	}
	if count < PlayersPerMatch {
		return nil
	}

	m, err := e.repo.GetMatchByID(matchID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrMatchNotFound
	}
	if m.Status != StatusWaiting {
		return nil
	}

	if err := e.repo.UpdateMatchStatus(matchID, StatusConfirmed); err != nil {
		return err
	}
	m.Status = StatusConfirmed
	e.emit(EventMatchConfirmed, *m)
	return nil
}

// Finish moves a CONFIRMED match to FINISHED and bumps the matches-played
// counter of every active participant in the same transaction. The status
// change is a conditional update on the current status, so of two racing
// Finish calls exactly one commits; the loser fails with
// ErrInvalidMatchStatus, as does finishing a match in any other status,
// including one already finished. The engine does not check who is calling;
// whether only the creator may finish is a concern of the HTTP layer.
func (e *LifecycleEngine) Finish(matchID uint) (*Match, error) {
	m, err := e.repo.GetMatchByID(matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}

	err = e.repo.WithTransaction(func(tx MatchRepository) error {
		moved, err := tx.TransitionMatchStatus(matchID, StatusConfirmed, StatusFinished)
		if err != nil {
			return err
		}
		if !moved {
			return ErrInvalidMatchStatus
		}
		regs, err := tx.GetActiveRegistrations(matchID)
		if err != nil {
			return err
		}
		playerIDs := make([]uint, 0, len(regs))
		for _, reg := range regs {
			playerIDs = append(playerIDs, reg.UserID)
		}
		return tx.IncrementMatchesPlayed(playerIDs)
	})
	if err != nil {
		return nil, err
	}

	m.Status = StatusFinished
	e.emit(EventMatchFinished, *m)
	return m, nil
}
