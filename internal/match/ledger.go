package match

import (
	"sync"
	"time"
)

// RegistrationLedger is the only entry point allowed to mutate a match's
// registration set. It serializes the check-count-then-write sequence with a
// mutex scoped to the match, so two joins racing for the last slot resolve
// to exactly one success and one ErrMatchFull. Joins against different
// matches do not block each other.
type RegistrationLedger struct {
	repo   MatchRepository
	engine *LifecycleEngine

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewRegistrationLedger(repo MatchRepository, engine *LifecycleEngine) *RegistrationLedger {
	return &RegistrationLedger{
		repo:   repo,
		engine: engine,
		locks:  make(map[uint]*sync.Mutex),
	}
}

// lockFor returns the mutex guarding one match's registration set. Locks are
// created on first use and kept for the life of the process; a stale entry
// per deleted match is cheaper than reference counting.
func (l *RegistrationLedger) lockFor(matchID uint) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[matchID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[matchID] = lock
	}
	return lock
}

// Join enrolls a user in a match, reactivating a previously cancelled
// registration when one exists. It fails with ErrAlreadyRegistered when the
// pair already holds a joined registration and with ErrMatchFull when all
// slots are taken. On success the lifecycle engine re-evaluates the match,
// which may promote it to CONFIRMED.
func (l *RegistrationLedger) Join(userID, matchID uint) (*Registration, error) {
	lock := l.lockFor(matchID)
	lock.Lock()
	defer lock.Unlock()

	m, err := l.repo.GetMatchByID(matchID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrMatchNotFound
	}
	if m.Status == StatusFinished {
		return nil, ErrInvalidMatchStatus
	}

	u, err := l.repo.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	existing, err := l.repo.GetRegistration(matchID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Status == RegistrationJoined {
		return nil, ErrAlreadyRegistered
	}

	count, err := l.repo.CountActiveRegistrations(matchID)
	if err != nil {
		return nil, err
	}
	if count >= PlayersPerMatch {
		return nil, ErrMatchFull
	}

	var reg *Registration
	if existing != nil {
		existing.Status = RegistrationJoined
		existing.RegisteredAt = time.Now()
		if err := l.repo.UpdateRegistration(existing); err != nil {
			return nil, err
		}
		reg = existing
	} else {
		reg = &Registration{
			MatchID:      matchID,
			UserID:       userID,
			Status:       RegistrationJoined,
			RegisteredAt: time.Now(),
		}
		if err := l.repo.CreateRegistration(reg); err != nil {
			return nil, err
		}
	}

	if err := l.engine.OnRegistrationChanged(matchID); err != nil {
		return nil, err
	}
	return reg, nil
}

// Leave cancels a user's active registration. The row is kept for history,
// not deleted. Leaving a confirmed match does not move it back to WAITING.
func (l *RegistrationLedger) Leave(userID, matchID uint) error {
	lock := l.lockFor(matchID)
	lock.Lock()
	defer lock.Unlock()

	m, err := l.repo.GetMatchByID(matchID)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrMatchNotFound
	}
	if m.Status == StatusFinished {
		return ErrInvalidMatchStatus
	}

	existing, err := l.repo.GetRegistration(matchID, userID)
	if err != nil {
		return err
	}
	if existing == nil || existing.Status != RegistrationJoined {
		return ErrNotRegistered
	}

	existing.Status = RegistrationCancelled
	if err := l.repo.UpdateRegistration(existing); err != nil {
		return err
	}

	return l.engine.OnRegistrationChanged(matchID)
}

// ActiveCount returns the number of joined registrations for a match.
func (l *RegistrationLedger) ActiveCount(matchID uint) (int64, error) {
	return l.repo.CountActiveRegistrations(matchID)
}

// ActiveRegistrationsForUser returns every joined registration of a user.
func (l *RegistrationLedger) ActiveRegistrationsForUser(userID uint) ([]Registration, error) {
	return l.repo.GetUserActiveRegistrations(userID)
}
