package match

import (
	"errors"

	"github.com/quattro-app/quattro/internal/user"
	"gorm.io/gorm"
)

// MatchRepository defines methods to interact with match-related data
type MatchRepository interface {
	// Match methods
	CreateMatch(match *Match) error
	GetMatchByID(id uint) (*Match, error)
	UpdateMatch(match *Match) error
	UpdateMatchStatus(matchID uint, status MatchStatus) error
	TransitionMatchStatus(matchID uint, from, to MatchStatus) (bool, error)
	DeleteMatch(id uint) error
	GetMatches(filters map[string]interface{}, orderBy string, page, pageSize int) ([]Match, int64, error)

	// Registration methods
	CountActiveRegistrations(matchID uint) (int64, error)
	GetRegistration(matchID, userID uint) (*Registration, error)
	CreateRegistration(reg *Registration) error
	UpdateRegistration(reg *Registration) error
	GetActiveRegistrations(matchID uint) ([]Registration, error)
	GetUserActiveRegistrations(userID uint) ([]Registration, error)

	// Feedback methods
	CreateFeedback(fb *Feedback) error
	GetFeedback(matchID, authorID, targetID uint) (*Feedback, error)
	GetMatchFeedback(matchID uint) ([]Feedback, error)
	GetReceivedFeedback(targetID uint) ([]Feedback, error)

	// User methods consumed by the lifecycle and feedback services
	GetUserByID(id uint) (*user.User, error)
	UpdateUser(u *user.User) error
	IncrementMatchesPlayed(userIDs []uint) error

	// Transaction support
	WithTransaction(txFunc func(MatchRepository) error) error
}

// GormMatchRepository implements MatchRepository using GORM
type GormMatchRepository struct {
	db *gorm.DB
}

// NewGormMatchRepository creates a new GormMatchRepository
func NewGormMatchRepository(db *gorm.DB) *GormMatchRepository {
	return &GormMatchRepository{db: db}
}

// WithTransaction implements transaction support
func (r *GormMatchRepository) WithTransaction(txFunc func(MatchRepository) error) error {
	tx := r.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	txRepo := &GormMatchRepository{db: tx}
	err := txFunc(txRepo)
	if err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// Match Repository Methods

// CreateMatch creates a new match
func (r *GormMatchRepository) CreateMatch(match *Match) error {
	return r.db.Create(match).Error
}

// GetMatchByID retrieves a match by ID with its creator and active registrations
func (r *GormMatchRepository) GetMatchByID(id uint) (*Match, error) {
	var match Match
	result := r.db.
		Preload("CreatedByUser", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, declared_level, perceived_level")
		}).
		Preload("Registrations", "status = ?", RegistrationJoined).
		Preload("Registrations.User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, declared_level, perceived_level")
		}).
		First(&match, id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &match, nil
}

// UpdateMatch updates an existing match
func (r *GormMatchRepository) UpdateMatch(match *Match) error {
	return r.db.Save(match).Error
}

// UpdateMatchStatus updates the status of a match
func (r *GormMatchRepository) UpdateMatchStatus(matchID uint, status MatchStatus) error {
	return r.db.Model(&Match{}).Where("id = ?", matchID).Update("status", status).Error
}

// TransitionMatchStatus moves a match from one status to another in a single
// conditional UPDATE. It reports false when the match was not in the expected
// status, so two racing transitions resolve to exactly one winner.
func (r *GormMatchRepository) TransitionMatchStatus(matchID uint, from, to MatchStatus) (bool, error) {
	res := r.db.Model(&Match{}).
		Where("id = ? AND status = ?", matchID, from).
		Update("status", to)
	return res.RowsAffected > 0, res.Error
}

// DeleteMatch deletes a match together with its registrations and feedback.
// The three deletes run in one transaction so a match is never left with
// orphaned children.
func (r *GormMatchRepository) DeleteMatch(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("match_id = ?", id).Delete(&Registration{}).Error; err != nil {
			return err
		}
		if err := tx.Where("match_id = ?", id).Delete(&Feedback{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Match{}, id).Error
	})
}

// GetMatches retrieves matches based on filters with pagination. The order
// clause spans the whole filtered collection, so a page holds the items that
// belong to it under that ordering, not an arbitrary slice.
func (r *GormMatchRepository) GetMatches(filters map[string]interface{}, orderBy string, page, pageSize int) ([]Match, int64, error) {
	var matches []Match
	var total int64

	if orderBy == "" {
		orderBy = "created_at asc"
	}

	query := r.db.Model(&Match{})

	// Apply filters
	for key, value := range filters {
		query = query.Where(key, value)
	}

	// Count total before pagination
	err := query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	// Apply pagination
	offset := (page - 1) * pageSize
	result := query.
		Preload("CreatedByUser", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, declared_level, perceived_level")
		}).
		Preload("Registrations", "status = ?", RegistrationJoined).
		Order(orderBy).
		Offset(offset).Limit(pageSize).
		Find(&matches)

	if result.Error != nil {
		return nil, 0, result.Error
	}

	return matches, total, nil
}

// Registration Repository Methods

// CountActiveRegistrations counts the joined registrations of a match. It
// always hits the database so callers see the latest committed state.
func (r *GormMatchRepository) CountActiveRegistrations(matchID uint) (int64, error) {
	var count int64
	err := r.db.Model(&Registration{}).
		Where("match_id = ? AND status = ?", matchID, RegistrationJoined).
		Count(&count).Error
	return count, err
}

// GetRegistration retrieves the registration row for a (match, user) pair in
// any status, or nil when the pair has never registered.
func (r *GormMatchRepository) GetRegistration(matchID, userID uint) (*Registration, error) {
	var reg Registration
	err := r.db.Where("match_id = ? AND user_id = ?", matchID, userID).First(&reg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &reg, nil
}

// CreateRegistration creates a new registration
func (r *GormMatchRepository) CreateRegistration(reg *Registration) error {
	return r.db.Create(reg).Error
}

// UpdateRegistration updates an existing registration
func (r *GormMatchRepository) UpdateRegistration(reg *Registration) error {
	return r.db.Save(reg).Error
}

// GetActiveRegistrations retrieves the joined registrations of a match
func (r *GormMatchRepository) GetActiveRegistrations(matchID uint) ([]Registration, error) {
	var regs []Registration
	err := r.db.
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, declared_level, perceived_level")
		}).
		Where("match_id = ? AND status = ?", matchID, RegistrationJoined).
		Order("registered_at asc").
		Find(&regs).Error
	return regs, err
}

// GetUserActiveRegistrations retrieves all joined registrations of a user,
// used to build the "my matches" view.
func (r *GormMatchRepository) GetUserActiveRegistrations(userID uint) ([]Registration, error) {
	var regs []Registration
	err := r.db.
		Preload("Match").
		Where("user_id = ? AND status = ?", userID, RegistrationJoined).
		Order("registered_at asc").
		Find(&regs).Error
	return regs, err
}

// Feedback Repository Methods

// CreateFeedback creates a new feedback record
func (r *GormMatchRepository) CreateFeedback(fb *Feedback) error {
	return r.db.Create(fb).Error
}

// GetFeedback retrieves the feedback for an (author, target, match) triple,
// or nil when none exists.
func (r *GormMatchRepository) GetFeedback(matchID, authorID, targetID uint) (*Feedback, error) {
	var fb Feedback
	err := r.db.
		Where("match_id = ? AND author_id = ? AND target_id = ?", matchID, authorID, targetID).
		First(&fb).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &fb, nil
}

// GetMatchFeedback retrieves all feedback recorded for a match
func (r *GormMatchRepository) GetMatchFeedback(matchID uint) ([]Feedback, error) {
	var fbs []Feedback
	err := r.db.
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username")
		}).
		Preload("Target", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username")
		}).
		Where("match_id = ?", matchID).
		Order("created_at asc").
		Find(&fbs).Error
	return fbs, err
}

// GetReceivedFeedback retrieves every feedback a user has received, across
// all matches.
func (r *GormMatchRepository) GetReceivedFeedback(targetID uint) ([]Feedback, error) {
	var fbs []Feedback
	err := r.db.
		Where("target_id = ?", targetID).
		Order("created_at asc").
		Find(&fbs).Error
	return fbs, err
}

// User Repository Methods

// GetUserByID retrieves a user by ID, or nil when absent
func (r *GormMatchRepository) GetUserByID(id uint) (*user.User, error) {
	var u user.User
	if err := r.db.First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// UpdateUser updates an existing user
func (r *GormMatchRepository) UpdateUser(u *user.User) error {
	return r.db.Save(u).Error
}

// IncrementMatchesPlayed bumps the matches-played counter for the given users
func (r *GormMatchRepository) IncrementMatchesPlayed(userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	return r.db.Model(&user.User{}).
		Where("id IN ?", userIDs).
		Update("matches_played", gorm.Expr("matches_played + 1")).Error
}
