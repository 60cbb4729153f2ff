package repositories

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/cv-matcher/internal/models"
)

// ErrNoSlots is returned when an interviewer has nothing left to reserve on a date.
var ErrNoSlots = errors.New("no available slots")

// InterviewerQuery narrows List. Zero fields are ignored; Expertise and
// Specialization must appear verbatim in the profile's JSON arrays.
type InterviewerQuery struct {
	Tier           int
	MinExperience  int
	Expertise      string
	Specialization string
	Limit          int
}

type InterviewerRepository interface {
	Create(ctx context.Context, profile *models.InterviewerProfile) error
	Update(ctx context.Context, profile *models.InterviewerProfile) error
	SetAvailability(ctx context.Context, id uuid.UUID, availability map[string]int) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.InterviewerProfile, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.InterviewerProfile, error)
	List(ctx context.Context, q InterviewerQuery) ([]models.InterviewerProfile, error)
	FindAll(ctx context.Context, batchSize int, fn func(batch []models.InterviewerProfile) error) error
	Delete(ctx context.Context, id uuid.UUID) error
	ReserveSlot(ctx context.Context, id uuid.UUID, date string) (int, error)
}

type interviewerRepository struct {
	db *gorm.DB
}

func NewInterviewerRepository(db *gorm.DB) InterviewerRepository {
	return &interviewerRepository{db: db}
}

func (r *interviewerRepository) Create(ctx context.Context, profile *models.InterviewerProfile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return fmt.Errorf("failed to create interviewer: %w", err)
	}
	return nil
}

func (r *interviewerRepository) Update(ctx context.Context, profile *models.InterviewerProfile) error {
	result := r.db.WithContext(ctx).Model(profile).Select("*").Omit("id", "created_at").Updates(profile)
	if result.Error != nil {
		return fmt.Errorf("failed to update interviewer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("interviewer %s not found: %w", profile.ID, ErrNotFound)
	}
	return nil
}

func (r *interviewerRepository) SetAvailability(ctx context.Context, id uuid.UUID, availability map[string]int) error {
	result := r.db.WithContext(ctx).Model(&models.InterviewerProfile{}).
		Where("id = ?", id).
		Update("availability", datatypes.NewJSONType(availability))
	if result.Error != nil {
		return fmt.Errorf("failed to update availability: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("interviewer %s not found: %w", id, ErrNotFound)
	}
	return nil
}

func (r *interviewerRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.InterviewerProfile, error) {
	var profile models.InterviewerProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("interviewer %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find interviewer: %w", err)
	}
	return &profile, nil
}

func (r *interviewerRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.InterviewerProfile, error) {
	var profiles []models.InterviewerProfile
	if len(ids) == 0 {
		return profiles, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to find interviewers: %w", err)
	}
	return profiles, nil
}

func (r *interviewerRepository) List(ctx context.Context, q InterviewerQuery) ([]models.InterviewerProfile, error) {
	tx := r.db.WithContext(ctx).Order("experience_years DESC").Order("name ASC")
	if q.Tier > 0 {
		tx = tx.Where("tier = ?", q.Tier)
	}
	if q.MinExperience > 0 {
		tx = tx.Where("experience_years >= ?", q.MinExperience)
	}
	if q.Expertise != "" {
		tx = tx.Where(datatypes.JSONArrayQuery("technical_expertise").Contains(q.Expertise))
	}
	if q.Specialization != "" {
		tx = tx.Where(datatypes.JSONArrayQuery("specializations").Contains(q.Specialization))
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var profiles []models.InterviewerProfile
	if err := tx.Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("failed to list interviewers: %w", err)
	}
	return profiles, nil
}

func (r *interviewerRepository) FindAll(ctx context.Context, batchSize int, fn func(batch []models.InterviewerProfile) error) error {
	var batch []models.InterviewerProfile
	result := r.db.WithContext(ctx).Order("created_at ASC").FindInBatches(&batch, batchSize, func(_ *gorm.DB, _ int) error {
		return fn(batch)
	})
	if result.Error != nil {
		return fmt.Errorf("failed to iterate interviewers: %w", result.Error)
	}
	return nil
}

func (r *interviewerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.InterviewerProfile{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete interviewer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("interviewer %s not found: %w", id, ErrNotFound)
	}
	return nil
}

// ReserveSlot takes one slot on date under a row lock and returns what is left.
func (r *interviewerRepository) ReserveSlot(ctx context.Context, id uuid.UUID, date string) (int, error) {
	remaining := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.InterviewerProfile
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("interviewer %s not found: %w", id, ErrNotFound)
			}
			return err
		}

		slots := profile.SlotsOn(date)
		if slots <= 0 {
			return ErrNoSlots
		}

		availability := maps.Clone(profile.Availability.Data())
		availability[date] = slots - 1
		remaining = slots - 1

		return tx.Model(&models.InterviewerProfile{}).
			Where("id = ?", id).
			Update("availability", datatypes.NewJSONType(availability)).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoSlots) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to reserve slot: %w", err)
	}
	return remaining, nil
}
