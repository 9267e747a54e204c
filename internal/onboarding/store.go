package onboarding

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/justsurfingit/job-tracker-client/internal/database"
	"github.com/justsurfingit/job-tracker-client/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists the draft mirror and the completion flag.
type Store interface {
	LoadDraft() (Draft, bool, error)
	SaveDraft(Draft) error
	ClearDraft() error
	MarkCompleted() error
	Completed() (bool, error)
}

// DraftStore keeps one user's onboarding state in the local database.
type DraftStore struct {
	DB     *gorm.DB
	UserID string
}

func NewDraftStore(db *gorm.DB, userID string) *DraftStore {
	return &DraftStore{DB: db, UserID: userID}
}

func (s *DraftStore) LoadDraft() (Draft, bool, error) {
	var row models.OnboardingDraft
	err := s.DB.Where("user_id = ?", s.UserID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Draft{}, false, nil
	}
	if err != nil {
		return Draft{}, false, err
	}

	var d Draft
	if err := json.Unmarshal([]byte(row.Data), &d); err != nil {
		// a corrupt mirror is just a cache miss
		return Draft{}, false, nil
	}
	return d, true, nil
}

func (s *DraftStore) SaveDraft(d Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&models.OnboardingDraft{UserID: s.UserID, Data: string(data)}).Error
}

func (s *DraftStore) ClearDraft() error {
	return s.DB.Where("user_id = ?", s.UserID).Delete(&models.OnboardingDraft{}).Error
}

func (s *DraftStore) MarkCompleted() error {
	return database.PutSetting(s.DB, database.OnboardingCompletedKey(s.UserID), "true")
}

func (s *DraftStore) Completed() (bool, error) {
	v, ok, err := database.GetSetting(s.DB, database.OnboardingCompletedKey(s.UserID))
	if err != nil {
		return false, err
	}
	return ok && v == "true", nil
}
