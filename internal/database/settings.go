package database

import (
	"errors"

	"github.com/justsurfingit/job-tracker-client/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetSetting returns the stored value and whether the key exists.
func GetSetting(db *gorm.DB, key string) (string, bool, error) {
	var s models.Setting
	err := db.Where("key = ?", key).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return s.Value, true, nil
}

// PutSetting inserts or replaces a key.
func PutSetting(db *gorm.DB, key, value string) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&models.Setting{Key: key, Value: value}).Error
}

func DeleteSetting(db *gorm.DB, key string) error {
	return db.Where("key = ?", key).Delete(&models.Setting{}).Error
}

// OnboardingCompletedKey is the durable flag written when a user finishes onboarding.
func OnboardingCompletedKey(userID string) string {
	return "onboardingCompleted:" + userID
}
