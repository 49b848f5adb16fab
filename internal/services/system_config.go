package services

import (
	"strconv"

	"github.com/codemule/adminbase/backend/internal/models"
	"gorm.io/gorm"
)

// SystemConfigService reads and writes DB-backed runtime settings.
type SystemConfigService struct {
	db *gorm.DB
}

func NewSystemConfigService(db *gorm.DB) *SystemConfigService {
	return &SystemConfigService{db: db}
}

// Get returns the value for key, or "" if not set.
func (s *SystemConfigService) Get(key string) string {
	var config models.SystemConfig
	if err := s.db.Where("`key` = ?", key).First(&config).Error; err != nil {
		return ""
	}
	return config.Value
}

// GetWithDefault returns the value for key, falling back to def.
func (s *SystemConfigService) GetWithDefault(key, def string) string {
	if v := s.Get(key); v != "" {
		return v
	}
	return def
}

// GetInt returns the integer value for key, falling back to def.
func (s *SystemConfigService) GetInt(key string, def int) int {
	v := s.Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// GetBool returns whether the value for key is "true".
func (s *SystemConfigService) GetBool(key string) bool {
	return s.Get(key) == "true"
}

// Set creates or updates a config entry.
func (s *SystemConfigService) Set(key, value string) error {
	var config models.SystemConfig
	err := s.db.Where("`key` = ?", key).First(&config).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		return s.db.Create(&models.SystemConfig{Key: key, Value: value}).Error
	}
	return s.db.Model(&config).Update("value", value).Error
}

// ListByGroup returns all configs in a group.
func (s *SystemConfigService) ListByGroup(group string) ([]models.SystemConfig, error) {
	var configs []models.SystemConfig
	err := s.db.Where("`group` = ?", group).Order("`key`").Find(&configs).Error
	return configs, err
}

// List returns every config entry.
func (s *SystemConfigService) List() ([]models.SystemConfig, error) {
	var configs []models.SystemConfig
	err := s.db.Order("`group`, `key`").Find(&configs).Error
	return configs, err
}

// SetBatch updates multiple entries, creating missing ones.
func (s *SystemConfigService) SetBatch(values map[string]string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		batch := &SystemConfigService{db: tx}
		for key, value := range values {
			if err := batch.Set(key, value); err != nil {
				return err
			}
		}
		return nil
	})
}
