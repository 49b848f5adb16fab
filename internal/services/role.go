package services

import (
	"encoding/json"
	"errors"

	"github.com/codemule/adminbase/backend/internal/models"
	"gorm.io/gorm"
)

type RoleService struct {
	db *gorm.DB
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{db: db}
}

type RoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

// List returns all roles ordered by ID
func (s *RoleService) List() ([]models.Role, error) {
	var roles []models.Role
	if err := s.db.Order("id ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// GetByID retrieves a role by ID
func (s *RoleService) GetByID(id uint) (*models.Role, error) {
	var role models.Role
	if err := s.db.First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("role not found")
		}
		return nil, err
	}
	return &role, nil
}

// Create adds a new role with a JSON-encoded permission list.
func (s *RoleService) Create(req *RoleRequest) (*models.Role, error) {
	var count int64
	s.db.Model(&models.Role{}).Where("name = ?", req.Name).Count(&count)
	if count > 0 {
		return nil, errors.New("role name already exists")
	}

	perms, err := json.Marshal(req.Permissions)
	if err != nil {
		return nil, err
	}

	role := models.Role{
		Name:        req.Name,
		Description: req.Description,
		Permissions: string(perms),
	}
	if err := s.db.Create(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// Update modifies a non-system role.
func (s *RoleService) Update(id uint, req *RoleRequest) (*models.Role, error) {
	role, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if role.IsSystem {
		return nil, errors.New("system roles cannot be modified")
	}

	perms, err := json.Marshal(req.Permissions)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
		"permissions": string(perms),
	}
	if err := s.db.Model(role).Updates(updates).Error; err != nil {
		return nil, err
	}
	return role, nil
}

// Delete removes a non-system role that no user currently holds.
func (s *RoleService) Delete(id uint) error {
	role, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return errors.New("system roles cannot be deleted")
	}

	var inUse int64
	s.db.Model(&models.User{}).Where("role = ?", role.Name).Count(&inUse)
	if inUse > 0 {
		return errors.New("role is assigned to users")
	}

	return s.db.Delete(role).Error
}

// Permissions decodes the role's permission list.
func (s *RoleService) Permissions(role *models.Role) []string {
	var perms []string
	if role.Permissions == "" {
		return perms
	}
	if err := json.Unmarshal([]byte(role.Permissions), &perms); err != nil {
		return nil
	}
	return perms
}
