package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/volveu/volve/internal/apperr"
	"github.com/volveu/volve/internal/model"
)

// NpoService implements administrator CRUD over NPOs
type NpoService struct {
	db *gorm.DB
}

// NewNpoService creates an NPO service backed by db
func NewNpoService(db *gorm.DB) *NpoService {
	return &NpoService{db: db}
}

// CreateNpoInput carries the fields of a new NPO
type CreateNpoInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Logo        *string `json:"logo,omitempty"`
	Website     *string `json:"website,omitempty"`
}

// UpdateNpoInput carries a partial NPO update; nil fields are left unchanged
type UpdateNpoInput struct {
	ID          uint
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Logo        *string `json:"logo,omitempty"`
	Website     *string `json:"website,omitempty"`
}

// Create validates and stores a new NPO
func (s *NpoService) Create(ctx context.Context, in CreateNpoInput) (*model.Npo, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Validation("name", "must not be empty")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, apperr.Validation("description", "must not be empty")
	}

	npo := model.Npo{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Logo:        in.Logo,
		Website:     in.Website,
	}
	if err := s.db.WithContext(ctx).Create(&npo).Error; err != nil {
		return nil, apperr.Infrastructure(err)
	}
	return &npo, nil
}

// Update applies a partial update to an existing NPO
func (s *NpoService) Update(ctx context.Context, in UpdateNpoInput) (*model.Npo, error) {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("name", "must not be empty")
	}
	if in.Description != nil && strings.TrimSpace(*in.Description) == "" {
		return nil, apperr.Validation("description", "must not be empty")
	}

	db := s.db.WithContext(ctx)
	var npo model.Npo
	if err := db.First(&npo, in.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("npo")
		}
		return nil, apperr.Infrastructure(err)
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Logo != nil {
		updates["logo"] = *in.Logo
	}
	if in.Website != nil {
		updates["website"] = *in.Website
	}
	if len(updates) > 0 {
		if err := db.Model(&npo).Updates(updates).Error; err != nil {
			return nil, apperr.Infrastructure(err)
		}
	}
	return &npo, nil
}

// Get returns one NPO by id
func (s *NpoService) Get(ctx context.Context, id uint) (*model.Npo, error) {
	var npo model.Npo
	if err := s.db.WithContext(ctx).First(&npo, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("npo")
		}
		return nil, apperr.Infrastructure(err)
	}
	return &npo, nil
}

// List returns all NPOs
func (s *NpoService) List(ctx context.Context) ([]model.Npo, error) {
	var npos []model.Npo
	if err := s.db.WithContext(ctx).Order("id").Find(&npos).Error; err != nil {
		return nil, apperr.Infrastructure(err)
	}
	return npos, nil
}
