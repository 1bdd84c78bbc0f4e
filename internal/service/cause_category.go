package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/models"
	"github.com/cancerinfo/cms/internal/pagination"
)

var CauseCategoryFilters = pagination.Spec{
	SearchFields: []string{"name", "description"},
	Ordering:     map[string]string{"name": "name"},
	DefaultOrder: "name",
}

type CauseCategoryInput struct {
	Name        *string `json:"name" form:"name"`
	Description *string `json:"description" form:"description"`
}

func (in *CauseCategoryInput) validate(partial bool) error {
	v := &ValidationError{}
	textRule{field: "name", required: true, max: 100}.check(v, in.Name, partial)
	textRule{field: "description", required: true}.check(v, in.Description, partial)
	return v.Err()
}

type CauseCategoryService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCauseCategoryService(db *gorm.DB, log *logger.Logger) *CauseCategoryService {
	return &CauseCategoryService{db: db, log: log.With("service", "CauseCategoryService")}
}

func (s *CauseCategoryService) List(ctx context.Context, req *pagination.Request) ([]models.CauseCategory, int64, error) {
	return paginate[models.CauseCategory](ctx, s.db, req)
}

func (s *CauseCategoryService) Get(ctx context.Context, id uint) (*models.CauseCategory, error) {
	return first[models.CauseCategory](ctx, s.db, "id = ?", id)
}

// WithCauses returns every category ordered by name with its causes and
// their cancer types loaded.
func (s *CauseCategoryService) WithCauses(ctx context.Context) ([]models.CauseCategory, error) {
	var out []models.CauseCategory
	err := s.db.WithContext(ctx).
		Preload("Causes", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Preload("Causes.CancerType").
		Order("name").
		Find(&out).Error
	return out, err
}

func (s *CauseCategoryService) Create(ctx context.Context, in CauseCategoryInput) (*models.CauseCategory, error) {
	if err := in.validate(false); err != nil {
		return nil, err
	}
	taken, err := nameTaken(ctx, s.db, &models.CauseCategory{}, "name", *in.Name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, duplicateName("cause category")
	}

	cat := &models.CauseCategory{Name: *in.Name, Description: *in.Description}
	if err := s.db.WithContext(ctx).Create(cat).Error; err != nil {
		return nil, writeErr("create cause category", err, func() error { return duplicateName("cause category") })
	}
	return cat, nil
}

func (s *CauseCategoryService) Update(ctx context.Context, id uint, in CauseCategoryInput, partial bool) (*models.CauseCategory, error) {
	cat, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(partial); err != nil {
		return nil, err
	}
	if in.Name != nil && *in.Name != cat.Name {
		taken, err := nameTaken(ctx, s.db, &models.CauseCategory{}, "name", *in.Name, cat.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, duplicateName("cause category")
		}
	}

	assign(&cat.Name, in.Name)
	assign(&cat.Description, in.Description)
	if err := s.db.WithContext(ctx).Save(cat).Error; err != nil {
		return nil, writeErr("update cause category", err, func() error { return duplicateName("cause category") })
	}
	return cat, nil
}

// Delete removes a category and every cause filed under it.
func (s *CauseCategoryService) Delete(ctx context.Context, id uint) (*models.CauseCategory, error) {
	cat, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("category_id = ?", cat.ID).Delete(&models.Cause{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.CauseCategory{}, cat.ID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("delete cause category: %w", err)
	}
	s.log.Info("Cause category deleted", "id", cat.ID)
	return cat, nil
}
