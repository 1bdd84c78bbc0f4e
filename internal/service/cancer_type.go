package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/models"
	"github.com/cancerinfo/cms/internal/pagination"
	"github.com/cancerinfo/cms/internal/slug"
)

// CancerTypeFilters is the list query allow-list for cancer types.
var CancerTypeFilters = pagination.Spec{
	Filters: map[string]pagination.Filter{
		"risk_level": {Column: "risk_level", Choices: levelChoices()},
	},
	SearchFields: []string{"name", "description"},
	Ordering:     map[string]string{"name": "name", "created_at": "created_at"},
	DefaultOrder: "name",
}

// CancerTypeInput is a create or update request. Nil fields are absent.
type CancerTypeInput struct {
	Name        *string       `json:"name" form:"name"`
	Description *string       `json:"description" form:"description"`
	Symptoms    *string       `json:"symptoms" form:"symptoms"`
	RiskLevel   *models.Level `json:"risk_level" form:"risk_level"`
}

func (in *CancerTypeInput) validate(partial bool) error {
	v := &ValidationError{}
	textRule{field: "name", required: true, max: 100}.check(v, in.Name, partial)
	textRule{field: "description", required: true}.check(v, in.Description, partial)
	textRule{field: "symptoms", required: true}.check(v, in.Symptoms, partial)
	if in.RiskLevel != nil && !in.RiskLevel.Valid() {
		v.Add("risk_level", fmt.Sprintf(msgChoice, *in.RiskLevel))
	}
	return v.Err()
}

type CancerTypeService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCancerTypeService(db *gorm.DB, log *logger.Logger) *CancerTypeService {
	return &CancerTypeService{db: db, log: log.With("service", "CancerTypeService")}
}

func (s *CancerTypeService) List(ctx context.Context, req *pagination.Request) ([]models.CancerType, int64, error) {
	return paginate[models.CancerType](ctx, s.db, req)
}

// All returns every cancer type ordered by name, for select boxes.
func (s *CancerTypeService) All(ctx context.Context) ([]models.CancerType, error) {
	var out []models.CancerType
	err := s.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

// Featured returns the first n cancer types by name.
func (s *CancerTypeService) Featured(ctx context.Context, n int) ([]models.CancerType, error) {
	var out []models.CancerType
	err := s.db.WithContext(ctx).Order("name").Limit(n).Find(&out).Error
	return out, err
}

// Get loads a cancer type with its causes, preventions and treatments.
func (s *CancerTypeService) Get(ctx context.Context, slugValue string) (*models.CancerType, error) {
	byName := func(db *gorm.DB) *gorm.DB { return db.Order("name") }
	var ct models.CancerType
	err := s.db.WithContext(ctx).
		Preload("Causes", byName).
		Preload("Causes.Category").
		Preload("Preventions", func(db *gorm.DB) *gorm.DB { return db.Order("title") }).
		Preload("Treatments", byName).
		Where("slug = ?", slugValue).
		First(&ct).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ct, nil
}

func (s *CancerTypeService) GetByID(ctx context.Context, id uint) (*models.CancerType, error) {
	return first[models.CancerType](ctx, s.db, "id = ?", id)
}

// Create stores a new cancer type. The slug is derived from the name and
// made unique with a numeric suffix.
func (s *CancerTypeService) Create(ctx context.Context, in CancerTypeInput) (*models.CancerType, error) {
	if err := in.validate(false); err != nil {
		return nil, err
	}

	ct := &models.CancerType{
		Name:        *in.Name,
		Description: *in.Description,
		Symptoms:    *in.Symptoms,
		RiskLevel:   models.LevelMedium,
	}
	assign(&ct.RiskLevel, in.RiskLevel)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken(ctx, tx, &models.CancerType{}, "name", ct.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return duplicateName("cancer type")
		}

		ct.Slug, err = slug.Unique(slug.Make(ct.Name), func(c string) (bool, error) {
			var n int64
			err := tx.Model(&models.CancerType{}).Where("slug = ?", c).Count(&n).Error
			return n > 0, err
		})
		if err != nil {
			return err
		}
		return tx.Create(ct).Error
	})
	if err != nil {
		return nil, writeErr("create cancer type", err, func() error { return duplicateName("cancer type") })
	}

	s.log.Info("Cancer type created", "id", ct.ID, "slug", ct.Slug)
	return ct, nil
}

// Update changes a cancer type. The slug never changes.
func (s *CancerTypeService) Update(ctx context.Context, slugValue string, in CancerTypeInput, partial bool) (*models.CancerType, error) {
	ct, err := first[models.CancerType](ctx, s.db, "slug = ?", slugValue)
	if err != nil {
		return nil, err
	}
	if err := in.validate(partial); err != nil {
		return nil, err
	}

	if in.Name != nil && *in.Name != ct.Name {
		taken, err := nameTaken(ctx, s.db, &models.CancerType{}, "name", *in.Name, ct.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, duplicateName("cancer type")
		}
	}

	assign(&ct.Name, in.Name)
	assign(&ct.Description, in.Description)
	assign(&ct.Symptoms, in.Symptoms)
	assign(&ct.RiskLevel, in.RiskLevel)

	if err := s.db.WithContext(ctx).Save(ct).Error; err != nil {
		return nil, writeErr("update cancer type", err, func() error { return duplicateName("cancer type") })
	}
	return ct, nil
}

// Delete removes a cancer type together with its causes, preventions and
// treatments.
func (s *CancerTypeService) Delete(ctx context.Context, slugValue string) (*models.CancerType, error) {
	ct, err := first[models.CancerType](ctx, s.db, "slug = ?", slugValue)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []any{&models.Cause{}, &models.Prevention{}, &models.Treatment{}} {
			if err := tx.Where("cancer_type_id = ?", ct.ID).Delete(child).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.CancerType{}, ct.ID).Error
	})
	if err != nil {
		return nil, fmt.Errorf("delete cancer type: %w", err)
	}

	s.log.Info("Cancer type deleted", "id", ct.ID, "slug", ct.Slug)
	return ct, nil
}

func levelChoices() []string {
	out := make([]string, len(models.Levels))
	for i, l := range models.Levels {
		out[i] = string(l)
	}
	return out
}
