package service

import (
	"context"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/models"
	"github.com/cancerinfo/cms/internal/pagination"
)

var CauseFilters = pagination.Spec{
	Filters: map[string]pagination.Filter{
		"cancer_type": {Column: "cancer_type_id", Numeric: true},
		"category":    {Column: "category_id", Numeric: true},
	},
	SearchFields: []string{"name", "description"},
	Ordering:     map[string]string{"name": "name", "risk_factor": "risk_factor"},
	DefaultOrder: "name",
}

type CauseInput struct {
	CancerType  *uint    `json:"cancer_type" form:"cancer_type"`
	Category    *uint    `json:"category" form:"category"`
	Name        *string  `json:"name" form:"name"`
	Description *string  `json:"description" form:"description"`
	RiskFactor  *float64 `json:"risk_factor" form:"risk_factor"`
}

type CauseService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCauseService(db *gorm.DB, log *logger.Logger) *CauseService {
	return &CauseService{db: db, log: log.With("service", "CauseService")}
}

func (s *CauseService) validate(ctx context.Context, in *CauseInput, partial bool) error {
	v := &ValidationError{}
	textRule{field: "name", required: true, max: 100}.check(v, in.Name, partial)
	textRule{field: "description", required: true}.check(v, in.Description, partial)
	if r := in.RiskFactor; r != nil && (math.IsNaN(*r) || math.IsInf(*r, 0)) {
		v.Add("risk_factor", "A valid number is required.")
	}
	if err := checkRef(ctx, s.db, v, "cancer_type", &models.CancerType{}, in.CancerType, partial); err != nil {
		return err
	}
	if err := checkRef(ctx, s.db, v, "category", &models.CauseCategory{}, in.Category, partial); err != nil {
		return err
	}
	return v.Err()
}

func (s *CauseService) List(ctx context.Context, req *pagination.Request) ([]models.Cause, int64, error) {
	return paginate[models.Cause](ctx, s.db, req, "CancerType", "Category")
}

func (s *CauseService) Get(ctx context.Context, id uint) (*models.Cause, error) {
	return first[models.Cause](ctx, s.db, "id = ?", id, "CancerType", "Category")
}

// Create stores a cause. A missing risk factor defaults to 1.0.
func (s *CauseService) Create(ctx context.Context, in CauseInput) (*models.Cause, error) {
	if err := s.validate(ctx, &in, false); err != nil {
		return nil, err
	}
	c := &models.Cause{
		CancerTypeID: *in.CancerType,
		CategoryID:   *in.Category,
		Name:         *in.Name,
		Description:  *in.Description,
		RiskFactor:   models.DefaultRiskFactor,
	}
	assign(&c.RiskFactor, in.RiskFactor)

	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, writeErr("create cause", err, nil)
	}
	return s.Get(ctx, c.ID)
}

func (s *CauseService) Update(ctx context.Context, id uint, in CauseInput, partial bool) (*models.Cause, error) {
	c, err := first[models.Cause](ctx, s.db, "id = ?", id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &in, partial); err != nil {
		return nil, err
	}

	assign(&c.CancerTypeID, in.CancerType)
	assign(&c.CategoryID, in.Category)
	assign(&c.Name, in.Name)
	assign(&c.Description, in.Description)
	assign(&c.RiskFactor, in.RiskFactor)
	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, writeErr("update cause", err, nil)
	}
	return s.Get(ctx, c.ID)
}

func (s *CauseService) Delete(ctx context.Context, id uint) (*models.Cause, error) {
	c, err := first[models.Cause](ctx, s.db, "id = ?", id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Cause{}, c.ID).Error; err != nil {
		return nil, fmt.Errorf("delete cause: %w", err)
	}
	return c, nil
}
