package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/models"
	"github.com/cancerinfo/cms/internal/pagination"
)

var PreventionFilters = pagination.Spec{
	Filters: map[string]pagination.Filter{
		"cancer_type":   {Column: "cancer_type_id", Numeric: true},
		"effectiveness": {Column: "effectiveness", Choices: levelChoices()},
	},
	SearchFields: []string{"title", "description"},
	Ordering:     map[string]string{"title": "title"},
	DefaultOrder: "title",
}

type PreventionInput struct {
	CancerType    *uint         `json:"cancer_type" form:"cancer_type"`
	Title         *string       `json:"title" form:"title"`
	Description   *string       `json:"description" form:"description"`
	Effectiveness *models.Level `json:"effectiveness" form:"effectiveness"`
}

type PreventionService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreventionService(db *gorm.DB, log *logger.Logger) *PreventionService {
	return &PreventionService{db: db, log: log.With("service", "PreventionService")}
}

func (s *PreventionService) validate(ctx context.Context, in *PreventionInput, partial bool) error {
	v := &ValidationError{}
	textRule{field: "title", required: true, max: 200}.check(v, in.Title, partial)
	textRule{field: "description", required: true}.check(v, in.Description, partial)
	if in.Effectiveness != nil && !in.Effectiveness.Valid() {
		v.Add("effectiveness", fmt.Sprintf(msgChoice, *in.Effectiveness))
	}
	if err := checkRef(ctx, s.db, v, "cancer_type", &models.CancerType{}, in.CancerType, partial); err != nil {
		return err
	}
	return v.Err()
}

func (s *PreventionService) List(ctx context.Context, req *pagination.Request) ([]models.Prevention, int64, error) {
	return paginate[models.Prevention](ctx, s.db, req, "CancerType")
}

func (s *PreventionService) All(ctx context.Context) ([]models.Prevention, error) {
	return all[models.Prevention](ctx, s.db, "title", "CancerType")
}

func (s *PreventionService) Get(ctx context.Context, id uint) (*models.Prevention, error) {
	return first[models.Prevention](ctx, s.db, "id = ?", id, "CancerType")
}

func (s *PreventionService) Create(ctx context.Context, in PreventionInput) (*models.Prevention, error) {
	if err := s.validate(ctx, &in, false); err != nil {
		return nil, err
	}
	p := &models.Prevention{
		CancerTypeID:  *in.CancerType,
		Title:         *in.Title,
		Description:   *in.Description,
		Effectiveness: models.LevelMedium,
	}
	assign(&p.Effectiveness, in.Effectiveness)

	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, writeErr("create prevention", err, nil)
	}
	return s.Get(ctx, p.ID)
}

func (s *PreventionService) Update(ctx context.Context, id uint, in PreventionInput, partial bool) (*models.Prevention, error) {
	p, err := first[models.Prevention](ctx, s.db, "id = ?", id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &in, partial); err != nil {
		return nil, err
	}

	assign(&p.CancerTypeID, in.CancerType)
	assign(&p.Title, in.Title)
	assign(&p.Description, in.Description)
	assign(&p.Effectiveness, in.Effectiveness)
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		return nil, writeErr("update prevention", err, nil)
	}
	return s.Get(ctx, p.ID)
}

func (s *PreventionService) Delete(ctx context.Context, id uint) (*models.Prevention, error) {
	p, err := first[models.Prevention](ctx, s.db, "id = ?", id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Prevention{}, p.ID).Error; err != nil {
		return nil, fmt.Errorf("delete prevention: %w", err)
	}
	return p, nil
}
