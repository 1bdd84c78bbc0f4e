package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/models"
	"github.com/cancerinfo/cms/internal/pagination"
)

var TreatmentFilters = pagination.Spec{
	Filters: map[string]pagination.Filter{
		"cancer_type":    {Column: "cancer_type_id", Numeric: true},
		"treatment_type": {Column: "treatment_type", Choices: treatmentTypeChoices()},
	},
	SearchFields: []string{"name", "description"},
	Ordering:     map[string]string{"name": "name"},
	DefaultOrder: "name",
}

type TreatmentInput struct {
	CancerType    *uint                 `json:"cancer_type" form:"cancer_type"`
	Name          *string               `json:"name" form:"name"`
	Description   *string               `json:"description" form:"description"`
	SideEffects   *string               `json:"side_effects" form:"side_effects"`
	SuccessRate   *string               `json:"success_rate" form:"success_rate"`
	TreatmentType *models.TreatmentType `json:"treatment_type" form:"treatment_type"`
}

type TreatmentService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTreatmentService(db *gorm.DB, log *logger.Logger) *TreatmentService {
	return &TreatmentService{db: db, log: log.With("service", "TreatmentService")}
}

func (s *TreatmentService) validate(ctx context.Context, in *TreatmentInput, partial bool) error {
	v := &ValidationError{}
	textRule{field: "name", required: true, max: 200}.check(v, in.Name, partial)
	textRule{field: "description", required: true}.check(v, in.Description, partial)
	textRule{field: "side_effects", required: true}.check(v, in.SideEffects, partial)
	textRule{field: "success_rate", allowBlank: true, max: 100}.check(v, in.SuccessRate, partial)
	switch {
	case in.TreatmentType == nil:
		if !partial {
			v.Add("treatment_type", msgRequired)
		}
	case !in.TreatmentType.Valid():
		v.Add("treatment_type", fmt.Sprintf(msgChoice, *in.TreatmentType))
	}
	if err := checkRef(ctx, s.db, v, "cancer_type", &models.CancerType{}, in.CancerType, partial); err != nil {
		return err
	}
	return v.Err()
}

func (s *TreatmentService) List(ctx context.Context, req *pagination.Request) ([]models.Treatment, int64, error) {
	return paginate[models.Treatment](ctx, s.db, req, "CancerType")
}

func (s *TreatmentService) All(ctx context.Context) ([]models.Treatment, error) {
	return all[models.Treatment](ctx, s.db, "name", "CancerType")
}

func (s *TreatmentService) Get(ctx context.Context, id uint) (*models.Treatment, error) {
	return first[models.Treatment](ctx, s.db, "id = ?", id, "CancerType")
}

func (s *TreatmentService) Create(ctx context.Context, in TreatmentInput) (*models.Treatment, error) {
	if err := s.validate(ctx, &in, false); err != nil {
		return nil, err
	}
	t := &models.Treatment{
		CancerTypeID:  *in.CancerType,
		Name:          *in.Name,
		Description:   *in.Description,
		SideEffects:   *in.SideEffects,
		TreatmentType: *in.TreatmentType,
	}
	assign(&t.SuccessRate, in.SuccessRate)

	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, writeErr("create treatment", err, nil)
	}
	return s.Get(ctx, t.ID)
}

func (s *TreatmentService) Update(ctx context.Context, id uint, in TreatmentInput, partial bool) (*models.Treatment, error) {
	t, err := first[models.Treatment](ctx, s.db, "id = ?", id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &in, partial); err != nil {
		return nil, err
	}

	assign(&t.CancerTypeID, in.CancerType)
	assign(&t.Name, in.Name)
	assign(&t.Description, in.Description)
	assign(&t.SideEffects, in.SideEffects)
	assign(&t.SuccessRate, in.SuccessRate)
	assign(&t.TreatmentType, in.TreatmentType)
	if err := s.db.WithContext(ctx).Save(t).Error; err != nil {
		return nil, writeErr("update treatment", err, nil)
	}
	return s.Get(ctx, t.ID)
}

func (s *TreatmentService) Delete(ctx context.Context, id uint) (*models.Treatment, error) {
	t, err := first[models.Treatment](ctx, s.db, "id = ?", id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Treatment{}, t.ID).Error; err != nil {
		return nil, fmt.Errorf("delete treatment: %w", err)
	}
	return t, nil
}

func treatmentTypeChoices() []string {
	out := make([]string, len(models.TreatmentTypes))
	for i, t := range models.TreatmentTypes {
		out[i] = string(t)
	}
	return out
}
