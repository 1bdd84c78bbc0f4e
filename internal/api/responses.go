package api

import (
	"time"

	"github.com/cancerinfo/cms/internal/models"
)

type CancerTypeResponse struct {
	ID          uint         `json:"id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Description string       `json:"description"`
	Symptoms    string       `json:"symptoms"`
	RiskLevel   models.Level `json:"risk_level"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// CancerTypeDetailResponse embeds the related records. The slices are never
// nil so they serialise as [] when empty.
type CancerTypeDetailResponse struct {
	CancerTypeResponse
	Causes      []CauseResponse      `json:"causes"`
	Preventions []PreventionResponse `json:"preventions"`
	Treatments  []TreatmentResponse  `json:"treatments"`
}

type CauseCategoryResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CauseResponse struct {
	ID             uint    `json:"id"`
	CancerType     uint    `json:"cancer_type"`
	CancerTypeName string  `json:"cancer_type_name"`
	Category       uint    `json:"category"`
	CategoryName   string  `json:"category_name"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	RiskFactor     float64 `json:"risk_factor"`
}

type PreventionResponse struct {
	ID             uint         `json:"id"`
	CancerType     uint         `json:"cancer_type"`
	CancerTypeName string       `json:"cancer_type_name"`
	Title          string       `json:"title"`
	Description    string       `json:"description"`
	Effectiveness  models.Level `json:"effectiveness"`
}

type TreatmentResponse struct {
	ID             uint                 `json:"id"`
	CancerType     uint                 `json:"cancer_type"`
	CancerTypeName string               `json:"cancer_type_name"`
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	SideEffects    string               `json:"side_effects"`
	SuccessRate    string               `json:"success_rate"`
	TreatmentType  models.TreatmentType `json:"treatment_type"`
}

type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	IsStaff   bool   `json:"is_staff"`
}

type ProfileResponse struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	Avatar     string    `json:"avatar"`
	Bio        string    `json:"bio"`
	DateJoined time.Time `json:"date_joined"`
}

func newCancerType(ct *models.CancerType) CancerTypeResponse {
	return CancerTypeResponse{
		ID:          ct.ID,
		Name:        ct.Name,
		Slug:        ct.Slug,
		Description: ct.Description,
		Symptoms:    ct.Symptoms,
		RiskLevel:   ct.RiskLevel,
		CreatedAt:   ct.CreatedAt,
		UpdatedAt:   ct.UpdatedAt,
	}
}

func newCancerTypeDetail(ct *models.CancerType) CancerTypeDetailResponse {
	out := CancerTypeDetailResponse{
		CancerTypeResponse: newCancerType(ct),
		Causes:             make([]CauseResponse, 0, len(ct.Causes)),
		Preventions:        make([]PreventionResponse, 0, len(ct.Preventions)),
		Treatments:         make([]TreatmentResponse, 0, len(ct.Treatments)),
	}
	for i := range ct.Causes {
		c := &ct.Causes[i]
		c.CancerType = ct
		out.Causes = append(out.Causes, newCause(c))
	}
	for i := range ct.Preventions {
		p := &ct.Preventions[i]
		p.CancerType = ct
		out.Preventions = append(out.Preventions, newPrevention(p))
	}
	for i := range ct.Treatments {
		t := &ct.Treatments[i]
		t.CancerType = ct
		out.Treatments = append(out.Treatments, newTreatment(t))
	}
	return out
}

func newCauseCategory(cat *models.CauseCategory) CauseCategoryResponse {
	return CauseCategoryResponse{ID: cat.ID, Name: cat.Name, Description: cat.Description}
}

func newCause(c *models.Cause) CauseResponse {
	out := CauseResponse{
		ID:          c.ID,
		CancerType:  c.CancerTypeID,
		Category:    c.CategoryID,
		Name:        c.Name,
		Description: c.Description,
		RiskFactor:  c.RiskFactor,
	}
	if c.CancerType != nil {
		out.CancerTypeName = c.CancerType.Name
	}
	if c.Category != nil {
		out.CategoryName = c.Category.Name
	}
	return out
}

func newPrevention(p *models.Prevention) PreventionResponse {
	out := PreventionResponse{
		ID:            p.ID,
		CancerType:    p.CancerTypeID,
		Title:         p.Title,
		Description:   p.Description,
		Effectiveness: p.Effectiveness,
	}
	if p.CancerType != nil {
		out.CancerTypeName = p.CancerType.Name
	}
	return out
}

func newTreatment(t *models.Treatment) TreatmentResponse {
	out := TreatmentResponse{
		ID:            t.ID,
		CancerType:    t.CancerTypeID,
		Name:          t.Name,
		Description:   t.Description,
		SideEffects:   t.SideEffects,
		SuccessRate:   t.SuccessRate,
		TreatmentType: t.TreatmentType,
	}
	if t.CancerType != nil {
		out.CancerTypeName = t.CancerType.Name
	}
	return out
}

func newUser(a *models.Account) UserResponse {
	return UserResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		IsStaff:   a.IsStaff,
	}
}
