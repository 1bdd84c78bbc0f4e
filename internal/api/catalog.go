package api

import (
	"github.com/gin-gonic/gin"

	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/models"
	"github.com/cancerinfo/cms/internal/service"
)

// CatalogServices are the services behind the five resource families.
type CatalogServices struct {
	CancerTypes *service.CancerTypeService
	Categories  *service.CauseCategoryService
	Causes      *service.CauseService
	Preventions *service.PreventionService
	Treatments  *service.TreatmentService
}

// RegisterCatalogRoutes mounts the cancer-types, cause-categories, causes,
// preventions and treatments endpoints.
func RegisterCatalogRoutes(router *gin.RouterGroup, svc CatalogServices, log *logger.Logger) {
	(&resource[models.CancerType, service.CancerTypeInput, CancerTypeResponse]{
		path:     "/cancer-types",
		param:    "slug",
		label:    "Cancer type",
		spec:     service.CancerTypeFilters,
		log:      log,
		list:     svc.CancerTypes.List,
		get:      svc.CancerTypes.Get,
		create:   svc.CancerTypes.Create,
		update:   svc.CancerTypes.Update,
		remove:   svc.CancerTypes.Delete,
		present:  func(m *models.CancerType) CancerTypeResponse { return newCancerType(m) },
		detail:   func(m *models.CancerType) any { return newCancerTypeDetail(m) },
		describe: func(m *models.CancerType) string { return m.Name },
	}).RegisterRoutes(router)

	(&resource[models.CauseCategory, service.CauseCategoryInput, CauseCategoryResponse]{
		path:     "/cause-categories",
		param:    "id",
		label:    "Cause category",
		spec:     service.CauseCategoryFilters,
		log:      log,
		list:     svc.Categories.List,
		get:      byID(svc.Categories.Get),
		create:   svc.Categories.Create,
		update:   updateByID(svc.Categories.Update),
		remove:   byID(svc.Categories.Delete),
		present:  func(m *models.CauseCategory) CauseCategoryResponse { return newCauseCategory(m) },
		describe: func(m *models.CauseCategory) string { return m.Name },
	}).RegisterRoutes(router)

	(&resource[models.Cause, service.CauseInput, CauseResponse]{
		path:     "/causes",
		param:    "id",
		label:    "Cause",
		spec:     service.CauseFilters,
		log:      log,
		list:     svc.Causes.List,
		get:      byID(svc.Causes.Get),
		create:   svc.Causes.Create,
		update:   updateByID(svc.Causes.Update),
		remove:   byID(svc.Causes.Delete),
		present:  func(m *models.Cause) CauseResponse { return newCause(m) },
		describe: func(m *models.Cause) string { return m.Name },
	}).RegisterRoutes(router)

	(&resource[models.Prevention, service.PreventionInput, PreventionResponse]{
		path:     "/preventions",
		param:    "id",
		label:    "Prevention",
		spec:     service.PreventionFilters,
		log:      log,
		list:     svc.Preventions.List,
		get:      byID(svc.Preventions.Get),
		create:   svc.Preventions.Create,
		update:   updateByID(svc.Preventions.Update),
		remove:   byID(svc.Preventions.Delete),
		present:  func(m *models.Prevention) PreventionResponse { return newPrevention(m) },
		describe: func(m *models.Prevention) string { return m.Title },
	}).RegisterRoutes(router)

	(&resource[models.Treatment, service.TreatmentInput, TreatmentResponse]{
		path:     "/treatments",
		param:    "id",
		label:    "Treatment",
		spec:     service.TreatmentFilters,
		log:      log,
		list:     svc.Treatments.List,
		get:      byID(svc.Treatments.Get),
		create:   svc.Treatments.Create,
		update:   updateByID(svc.Treatments.Update),
		remove:   byID(svc.Treatments.Delete),
		present:  func(m *models.Treatment) TreatmentResponse { return newTreatment(m) },
		describe: func(m *models.Treatment) string { return m.Name },
	}).RegisterRoutes(router)
}
