package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cancerinfo/cms/internal/models"
)

func TestCreateAndFetchCancerType(t *testing.T) {
	ta := newTestAPI(t)

	w := ta.do(t, http.MethodPost, "/api/v1/cancer-types/", ta.staffToken, map[string]any{
		"name": "Kanker Paru-paru", "description": "d", "symptoms": "batuk", "risk_level": "HIGH",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	assert.Equal(t, "kanker-paru-paru", created["slug"])
	assert.Equal(t, "HIGH", created["risk_level"])

	w = ta.do(t, http.MethodGet, "/api/v1/cancer-types/kanker-paru-paru/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode(t, w)
	assert.Equal(t, created["id"], detail["id"])
	for _, key := range []string{"causes", "preventions", "treatments"} {
		assert.Equal(t, []any{}, detail[key], key)
	}
}

func TestDeleteCancerTypeCascades(t *testing.T) {
	ta := newTestAPI(t)
	ct := ta.createCancerType(t, "Kanker Paru-paru")
	cat := ta.createCategory(t, "Lingkungan")

	w := ta.do(t, http.MethodPost, "/api/v1/causes/", ta.staffToken, map[string]any{
		"cancer_type": ct["id"], "category": cat["id"], "name": "Asap rokok",
		"description": "d", "risk_factor": 2.5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	cause := decode(t, w)
	assert.Equal(t, 2.5, cause["risk_factor"])
	assert.Equal(t, "Kanker Paru-paru", cause["cancer_type_name"])
	assert.Equal(t, "Lingkungan", cause["category_name"])

	w = ta.do(t, http.MethodGet, "/api/v1/cancer-types/kanker-paru-paru/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["causes"], 1)

	w = ta.do(t, http.MethodDelete, "/api/v1/cancer-types/kanker-paru-paru/", ta.staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `Cancer type "Kanker Paru-paru" deleted successfully.`, decode(t, w)["message"])

	w = ta.do(t, http.MethodGet, fmt.Sprintf("/api/v1/causes/%v/", cause["id"]), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var n int64
	require.NoError(t, ta.db.Model(&models.Cause{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestNonStaffCannotWrite(t *testing.T) {
	ta := newTestAPI(t)
	ta.createCancerType(t, "Kanker Darah")

	w := ta.do(t, http.MethodDelete, "/api/v1/cancer-types/kanker-darah/", ta.memberToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, decode(t, w), "error")

	w = ta.do(t, http.MethodPatch, "/api/v1/cancer-types/kanker-darah/", ta.memberToken, map[string]any{"name": "X"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ta.do(t, http.MethodPost, "/api/v1/cause-categories/", "", map[string]any{"name": "X", "description": "d"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ta.do(t, http.MethodGet, "/api/v1/cancer-types/kanker-darah/", ta.memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Kanker Darah", decode(t, w)["name"])

	var n int64
	require.NoError(t, ta.db.Model(&models.CauseCategory{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestInvalidTokenOnPublicRead(t *testing.T) {
	ta := newTestAPI(t)
	w := ta.do(t, http.MethodGet, "/api/v1/cancer-types/", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDuplicateNameReturnsFieldError(t *testing.T) {
	ta := newTestAPI(t)
	ta.createCancerType(t, "Kanker Hati")

	w := ta.do(t, http.MethodPost, "/api/v1/cancer-types/", ta.staffToken, map[string]any{
		"name": "Kanker Hati", "description": "d", "symptoms": "s",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []any{"cancer type with this name already exists."}, decode(t, w)["name"])

	ta.createCategory(t, "Genetik")
	w = ta.do(t, http.MethodPost, "/api/v1/cause-categories/", ta.staffToken, map[string]any{
		"name": "Genetik", "description": "d",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, []any{"cause category with this name already exists."}, decode(t, w)["name"])
}

func TestUpdateCancerType(t *testing.T) {
	ta := newTestAPI(t)
	ta.createCancerType(t, "Kanker Tiroid")

	w := ta.do(t, http.MethodPatch, "/api/v1/cancer-types/kanker-tiroid/", ta.staffToken, map[string]any{
		"name": "Kanker Kelenjar Tiroid", "slug": "ignored",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Kanker Kelenjar Tiroid", body["name"])
	assert.Equal(t, "kanker-tiroid", body["slug"])

	w = ta.do(t, http.MethodPut, "/api/v1/cancer-types/kanker-tiroid/", ta.staffToken, map[string]any{
		"name": "Only name",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w), "description")

	w = ta.do(t, http.MethodPut, "/api/v1/cancer-types/missing/", ta.staffToken, map[string]any{"name": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPaginationAndFilters(t *testing.T) {
	ta := newTestAPI(t)
	rows := make([]models.CancerType, 0, 105)
	for i := 0; i < 105; i++ {
		level := models.LevelLow
		if i%5 == 0 {
			level = models.LevelHigh
		}
		rows = append(rows, models.CancerType{
			Name: fmt.Sprintf("Type %03d", i), Slug: fmt.Sprintf("type-%03d", i),
			Description: "d", Symptoms: "s", RiskLevel: level,
		})
	}
	require.NoError(t, ta.db.CreateInBatches(rows, 50).Error)

	w := ta.do(t, http.MethodGet, "/api/v1/cancer-types/?page_size=1000", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.EqualValues(t, 105, page["count"])
	assert.Len(t, page["results"], 100)
	assert.Equal(t, "http://example.com/api/v1/cancer-types/?page=2&page_size=1000", page["next"])
	assert.Nil(t, page["previous"])

	w = ta.do(t, http.MethodGet, "/api/v1/cancer-types/", "", nil)
	page = decode(t, w)
	assert.Len(t, page["results"], 10)

	w = ta.do(t, http.MethodGet, "/api/v1/cancer-types/?risk_level=HIGH&ordering=-name", "", nil)
	page = decode(t, w)
	assert.EqualValues(t, 21, page["count"])
	first := page["results"].([]any)[0].(map[string]any)
	assert.Equal(t, "Type 100", first["name"])

	w = ta.do(t, http.MethodGet, "/api/v1/cancer-types/?page=99", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Invalid page.", decode(t, w)["error"])

	w = ta.do(t, http.MethodGet, "/api/v1/cancer-types/?risk_level=EXTREME", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w), "risk_level")

	w = ta.do(t, http.MethodGet, "/api/v1/cancer-types/?ordering=password", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTreatmentAndPreventionEndpoints(t *testing.T) {
	ta := newTestAPI(t)
	ct := ta.createCancerType(t, "Kanker Ovarium")

	w := ta.do(t, http.MethodPost, "/api/v1/treatments/", ta.staffToken, map[string]any{
		"cancer_type": ct["id"], "name": "Operasi", "description": "d",
		"side_effects": "nyeri", "treatment_type": "SURGERY", "success_rate": "70%",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tr := decode(t, w)
	assert.Equal(t, "Kanker Ovarium", tr["cancer_type_name"])

	w = ta.do(t, http.MethodGet, fmt.Sprintf("/api/v1/treatments/?cancer_type=%v&treatment_type=SURGERY", ct["id"]), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w)["count"])

	w = ta.do(t, http.MethodPost, "/api/v1/preventions/", ta.staffToken, map[string]any{
		"cancer_type": ct["id"], "title": "Skrining", "description": "d",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode(t, w)
	assert.Equal(t, "MEDIUM", p["effectiveness"])

	w = ta.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/preventions/%v/", p["id"]), ta.staffToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `Prevention "Skrining" deleted successfully.`, decode(t, w)["message"])

	w = ta.do(t, http.MethodGet, "/api/v1/treatments/abc/", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
