package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cancerinfo/cms/internal/api"
	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/media"
	"github.com/cancerinfo/cms/internal/service"
	"github.com/cancerinfo/cms/internal/testhelpers"
)

type testAPI struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
	store  *media.LocalStore

	staffToken  string
	memberToken string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupSQLite(t)
	log := logger.Nop()
	store := media.NewLocalStore(t.TempDir(), "/media/")
	issuer := service.NewTokenIssuer("api-test-secret", 5*time.Minute, 24*time.Hour)
	auth := service.NewAuthService(db, log, issuer)

	router := gin.New()
	api.SetupAPI(router, api.Deps{
		Catalog: api.CatalogServices{
			CancerTypes: service.NewCancerTypeService(db, log),
			Categories:  service.NewCauseCategoryService(db, log),
			Causes:      service.NewCauseService(db, log),
			Preventions: service.NewPreventionService(db, log),
			Treatments:  service.NewTreatmentService(db, log),
		},
		Auth:      auth,
		Profiles:  service.NewProfileService(db, log, store),
		AvatarURL: store.URL,
		Log:       log,
	})

	ta := &testAPI{router: router, db: db, auth: auth, store: store}
	ta.staffToken = ta.account(t, "admin", true)
	ta.memberToken = ta.account(t, "member", false)
	return ta
}

// account registers a user and returns an access token for it.
func (ta *testAPI) account(t *testing.T, username string, staff bool) string {
	t.Helper()
	ctx := context.Background()
	_, err := ta.auth.Register(ctx, service.RegisterInput{
		Username: username, Password: "s3cret-pass", Staff: staff,
	})
	require.NoError(t, err)
	pair, err := ta.auth.IssueTokens(ctx, username, "s3cret-pass")
	require.NoError(t, err)
	return pair.Access
}

func (ta *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ta.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (ta *testAPI) createCancerType(t *testing.T, name string) map[string]any {
	t.Helper()
	w := ta.do(t, http.MethodPost, "/api/v1/cancer-types/", ta.staffToken, map[string]any{
		"name": name, "description": "desc", "symptoms": "symp",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)
}

func (ta *testAPI) createCategory(t *testing.T, name string) map[string]any {
	t.Helper()
	w := ta.do(t, http.MethodPost, "/api/v1/cause-categories/", ta.staffToken, map[string]any{
		"name": name, "description": "desc",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode(t, w)
}
