package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cancerinfo/cms/internal/logger"
	"github.com/cancerinfo/cms/internal/middleware"
	"github.com/cancerinfo/cms/internal/pagination"
	"github.com/cancerinfo/cms/internal/policy"
	"github.com/cancerinfo/cms/internal/service"
)

// resource wires the list/create/detail/update/delete endpoints of one
// resource family onto a service. M is the model, In the write payload and
// Out the list representation. Records are addressed by key, which is a
// slug or a numeric id depending on the family.
type resource[M any, In any, Out any] struct {
	path  string
	param string
	label string
	spec  pagination.Spec
	log   *logger.Logger

	list   func(ctx context.Context, req *pagination.Request) ([]M, int64, error)
	get    func(ctx context.Context, key string) (*M, error)
	create func(ctx context.Context, in In) (*M, error)
	update func(ctx context.Context, key string, in In, partial bool) (*M, error)
	remove func(ctx context.Context, key string) (*M, error)

	present func(*M) Out
	// detail renders the single-record view; present is used when nil.
	detail func(*M) any
	// describe names a record in the delete confirmation.
	describe func(*M) string
}

func (r *resource[M, In, Out]) RegisterRoutes(router *gin.RouterGroup) {
	g := router.Group(r.path, adminWritePublicRead())
	item := "/:" + r.param + "/"
	g.GET("/", r.List)
	g.POST("/", r.Create)
	g.GET(item, r.Detail)
	g.PUT(item, r.Update)
	g.PATCH(item, r.Update)
	g.DELETE(item, r.Delete)
}

func (r *resource[M, In, Out]) List(c *gin.Context) {
	req, err := pagination.Parse(c.Request.URL.Query(), r.spec)
	if err != nil {
		respondError(c, r.log, err)
		return
	}
	items, count, err := r.list(c.Request.Context(), &req)
	if err != nil {
		respondError(c, r.log, err)
		return
	}

	results := make([]Out, len(items))
	for i := range items {
		results[i] = r.present(&items[i])
	}
	c.JSON(http.StatusOK, pagination.NewPage(results, count, req, requestURL(c)))
}

func (r *resource[M, In, Out]) Detail(c *gin.Context) {
	m, err := r.get(c.Request.Context(), c.Param(r.param))
	if err != nil {
		respondError(c, r.log, err)
		return
	}
	c.JSON(http.StatusOK, r.render(m))
}

func (r *resource[M, In, Out]) Create(c *gin.Context) {
	var in In
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, err)
		return
	}
	m, err := r.create(c.Request.Context(), in)
	if err != nil {
		respondError(c, r.log, err)
		return
	}
	c.JSON(http.StatusCreated, r.present(m))
}

// Update serves PUT (all fields required) and PATCH (partial).
func (r *resource[M, In, Out]) Update(c *gin.Context) {
	var in In
	if err := c.ShouldBind(&in); err != nil {
		badRequest(c, err)
		return
	}
	partial := c.Request.Method == http.MethodPatch
	m, err := r.update(c.Request.Context(), c.Param(r.param), in, partial)
	if err != nil {
		respondError(c, r.log, err)
		return
	}
	c.JSON(http.StatusOK, r.present(m))
}

func (r *resource[M, In, Out]) Delete(c *gin.Context) {
	m, err := r.remove(c.Request.Context(), c.Param(r.param))
	if err != nil {
		respondError(c, r.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%s %q deleted successfully.", r.label, r.describe(m)),
	})
}

func (r *resource[M, In, Out]) render(m *M) any {
	if r.detail != nil {
		return r.detail(m)
	}
	return r.present(m)
}

// adminWritePublicRead lets anyone read and only staff write.
func adminWritePublicRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := policy.AdminWritePublicRead(middleware.GetPrincipal(c), c.Request.Method); err != nil {
			respondError(c, nil, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// byID adapts an id-addressed service call to a string key. Keys that are
// not ids cannot match a record.
func byID[T any](fn func(context.Context, uint) (T, error)) func(context.Context, string) (T, error) {
	return func(ctx context.Context, key string) (T, error) {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil || id == 0 {
			var zero T
			return zero, service.ErrNotFound
		}
		return fn(ctx, uint(id))
	}
}

func updateByID[M any, In any](fn func(context.Context, uint, In, bool) (*M, error)) func(context.Context, string, In, bool) (*M, error) {
	return func(ctx context.Context, key string, in In, partial bool) (*M, error) {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil || id == 0 {
			return nil, service.ErrNotFound
		}
		return fn(ctx, uint(id), in, partial)
	}
}

// requestURL rebuilds the absolute URL of the request for pagination links.
func requestURL(c *gin.Context) *url.URL {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return &url.URL{
		Scheme:   scheme,
		Host:     c.Request.Host,
		Path:     c.Request.URL.Path,
		RawQuery: c.Request.URL.RawQuery,
	}
}
