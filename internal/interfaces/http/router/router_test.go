package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type probeRegistrar struct {
	path string
}

func (r probeRegistrar) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET(r.path, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
}

func TestRouter_MountsUnderVersionPrefix(t *testing.T) {
	engine := gin.New()
	New(engine).Register(probeRegistrar{path: "/probe"}).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/probe", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_CustomVersion(t *testing.T) {
	engine := gin.New()
	New(engine, WithAPIVersion("v2")).Register(probeRegistrar{path: "/probe"}).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/probe", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_GroupMiddlewareAppliesToGroupOnly(t *testing.T) {
	engine := gin.New()
	engine.GET("/outside", func(c *gin.Context) { c.Status(http.StatusOK) })

	reject := func(c *gin.Context) {
		c.AbortWithStatus(http.StatusTeapot)
	}
	New(engine, WithGroupMiddleware(reject)).Register(probeRegistrar{path: "/probe"}).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/probe", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/outside", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
