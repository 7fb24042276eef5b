package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"labgate.app/gateway/internal/http/handler"
	"labgate.app/gateway/internal/platform"
	"labgate.app/gateway/internal/service"
	"labgate.app/gateway/internal/task"
)

var _ = Describe("JobsHandler", func() {
	It("lists the catalog entries", func() {
		gin.SetMode(gin.TestMode)
		router := gin.New()
		catalog := &mockJobCatalog{listFn: func() []service.JobDescription {
			return []service.JobDescription{
				{Kind: task.KindLiterature, Description: "Literature search."},
				{Kind: task.KindDummy, Description: "Dummy task."},
			}
		}}
		router.GET("/jobs", handler.NewJobsHandler(catalog).List)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp struct {
			Jobs []struct {
				Name        string `json:"name"`
				Description string `json:"description"`
			} `json:"jobs"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Jobs).To(HaveLen(2))
		Expect(resp.Jobs[0].Name).To(Equal("LITERATURE"))
	})
})

var _ = Describe("PlatformHealthHandler", func() {
	var (
		router *gin.Engine
		svc    *mockTaskService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockTaskService{}
		router.GET("/platform/health", handler.NewPlatformHealthHandler(svc).Check)
	})

	It("reports connected when the probe succeeds", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/platform/health", nil))

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["status"]).To(Equal("connected"))
	})

	It("reports unreachable with 503 when the probe fails", func() {
		svc.pingFn = func(_ context.Context, _ string) error {
			return platform.NewError(platform.KindConnectivity, "connection refused")
		}

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/platform/health", nil))

		Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
		var resp map[string]any
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp["status"]).To(Equal("unreachable"))
	})
})
