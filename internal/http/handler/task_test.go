package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"labgate.app/gateway/internal/http/handler"
	"labgate.app/gateway/internal/http/middleware"
	"labgate.app/gateway/internal/platform"
	"labgate.app/gateway/internal/task"
)

var _ = Describe("TaskHandler", func() {
	var (
		router *gin.Engine
		svc    *mockTaskService
	)

	post := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer secret")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		router = gin.New()
		svc = &mockTaskService{}
		h := handler.NewTaskHandler(svc)

		authed := router.Group("/", middleware.BearerAuth())
		authed.POST("/run/sync", h.RunSync)
		authed.POST("/run/async", h.RunAsync)
		authed.POST("/run/sync/batch", h.RunBatchSync)
		authed.POST("/run/continuation/sync", h.RunContinuationSync)
		authed.GET("/:task_id/status", h.Status)
	})

	Describe("RunSync", func() {
		It("returns 200 with the outcome and forwards the bearer token", func() {
			svc.runSingleSyncFn = func(_ context.Context, apiKey string, req task.Request) (*task.Outcome, error) {
				Expect(apiKey).To(Equal("secret"))
				Expect(req.Kind).To(Equal(task.KindLiterature))
				return &task.Outcome{TaskID: "t1", Status: task.StatusCompleted, Result: strPtr("answer")}, nil
			}

			w := post("/run/sync", `{"kind": "literature", "query": "find papers"}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["task_id"]).To(Equal("t1"))
			Expect(resp["status"]).To(Equal("COMPLETED"))
			Expect(resp["result"]).To(Equal("answer"))
		})

		It("returns 200 with the remote failure as an outcome, not an error", func() {
			svc.runSingleSyncFn = func(_ context.Context, _ string, _ task.Request) (*task.Outcome, error) {
				return &task.Outcome{TaskID: "t1", Status: task.StatusFailed, Error: strPtr("model exploded")}, nil
			}

			w := post("/run/sync", `{"kind": "DUMMY", "query": "q"}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["status"]).To(Equal("FAILED"))
			Expect(resp["error"]).To(Equal("model exploded"))
		})

		It("returns 400 on a body missing the query", func() {
			w := post("/run/sync", `{"kind": "DUMMY"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 400 on a validation error from the core", func() {
			svc.runSingleSyncFn = func(_ context.Context, _ string, _ task.Request) (*task.Outcome, error) {
				return nil, platform.NewError(platform.KindValidation, "unknown job kind")
			}

			w := post("/run/sync", `{"kind": "GUESSWORK", "query": "q"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["kind"]).To(Equal("validation"))
		})

		It("returns 504 when the wait budget runs out", func() {
			svc.runSingleSyncFn = func(_ context.Context, _ string, _ task.Request) (*task.Outcome, error) {
				return nil, &task.TimeoutError{TaskID: "t1", LastStatus: task.StatusRunning, Waited: 30 * time.Second}
			}

			w := post("/run/sync", `{"kind": "DUMMY", "query": "q"}`)

			Expect(w.Code).To(Equal(http.StatusGatewayTimeout))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["kind"]).To(Equal("timeout"))
			Expect(resp["error"]).To(ContainSubstring("RUNNING"))
		})

		It("returns 502 on a connectivity failure", func() {
			svc.runSingleSyncFn = func(_ context.Context, _ string, _ task.Request) (*task.Outcome, error) {
				return nil, platform.NewError(platform.KindConnectivity, "connection refused")
			}

			w := post("/run/sync", `{"kind": "DUMMY", "query": "q"}`)

			Expect(w.Code).To(Equal(http.StatusBadGateway))
		})

		It("returns 401 when the platform rejects the credential", func() {
			svc.runSingleSyncFn = func(_ context.Context, _ string, _ task.Request) (*task.Outcome, error) {
				return nil, platform.NewError(platform.KindAuth, "bad credentials")
			}

			w := post("/run/sync", `{"kind": "DUMMY", "query": "q"}`)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("rejects a request with no Authorization header before the service runs", func() {
			called := false
			svc.runSingleSyncFn = func(_ context.Context, _ string, _ task.Request) (*task.Outcome, error) {
				called = true
				return nil, nil
			}

			req := httptest.NewRequest(http.MethodPost, "/run/sync", bytes.NewBufferString(`{"kind": "DUMMY", "query": "q"}`))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(w.Header().Get("WWW-Authenticate")).To(Equal("Bearer"))
			Expect(called).To(BeFalse())
		})
	})

	Describe("RunAsync", func() {
		It("returns 202 with the started task", func() {
			svc.runSingleAsyncFn = func(_ context.Context, _ string, _ task.Request) (*task.Handle, error) {
				return &task.Handle{TaskID: "t9", SubmittedAt: time.Now()}, nil
			}

			w := post("/run/async", `{"kind": "ANALYSIS", "query": "crunch"}`)

			Expect(w.Code).To(Equal(http.StatusAccepted))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["task_id"]).To(Equal("t9"))
			Expect(resp["status"]).To(Equal("started"))
		})
	})

	Describe("RunBatchSync", func() {
		It("returns 200 with per-slot outcomes and errors in input order", func() {
			svc.runBatchFn = func(_ context.Context, _ string, reqs []task.Request, mode task.Mode) ([]task.BatchEntry, error) {
				Expect(mode).To(Equal(task.ModeSync))
				Expect(reqs).To(HaveLen(2))
				return []task.BatchEntry{
					{Index: 0, Outcome: &task.Outcome{TaskID: "a", Status: task.StatusCompleted, Result: strPtr("ok")}},
					{Index: 1, Err: platform.NewError(platform.KindValidation, "unknown job kind")},
				}, nil
			}

			w := post("/run/sync/batch", `{"tasks": [
				{"kind": "DUMMY", "query": "one"},
				{"kind": "NOPE", "query": "two"}
			]}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp struct {
				Results []struct {
					Index   int `json:"index"`
					Outcome *struct {
						TaskID string `json:"task_id"`
					} `json:"outcome"`
					Error *struct {
						Kind string `json:"kind"`
					} `json:"error"`
				} `json:"results"`
			}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Results).To(HaveLen(2))
			Expect(resp.Results[0].Outcome.TaskID).To(Equal("a"))
			Expect(resp.Results[0].Error).To(BeNil())
			Expect(resp.Results[1].Outcome).To(BeNil())
			Expect(resp.Results[1].Error.Kind).To(Equal("validation"))
		})

		It("returns 400 on an empty batch", func() {
			w := post("/run/sync/batch", `{"tasks": []}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 401 when the platform rejected the credential mid-batch", func() {
			svc.runBatchFn = func(_ context.Context, _ string, _ []task.Request, _ task.Mode) ([]task.BatchEntry, error) {
				return nil, platform.NewError(platform.KindAuth, "bad credentials")
			}

			w := post("/run/sync/batch", `{"tasks": [{"kind": "DUMMY", "query": "q"}]}`)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("RunContinuationSync", func() {
		It("requires the continuation id in the body", func() {
			w := post("/run/continuation/sync", `{"kind": "DUMMY", "query": "q"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("passes the continuation id through to the service", func() {
			svc.runSingleSyncFn = func(_ context.Context, _ string, req task.Request) (*task.Outcome, error) {
				Expect(req.ContinuedJobID).To(Equal("7f9c24e8-3b12-4f0a-9c5d-1a2b3c4d5e6f"))
				return &task.Outcome{TaskID: "t2", Status: task.StatusCompleted}, nil
			}

			w := post("/run/continuation/sync", `{
				"kind": "LITERATURE",
				"query": "follow up",
				"continued_job_id": "7f9c24e8-3b12-4f0a-9c5d-1a2b3c4d5e6f"
			}`)

			Expect(w.Code).To(Equal(http.StatusOK))
		})
	})

	Describe("Status", func() {
		It("returns 200 with the current snapshot", func() {
			svc.checkStatusFn = func(_ context.Context, _, taskID string) (*task.Outcome, error) {
				Expect(taskID).To(Equal("t7"))
				return &task.Outcome{TaskID: "t7", Status: task.StatusRunning}, nil
			}

			req := httptest.NewRequest(http.MethodGet, "/t7/status", nil)
			req.Header.Set("Authorization", "Bearer secret")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp map[string]any
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["status"]).To(Equal("RUNNING"))
		})

		It("returns 404 for an unknown task id", func() {
			svc.checkStatusFn = func(_ context.Context, _, _ string) (*task.Outcome, error) {
				return nil, platform.NewError(platform.KindNotFound, "task not found")
			}

			req := httptest.NewRequest(http.MethodGet, "/missing/status", nil)
			req.Header.Set("Authorization", "Bearer secret")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})
})
