package bootstrap_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"rezum-backend/internal/bootstrap"
	"rezum-backend/internal/shared/config"
	"rezum-backend/internal/shared/telemetry"
	"rezum-backend/internal/testutil"
)

type cannedLLM struct{ reply string }

func (c cannedLLM) Complete(ctx context.Context, prompt string) (string, error) {
	return c.reply, nil
}

func testConfig() config.Config {
	return config.Config{
		Env:             "dev",
		Port:            "0",
		CORSAllowOrigin: []string{"http://localhost:3000"},
		MaxUploadBytes:  10 << 20,
		FileStore:       "memory",
		LLMProvider:     "gemini",
	}
}

func uploadFile(t *testing.T, router http.Handler, name string, data []byte) string {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write(data); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/upload", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		FileID string `json:"fileId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.FileID == "" {
		t.Fatalf("expected fileId, got empty")
	}
	return created.FileID
}

func serve(router http.Handler, method, path string) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(method, path, nil))
	return resp
}

func exerciseFlow(t *testing.T, router http.Handler) {
	t.Helper()
	pdf := testutil.PDF("Alex Kim Platform Engineer Terraform")
	id := uploadFile(t, router, "Alex Kim.pdf", pdf)

	list := serve(router, http.MethodGet, "/api/v1/upload")
	if list.Code != http.StatusOK || !strings.Contains(list.Body.String(), id) {
		t.Fatalf("expected %s listed, got %d %s", id, list.Code, list.Body.String())
	}

	download := serve(router, http.MethodGet, "/api/v1/upload/"+id)
	if download.Code != http.StatusOK || !bytes.Equal(download.Body.Bytes(), pdf) {
		t.Fatalf("download mismatch: status %d", download.Code)
	}

	text := serve(router, http.MethodGet, "/api/v1/upload/text/"+id)
	if text.Code != http.StatusOK || !strings.Contains(text.Body.String(), "Terraform") {
		t.Fatalf("unexpected text response %d %s", text.Code, text.Body.String())
	}

	analysis := serve(router, http.MethodGet, "/api/v1/upload/analyze/"+id)
	if analysis.Code != http.StatusOK {
		t.Fatalf("expected analyze 200, got %d: %s", analysis.Code, analysis.Body.String())
	}
	var result struct {
		FileID   string `json:"fileId"`
		ATSScore *int   `json:"atsScore"`
	}
	if err := json.Unmarshal(analysis.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	if result.FileID != id || result.ATSScore == nil || *result.ATSScore != 67 {
		t.Fatalf("unexpected analysis result %+v", result)
	}

	page := serve(router, http.MethodGet, "/ats/"+id)
	if page.Code != http.StatusOK || !strings.Contains(page.Body.String(), "67/100") {
		t.Fatalf("unexpected results page %d", page.Code)
	}

	if del := serve(router, http.MethodDelete, "/api/v1/upload/"+id); del.Code != http.StatusOK {
		t.Fatalf("expected first delete 200, got %d", del.Code)
	}
	if del := serve(router, http.MethodDelete, "/api/v1/upload/"+id); del.Code != http.StatusNotFound {
		t.Fatalf("expected second delete 404, got %d", del.Code)
	}
}

func TestFlowWithMemoryStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	defer telemetry.SetLogger(zap.NewNop())()

	app, err := bootstrap.Build(testConfig(), bootstrap.WithLLM(cannedLLM{reply: "## Review\n\n**ATS Score**: 67/100"}))
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()
	if app.StoreName != "memory" {
		t.Fatalf("expected memory store, got %s", app.StoreName)
	}

	exerciseFlow(t, app.Router)
}

func TestFlowWithRedisStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	defer telemetry.SetLogger(zap.NewNop())()

	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.FileStore = "redis"
	cfg.RedisPrefix = "test:"
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	app, err := bootstrap.Build(cfg, bootstrap.WithRedis(client), bootstrap.WithLLM(cannedLLM{reply: "ATS Score: 67"}))
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close()
	if app.StoreName != "redis" {
		t.Fatalf("expected redis store, got %s", app.StoreName)
	}

	exerciseFlow(t, app.Router)

	health := serve(app.Router, http.MethodGet, "/api/v1/health")
	if !strings.Contains(health.Body.String(), `"store":"redis"`) {
		t.Fatalf("unexpected health %s", health.Body.String())
	}
}

func TestMissingAPIKeyUsesPlaceholder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	defer telemetry.SetLogger(zap.NewNop())()

	cfg := testConfig()
	cfg.LLMMaxAttempts = 3
	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}

	id := uploadFile(t, app.Router, "cv.pdf", testutil.PDF("Engineer"))
	resp := serve(app.Router, http.MethodGet, "/api/v1/upload/analyze/"+id)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, `"code":"analysis_failed"`) || !strings.Contains(body, "llm_not_configured") {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestRedisUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	defer telemetry.SetLogger(zap.NewNop())()

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.FileStore = "redis"
	cfg.RedisAddr = addr

	app, err := bootstrap.Build(cfg, bootstrap.WithLLM(cannedLLM{}))
	if err != nil {
		t.Fatalf("dev build should fall back to memory: %v", err)
	}
	if app.StoreName != "memory" {
		t.Fatalf("expected memory fallback, got %s", app.StoreName)
	}

	cfg.Env = "production"
	if _, err := bootstrap.Build(cfg, bootstrap.WithLLM(cannedLLM{})); err == nil {
		t.Fatalf("expected production build to fail without redis")
	}
}
