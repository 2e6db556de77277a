package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mediavault/mediavault/config"
	"github.com/mediavault/mediavault/models"
	"github.com/mediavault/mediavault/routes"
)

// newTestServer builds the real router over a fresh in-memory database and a
// temporary storage root.
func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	r, db, _ := newTestEnv(t)
	return r, db
}

// newTestEnv is newTestServer plus the config the router was built with, for
// tests that need to inspect limits or the storage root.
func newTestEnv(t *testing.T) (*gin.Engine, *gorm.DB, config.AppConfig) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.UploadedFile{}); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	cfg := config.AppConfig{
		AppPort:            "0",
		GinMode:            "test",
		JWTSecret:          "test-secret",
		TokenTTLHours:      1,
		UploadDir:          t.TempDir(),
		MaxUploadMB:        5,
		RateLimitPerMinute: 100000,
		AllowedOrigins:     []string{"*"},
	}

	return routes.SetupRouter(db, cfg), db, cfg
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doAuthed(t *testing.T, r http.Handler, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func signupUser(t *testing.T, r http.Handler, username, password string) {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/signup", map[string]string{
		"username": username,
		"password": password,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: status %d, body %s", username, w.Code, w.Body.String())
	}
}

func loginUser(t *testing.T, r http.Handler, username, password string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/login", map[string]string{
		"username": username,
		"password": password,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", username, w.Code, w.Body.String())
	}
	token, _ := decodeBody(t, w)["access_token"].(string)
	if token == "" {
		t.Fatalf("login %s: empty access_token", username)
	}
	return token
}

// multipartFile builds a multipart body with one "file" part carrying the
// given filename and content.
func multipartFile(t *testing.T, fieldName, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(fieldName, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func uploadFile(t *testing.T, r http.Handler, token, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartFile(t, "file", filename, content)
	return doAuthed(t, r, http.MethodPost, "/upload", token, body, contentType)
}
