package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"solarsite/internal/auth"
	"solarsite/internal/config"
	"solarsite/internal/database"
	"solarsite/internal/mailer"
	"solarsite/internal/storage"
)

type fakeStore struct {
	objects      map[string][]byte
	contentTypes map[string]string
	deleted      []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects:      map[string][]byte{},
		contentTypes: map[string]string{},
	}
}

func (s *fakeStore) UploadFile(_ context.Context, objectKey string, reader io.Reader, _ int64, contentType string) error {
	b, _ := io.ReadAll(reader)
	s.objects[objectKey] = b
	s.contentTypes[objectKey] = contentType
	return nil
}

func (s *fakeStore) OpenObject(_ context.Context, objectKey string) (io.ReadCloser, storage.ObjectInfo, error) {
	b, ok := s.objects[objectKey]
	if !ok {
		return nil, storage.ObjectInfo{}, fmt.Errorf("get object %q: NoSuchKey", objectKey)
	}
	info := storage.ObjectInfo{
		ContentType: s.contentTypes[objectKey],
		Size:        int64(len(b)),
	}
	return io.NopCloser(bytes.NewReader(b)), info, nil
}

func (s *fakeStore) DeleteObject(_ context.Context, objectKey string) error {
	s.deleted = append(s.deleted, objectKey)
	delete(s.objects, objectKey)
	delete(s.contentTypes, objectKey)
	return nil
}

type fakeSender struct {
	sent []mailer.ContactMessage
	err  error
}

func (s *fakeSender) SendContactNotification(_ context.Context, msg mailer.ContactMessage) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(database.AllModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestAuthService(t *testing.T) *auth.AuthService {
	t.Helper()
	svc, err := auth.NewAuthService("test-secret", 24*time.Hour)
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return svc
}

func testConfig() *config.Config {
	return &config.Config{
		API: config.APIConfig{Port: 3001, AllowedOrigins: []string{"*"}},
		Auth: config.AuthConfig{
			JWTSecret: "test-secret",
			TokenTTL:  24 * time.Hour,
		},
		Upload: config.UploadConfig{
			MaxImageBytes: 5 * 1024 * 1024,
			MaxMediaBytes: 10 * 1024 * 1024,
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// multipartBody builds a multipart request body from form fields plus an
// optional file part with an explicit content type.
func multipartBody(t *testing.T, fields map[string]string, fileField, filename, fileContentType string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if fileField != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fileField, filename))
		header.Set("Content-Type", fileContentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := part.Write(fileContent); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func performRequest(t *testing.T, router *gin.Engine, method, target string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonHeaders(extra map[string]string) map[string]string {
	headers := map[string]string{"Content-Type": "application/json"}
	for key, value := range extra {
		headers[key] = value
	}
	return headers
}

func adminToken(t *testing.T, svc *auth.AuthService) string {
	t.Helper()
	token, err := svc.GenerateToken(1, "admin", database.RoleAdmin)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// newTestRouter wires the full route table against fakes, mirroring what
// cmd/api does in production.
func newTestRouter(t *testing.T, db *gorm.DB, store ObjectStore, sender mailer.Sender) (*gin.Engine, *auth.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := newTestAuthService(t)
	router := gin.New()
	RegisterRoutes(router, testConfig(), db, store, sender, svc, nil, discardLogger())
	return router, svc
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d got %d body=%s", want, w.Code, w.Body.String())
	}
}
