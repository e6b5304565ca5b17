package app

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"folio/api/internal/media"
)

// fakeUploader records calls and applies the shared type policy.
type fakeUploader struct {
	calls int
}

func (f *fakeUploader) Upload(ctx context.Context, kind, contentType string, r io.Reader, size int64) (string, error) {
	if _, err := media.CheckType(kind, contentType); err != nil {
		return "", err
	}
	f.calls++
	return "https://media.example.com/" + kind + "/object", nil
}

func uploadRequest(t *testing.T, target, token, fieldName, contentType string, payload []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="upload.bin"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestUploadRequiresSession(t *testing.T) {
	server, svc := newTestServer(t)
	svc.UseUploader(&fakeUploader{})

	req := uploadRequest(t, "/api/upload", "", "file", "image/png", []byte("png-bytes"))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rr.Code)
	}
}

func TestUploadSuccess(t *testing.T) {
	server, svc := newTestServer(t)
	uploader := &fakeUploader{}
	svc.UseUploader(uploader)
	token := adminToken(t, svc)

	req := uploadRequest(t, "/api/upload", token, "file", "image/png", []byte("png-bytes"))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var response map[string]any
	decodeResponse(t, rr, &response)
	url, _ := response["url"].(string)
	if !strings.HasPrefix(url, "https://media.example.com/") {
		t.Errorf("expected a permanent URL, got %q", url)
	}
	if uploader.calls != 1 {
		t.Errorf("expected exactly one backend call, got %d", uploader.calls)
	}
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	server, svc := newTestServer(t)
	uploader := &fakeUploader{}
	svc.UseUploader(uploader)
	token := adminToken(t, svc)

	req := uploadRequest(t, "/api/upload", token, "file", "text/plain", []byte("hello"))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	var response map[string]any
	decodeResponse(t, rr, &response)
	details, _ := response["details"].(map[string]any)
	accepted, _ := details["accepted"].(string)
	if !strings.Contains(accepted, "image/png") {
		t.Errorf("expected accepted-type list in details, got %v", response["details"])
	}
	if uploader.calls != 0 {
		t.Errorf("expected no backend call for a rejected type, got %d", uploader.calls)
	}
}

func TestUploadResumeKindIsStricter(t *testing.T) {
	server, svc := newTestServer(t)
	svc.UseUploader(&fakeUploader{})
	token := adminToken(t, svc)

	// PDF is fine for the default kind but not for the resume slot
	req := uploadRequest(t, "/api/upload?kind=resume", token, "file", "application/pdf", []byte("%PDF"))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	var response map[string]any
	decodeResponse(t, rr, &response)
	if response["error"] != "Only JPG or PNG files are allowed" {
		t.Errorf("unexpected error message: %v", response["error"])
	}
}

func TestUploadMissingFilePart(t *testing.T) {
	server, svc := newTestServer(t)
	svc.UseUploader(&fakeUploader{})
	token := adminToken(t, svc)

	req := uploadRequest(t, "/api/upload", token, "attachment", "image/png", []byte("png-bytes"))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without a 'file' part, got %d", rr.Code)
	}
}

func TestUploadWithoutBackendIs503(t *testing.T) {
	server, svc := newTestServer(t)
	token := adminToken(t, svc)

	req := uploadRequest(t, "/api/upload", token, "file", "image/png", []byte("png-bytes"))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when media storage is not configured, got %d", rr.Code)
	}
}

func TestUploadUnknownKindRejected(t *testing.T) {
	server, svc := newTestServer(t)
	svc.UseUploader(&fakeUploader{})
	token := adminToken(t, svc)

	req := uploadRequest(t, "/api/upload?kind=video", token, "file", "image/png", []byte("png-bytes"))
	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for unknown kind, got %d", rr.Code)
	}
}
