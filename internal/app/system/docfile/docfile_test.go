package docfile_test

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/hrportal/internal/app/system/docfile"
	"github.com/dalemusser/hrportal/internal/domain/models"
)

func uploadRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestRead_PDF(t *testing.T) {
	req := uploadRequest(t, "file", "../../i983.pdf", []byte("%PDF-1.4\n1 0 obj\n"))

	got, err := docfile.Read(httptest.NewRecorder(), req, "file")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.ContentType != "application/pdf" {
		t.Errorf("ContentType: got %q, want %q", got.ContentType, "application/pdf")
	}
	if got.Filename != "i983.pdf" {
		t.Errorf("Filename: got %q, want %q", got.Filename, "i983.pdf")
	}
}

func TestRead_PNG(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)
	got, err := docfile.Read(httptest.NewRecorder(), uploadRequest(t, "file", "ead.png", png), "file")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.ContentType != "image/png" {
		t.Errorf("ContentType: got %q, want %q", got.ContentType, "image/png")
	}
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name string
		req  func(t *testing.T) *http.Request
		want error
	}{
		{"no file", func(t *testing.T) *http.Request { return uploadRequest(t, "file", "", nil) }, docfile.ErrNoFile},
		{"wrong field", func(t *testing.T) *http.Request { return uploadRequest(t, "other", "a.pdf", []byte("%PDF-1.4")) }, docfile.ErrNoFile},
		{"text file", func(t *testing.T) *http.Request { return uploadRequest(t, "file", "a.txt", []byte("hello world")) }, docfile.ErrType},
		{"too large", func(t *testing.T) *http.Request {
			return uploadRequest(t, "file", "big.pdf", append([]byte("%PDF-1.4"), make([]byte, 11<<20)...))
		}, docfile.ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := docfile.Read(httptest.NewRecorder(), tt.req(t), "file")
			if !errors.Is(err, tt.want) {
				t.Errorf("err: got %v, want %v", err, tt.want)
			}
			if docfile.UserMessage(err) == "" {
				t.Error("expected a user message")
			}
		})
	}
}

func TestServe(t *testing.T) {
	rec := httptest.NewRecorder()
	docfile.Serve(rec, models.FileUpload{Filename: "I-20 form.pdf", ContentType: "application/pdf", Data: []byte("%PDF")})

	if rec.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type: got %q", ct)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, "attachment") || !strings.Contains(cd, "I-20 form.pdf") {
		t.Errorf("Content-Disposition: got %q", cd)
	}
	if rec.Body.String() != "%PDF" {
		t.Errorf("body: got %q", rec.Body.String())
	}
}
