package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/futig/knowledge-backend/internal/config"
	"github.com/futig/knowledge-backend/internal/entity"
	"github.com/futig/knowledge-backend/internal/pkg/validator"
)

type countingIngestion struct {
	calls int
}

func (c *countingIngestion) Ingest(ctx context.Context, files []entity.UploadedFile) []entity.IngestionOutcome {
	c.calls++
	outcomes := make([]entity.IngestionOutcome, len(files))
	for i, f := range files {
		outcomes[i] = entity.IngestionOutcome{File: f.Name, Status: entity.IngestionStatusIngested, Records: 1}
	}
	return outcomes
}

func multipartBody(t *testing.T, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("files", name)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	fw.Write(content)
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUploadKnowledge_BodyLimit(t *testing.T) {
	cfg := config.FileUploadConfig{MaxFileSize: 1024, MaxFileCount: 1, MaxUploadSize: 1 << 20}

	tests := []struct {
		name       string
		size       int
		wantStatus int
		wantCalls  int
	}{
		{"within limit", 512, http.StatusOK, 1},
		{"single file far over limit", 3 << 20, http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ingest := &countingIngestion{}
			h := NewHandler(nil, nil, ingest, cfg, validator.NewFileValidator(cfg))

			body, contentType := multipartBody(t, "doc.txt", bytes.Repeat([]byte("a"), tt.size))
			req := httptest.NewRequest(http.MethodPost, "/upload-knowledge", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			h.UploadKnowledge(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if ingest.calls != tt.wantCalls {
				t.Errorf("ingestion calls = %d, want %d", ingest.calls, tt.wantCalls)
			}

			if tt.wantStatus == http.StatusBadRequest {
				var resp entity.ErrorResponse
				if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
					t.Fatalf("decode error body: %v", err)
				}
				if resp.Error != msgUploadTooLarge {
					t.Errorf("error = %q, want %q", resp.Error, msgUploadTooLarge)
				}
			}
		})
	}
}

func TestMaxBodySize(t *testing.T) {
	h := &Handler{cfg: config.FileUploadConfig{MaxFileSize: 10 << 20, MaxFileCount: 10}}
	if got, want := h.maxBodySize(), int64(100<<20+multipartOverhead); got != want {
		t.Errorf("maxBodySize() = %d, want %d", got, want)
	}
}
