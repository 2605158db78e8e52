package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"research-rag-be/internal/dto"
	"research-rag-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeDocumentService struct {
	uploaded  []byte
	filename  string
	duplicate bool
	showErr   error
	userId    uuid.UUID
}

func (f *fakeDocumentService) Upload(_ context.Context, userId uuid.UUID, filename string, r io.Reader) (*dto.UploadDocumentResponse, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.uploaded, f.filename, f.userId = data, filename, userId
	return &dto.UploadDocumentResponse{Id: uuid.New(), Filename: filename, Status: "completed", Duplicate: f.duplicate}, nil
}

func (f *fakeDocumentService) List(_ context.Context, userId uuid.UUID, _ *dto.ListDocumentsRequest) ([]dto.DocumentResponse, error) {
	f.userId = userId
	return []dto.DocumentResponse{}, nil
}

func (f *fakeDocumentService) Show(_ context.Context, _ uuid.UUID, _ uuid.UUID) (*dto.DocumentDetailResponse, error) {
	if f.showErr != nil {
		return nil, f.showErr
	}
	return &dto.DocumentDetailResponse{}, nil
}

func (f *fakeDocumentService) Chunks(context.Context, uuid.UUID, uuid.UUID, *dto.ListChunksRequest) ([]dto.ChunkResponse, error) {
	return []dto.ChunkResponse{}, nil
}

func (f *fakeDocumentService) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	return nil
}

func (f *fakeDocumentService) Clear(context.Context, uuid.UUID) (*dto.ClearDocumentsResponse, error) {
	return &dto.ClearDocumentsResponse{Deleted: 2}, nil
}

type fakeSearchService struct {
	lastReq *dto.SearchRequest
}

func (f *fakeSearchService) Search(_ context.Context, _ uuid.UUID, req *dto.SearchRequest) (*dto.SearchResponse, error) {
	f.lastReq = req
	return &dto.SearchResponse{Query: req.Query}, nil
}

func (f *fakeSearchService) InvalidateUser(string) {}

func newTestApp(t *testing.T, docs *fakeDocumentService, search *fakeSearchService) (*fiber.App, string, uuid.UUID) {
	t.Helper()
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	auth := serverutils.JwtMiddleware(testSecret)
	NewDocumentController(docs, auth).RegisterRoutes(api)
	NewSearchController(search, auth).RegisterRoutes(api)

	userId := uuid.New()
	token, err := serverutils.SignToken(testSecret, userId)
	require.NoError(t, err)
	return app, "Bearer " + token, userId
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestDocumentUpload(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		duplicate bool
		wantCode  int
	}{
		{name: "new document", field: "file", wantCode: http.StatusCreated},
		{name: "duplicate document", field: "file", duplicate: true, wantCode: http.StatusOK},
		{name: "missing file", field: "", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs := &fakeDocumentService{duplicate: tt.duplicate}
			app, token, userId := newTestApp(t, docs, &fakeSearchService{})

			body, contentType := multipartBody(t, tt.field, "paper.pdf", []byte("%PDF-1.4"))
			req := httptest.NewRequest(http.MethodPost, "/api/document/v1/upload", body)
			req.Header.Set("Content-Type", contentType)
			req.Header.Set("Authorization", token)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			if tt.field != "" {
				assert.Equal(t, "paper.pdf", docs.filename)
				assert.Equal(t, []byte("%PDF-1.4"), docs.uploaded)
				assert.Equal(t, userId, docs.userId)
			}
		})
	}
}

func TestDocumentRoutes(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		auth     bool
		showErr  error
		wantCode int
	}{
		{name: "list", method: http.MethodGet, path: "/api/document/v1", auth: true, wantCode: http.StatusOK},
		{name: "list with bad status", method: http.MethodGet, path: "/api/document/v1?status=weird", auth: true, wantCode: http.StatusBadRequest},
		{name: "list paginated", method: http.MethodGet, path: "/api/document/v1?limit=10&offset=20", auth: true, wantCode: http.StatusOK},
		{name: "list limit too large", method: http.MethodGet, path: "/api/document/v1?limit=500", auth: true, wantCode: http.StatusBadRequest},
		{name: "list negative offset", method: http.MethodGet, path: "/api/document/v1?offset=-1", auth: true, wantCode: http.StatusBadRequest},
		{name: "list without token", method: http.MethodGet, path: "/api/document/v1", wantCode: http.StatusUnauthorized},
		{name: "show invalid id", method: http.MethodGet, path: "/api/document/v1/not-a-uuid", auth: true, wantCode: http.StatusBadRequest},
		{name: "show missing", method: http.MethodGet, path: "/api/document/v1/" + uuid.NewString(), auth: true,
			showErr: serverutils.NotFound("document not found"), wantCode: http.StatusNotFound},
		{name: "chunks", method: http.MethodGet, path: "/api/document/v1/" + uuid.NewString() + "/chunks", auth: true, wantCode: http.StatusOK},
		{name: "chunks by type", method: http.MethodGet, path: "/api/document/v1/" + uuid.NewString() + "/chunks?type=table", auth: true, wantCode: http.StatusOK},
		{name: "chunks by unknown type", method: http.MethodGet, path: "/api/document/v1/" + uuid.NewString() + "/chunks?type=poem", auth: true, wantCode: http.StatusBadRequest},
		{name: "delete", method: http.MethodDelete, path: "/api/document/v1/" + uuid.NewString(), auth: true, wantCode: http.StatusOK},
		{name: "clear", method: http.MethodDelete, path: "/api/document/v1", auth: true, wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, token, _ := newTestApp(t, &fakeDocumentService{showErr: tt.showErr}, &fakeSearchService{})
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.auth {
				req.Header.Set("Authorization", token)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
		})
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantTopK int
	}{
		{name: "query with top k", body: `{"query":"attention","top_k":3}`, wantCode: http.StatusOK, wantTopK: 3},
		{name: "query only", body: `{"query":"attention"}`, wantCode: http.StatusOK},
		{name: "missing query", body: `{}`, wantCode: http.StatusBadRequest},
		{name: "top k too large", body: `{"query":"attention","top_k":51}`, wantCode: http.StatusBadRequest},
		{name: "malformed json", body: `{`, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			search := &fakeSearchService{}
			app, token, _ := newTestApp(t, &fakeDocumentService{}, search)

			req := httptest.NewRequest(http.MethodPost, "/api/search/v1", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", token)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)
			if tt.wantCode == http.StatusOK {
				require.NotNil(t, search.lastReq)
				assert.Equal(t, tt.wantTopK, search.lastReq.TopK)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     map[string]Pinger
		wantCode   int
		wantStatus string
	}{
		{name: "all up", checks: map[string]Pinger{"database": ok, "redis": ok}, wantCode: http.StatusOK, wantStatus: "ok"},
		{name: "redis down", checks: map[string]Pinger{"database": ok, "redis": down}, wantCode: http.StatusServiceUnavailable, wantStatus: "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			NewHealthController(tt.checks).RegisterRoutes(app.Group("/api"))

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			var body struct {
				Data healthResponse `json:"data"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantStatus, body.Data.Status)
			assert.Len(t, body.Data.Checks, len(tt.checks))
		})
	}
}
