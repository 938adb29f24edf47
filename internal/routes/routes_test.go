package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hcissey0/lecture-notes-app/internal/app"
	"github.com/hcissey0/lecture-notes-app/internal/config"
	"github.com/hcissey0/lecture-notes-app/internal/model"
	"github.com/hcissey0/lecture-notes-app/internal/storage/storagetest"
	"github.com/hcissey0/lecture-notes-app/internal/testdb"
)

var pdfHeader = []byte("%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")

type harness struct {
	app    *app.App
	store  *storagetest.Memory
	server *httptest.Server
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := &config.Config{
		AppName:       "Lecture Notes",
		AppEnv:        "development",
		AppURL:        "http://localhost:8090",
		JWTSecret:     "test-secret",
		JWTExpiry:     time.Hour,
		StorageDriver: "memory",
		PreviewURLTTL: time.Hour,
		MaxUploadSize: 10 << 20,
	}
	store := storagetest.NewMemory()

	a, err := app.Build(cfg, testdb.New(t), store)
	require.NoError(t, err)

	server := httptest.NewServer(SetupRoutes(a))
	t.Cleanup(server.Close)

	return &harness{app: a, store: store, server: server}
}

// token signs a user in and returns a bearer token for them.
func (h *harness) token(t *testing.T, email, name string) string {
	t.Helper()

	session, err := h.app.SessionService.SignIn(context.Background(), model.Principal{
		Email:    email,
		Metadata: map[string]string{model.MetaName: name},
	})
	require.NoError(t, err)

	token, err := h.app.AuthService.GenerateJWT(session)
	require.NoError(t, err)
	return token
}

func (h *harness) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, h.server.URL+path, body)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func uploadForm(t *testing.T, fields map[string]string, content []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="week1.pdf"`)
	header.Set("Content-Type", "application/pdf")
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func (h *harness) upload(t *testing.T, token string, fields map[string]string) model.Note {
	t.Helper()

	body, contentType := uploadForm(t, fields, pdfHeader)
	resp := h.do(t, http.MethodPost, "/api/notes", token, body, contentType)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[model.Note](t, resp)
}

func TestPublicRoutes(t *testing.T) {
	h := newHarness(t)

	resp := h.do(t, http.MethodGet, "/healthz", "", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	resp = h.do(t, http.MethodGet, "/", "", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = h.do(t, http.MethodGet, "/nope", "", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIRequiresSession(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{"/api/me", "/api/notes", "/api/stats", "/api/profile"} {
		resp := h.do(t, http.MethodGet, path, "", nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	resp := h.do(t, http.MethodGet, "/api/notes", "not-a-token", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNoteLifecycle(t *testing.T) {
	h := newHarness(t)
	ama := h.token(t, "ama@example.com", "Ama Mensah")
	kofi := h.token(t, "kofi@example.com", "Kofi Boateng")

	note := h.upload(t, ama, map[string]string{
		"title":       "Week 1: Limits",
		"course":      "MATH101",
		"lecturer":    "Dr. Owusu",
		"description": "**Limits** and continuity",
		"tags":        "calculus, limits, ,",
	})
	assert.Equal(t, "Ama Mensah", note.UploaderName)
	assert.Equal(t, model.FileTypePDF, note.FileType)
	assert.Equal(t, model.Tags{"calculus", "limits"}, note.Tags)
	assert.Len(t, h.store.Paths(), 1)

	h.upload(t, kofi, map[string]string{
		"title":     "Intro to Programming",
		"course":    "CS101",
		"lecturer":  "Prof. Asante",
		"anonymous": "true",
	})

	t.Run("browse with filters", func(t *testing.T) {
		resp := h.do(t, http.MethodGet, "/api/notes?course=MATH101", kofi, nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decode[struct {
			Notes   []model.Note `json:"notes"`
			Courses []string     `json:"courses"`
		}](t, resp)
		require.Len(t, body.Notes, 1)
		assert.Equal(t, note.ID, body.Notes[0].ID)
		assert.ElementsMatch(t, []string{"MATH101", "CS101"}, body.Courses)
	})

	t.Run("anonymous upload hides the uploader", func(t *testing.T) {
		resp := h.do(t, http.MethodGet, "/api/notes/search?q=programming", ama, nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		notes := decode[[]model.Note](t, resp)
		require.Len(t, notes, 1)
		assert.Equal(t, "Anonymous", notes[0].UploaderName)
	})

	t.Run("show renders the description", func(t *testing.T) {
		resp := h.do(t, http.MethodGet, "/api/notes/"+note.ID, kofi, nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decode[map[string]any](t, resp)
		assert.Contains(t, body["description_html"], "<strong>Limits</strong>")
	})

	t.Run("views and downloads are counted", func(t *testing.T) {
		resp := h.do(t, http.MethodPost, "/api/notes/"+note.ID+"/view", kofi, nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.EqualValues(t, 1, decode[model.Note](t, resp).ViewCount)

		resp = h.do(t, http.MethodGet, "/api/notes/"+note.ID+"/download", kofi, nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
		content, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, pdfHeader, content)

		resp = h.do(t, http.MethodGet, "/api/notes/"+note.ID+"/stats", kofi, nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		stats := decode[model.NoteStats](t, resp)
		assert.EqualValues(t, 1, stats.ViewCount)
		assert.EqualValues(t, 1, stats.DownloadCount)
	})

	t.Run("preview url", func(t *testing.T) {
		resp := h.do(t, http.MethodGet, "/api/notes/"+note.ID+"/preview", kofi, nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decode[struct {
			URL       string `json:"url"`
			ExpiresIn int    `json:"expires_in"`
		}](t, resp)
		assert.True(t, strings.HasPrefix(body.URL, "memory://"))
		assert.Equal(t, 3600, body.ExpiresIn)
	})

	t.Run("only the owner may edit", func(t *testing.T) {
		resp := h.do(t, http.MethodPatch, "/api/notes/"+note.ID, kofi,
			strings.NewReader(`{"title":"Hijacked"}`), "application/json")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = h.do(t, http.MethodPatch, "/api/notes/"+note.ID, ama,
			strings.NewReader(`{"title":"  Week 1: Limits and Continuity "}`), "application/json")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Week 1: Limits and Continuity", decode[model.Note](t, resp).Title)
	})

	t.Run("platform stats", func(t *testing.T) {
		resp := h.do(t, http.MethodGet, "/api/stats", ama, nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		stats := decode[model.PlatformStats](t, resp)
		assert.EqualValues(t, 2, stats.TotalNotes)
		assert.EqualValues(t, 2, stats.TotalUsers)
	})

	t.Run("owner deletes", func(t *testing.T) {
		resp := h.do(t, http.MethodDelete, "/api/notes/"+note.ID, kofi, nil, "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = h.do(t, http.MethodDelete, "/api/notes/"+note.ID, ama, nil, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, decode[map[string]any](t, resp)["file_removed"].(bool))

		resp = h.do(t, http.MethodGet, "/api/notes/"+note.ID, ama, nil, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Len(t, h.store.Paths(), 1)
	})
}

func TestUploadValidation(t *testing.T) {
	h := newHarness(t)
	token := h.token(t, "ama@example.com", "Ama Mensah")

	body, contentType := uploadForm(t, map[string]string{"course": "MATH101", "lecturer": "Dr. Owusu"}, pdfHeader)
	resp := h.do(t, http.MethodPost, "/api/notes", token, body, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, h.store.Paths())

	resp = h.do(t, http.MethodPost, "/api/notes", token, strings.NewReader(`{}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCookieSessionNeedsCSRFToken(t *testing.T) {
	h := newHarness(t)
	token := h.token(t, "ama@example.com", "Ama Mensah")

	req, err := http.NewRequest(http.MethodPatch, h.server.URL+"/api/settings", strings.NewReader(`{"anonymous_uploads":true}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestMeReturnsSessionAndCSRFToken(t *testing.T) {
	h := newHarness(t)
	token := h.token(t, "ama@example.com", "Ama Mensah")

	resp := h.do(t, http.MethodGet, "/api/me", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[struct {
		Principal model.Principal `json:"principal"`
		Profile   model.Profile   `json:"profile"`
		CSRFToken string          `json:"csrf_token"`
	}](t, resp)
	assert.Equal(t, "ama@example.com", body.Principal.Email)
	assert.Equal(t, body.Principal.ID, body.Profile.ID)
	assert.NotEmpty(t, body.CSRFToken)
	assert.Equal(t, body.CSRFToken, resp.Header.Get("X-CSRF-Token"))
}
