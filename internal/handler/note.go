package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/hcissey0/lecture-notes-app/internal/catalog"
	"github.com/hcissey0/lecture-notes-app/internal/ctxkeys"
	"github.com/hcissey0/lecture-notes-app/internal/model"
	"github.com/hcissey0/lecture-notes-app/internal/service"
	"github.com/hcissey0/lecture-notes-app/internal/validation"
)

// multipartMemory is the part of an upload kept in memory; the rest is
// spooled to a temporary file.
const multipartMemory = 1 << 20

type NoteHandler struct {
	noteService *service.NoteService
	previewTTL  time.Duration
}

func NewNoteHandler(noteService *service.NoteService, previewTTL time.Duration) *NoteHandler {
	if previewTTL <= 0 {
		previewTTL = service.DefaultPreviewTTL
	}
	return &NoteHandler{
		noteService: noteService,
		previewTTL:  previewTTL,
	}
}

type browseResponse struct {
	Notes     []*model.Note   `json:"notes"`
	Filters   catalog.Filters `json:"filters"`
	Courses   []string        `json:"courses"`
	Lecturers []string        `json:"lecturers"`
	Tags      []string        `json:"tags"`
}

type noteDetail struct {
	*model.Note
	DescriptionHTML string `json:"description_html"`
}

type deleteResponse struct {
	ID          string `json:"id"`
	FileRemoved bool   `json:"file_removed"`
	Warning     string `json:"warning,omitempty"`
}

type previewResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// Browse lists the notes narrowed by the q, course, lecturer and tag query
// parameters, together with the facet lists. The optional limit caps the
// filtered result.
func (h *NoteHandler) Browse(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	filters := catalog.Filters{
		SearchTerm: q.Get("q"),
		Course:     q.Get("course"),
		Lecturer:   q.Get("lecturer"),
		Tag:        q.Get("tag"),
	}

	state, err := h.noteService.Browse(r.Context(), filters)
	if err != nil {
		writeError(w, r, err)
		return
	}

	visible := state.Visible()
	if limit > 0 && len(visible) > limit {
		visible = visible[:limit]
	}

	writeJSON(w, http.StatusOK, browseResponse{
		Notes:     visible,
		Filters:   state.Filters,
		Courses:   state.Courses,
		Lecturers: state.Lecturers,
		Tags:      state.Tags,
	})
}

func (h *NoteHandler) Search(w http.ResponseWriter, r *http.Request) {
	notes, err := h.noteService.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Popular(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", service.DefaultTopLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	notes, err := h.noteService.Popular(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", service.DefaultTopLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	notes, err := h.noteService.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// Mine lists the signed-in user's uploads.
func (h *NoteHandler) Mine(w http.ResponseWriter, r *http.Request) {
	session := ctxkeys.Session(r.Context())
	notes, err := h.noteService.ByUploader(r.Context(), session.UserID())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

// Upload accepts a multipart form with the fields file, title, course,
// lecturer, description, tags (comma separated) and anonymous.
func (h *NoteHandler) Upload(w http.ResponseWriter, r *http.Request) {
	session := ctxkeys.Session(r.Context())

	err := r.ParseMultipartForm(multipartMemory)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, maxBytesErr)
			return
		}
		writeError(w, r, badRequest("body", "expected a multipart form"))
		return
	}
	defer func() {
		removeErr := r.MultipartForm.RemoveAll()
		if removeErr != nil {
			slog.Warn("failed to remove multipart temp files", "error", removeErr)
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, badRequest("file", "Please select a file to upload"))
		return
	}
	defer file.Close()

	var anonymous *bool
	if raw := r.FormValue("anonymous"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, r, badRequest("anonymous", "anonymous must be true or false"))
			return
		}
		anonymous = &b
	}

	note, err := h.noteService.Upload(r.Context(), session, service.UploadInput{
		Title:       r.FormValue("title"),
		Course:      r.FormValue("course"),
		Lecturer:    r.FormValue("lecturer"),
		Description: r.FormValue("description"),
		Tags:        model.ParseTags(r.FormValue("tags")),
		Anonymous:   anonymous,
		File: validation.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Content:     file,
		},
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) Show(w http.ResponseWriter, r *http.Request) {
	note, err := h.noteService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	html, err := h.noteService.RenderDescription(note)
	if err != nil {
		slog.Warn("failed to render description", "error", err, "note_id", note.ID)
	}

	writeJSON(w, http.StatusOK, noteDetail{Note: note, DescriptionHTML: html})
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var upd model.NoteUpdate
	err := decodeJSON(r, &upd)
	if err != nil {
		writeError(w, r, err)
		return
	}

	note, err := h.noteService.Update(r.Context(), ctxkeys.Session(r.Context()), r.PathValue("id"), upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	res, err := h.noteService.Delete(r.Context(), ctxkeys.Session(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	body := deleteResponse{ID: res.Note.ID, FileRemoved: res.FileRemoved()}
	if !res.FileRemoved() {
		body.Warning = "note deleted, but its file could not be removed"
	}
	writeJSON(w, http.StatusOK, body)
}

// View counts a view. It answers 204 when the counter moved but the
// note could not be read back.
func (h *NoteHandler) View(w http.ResponseWriter, r *http.Request) {
	note, err := h.noteService.RecordView(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if note == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Download streams the note file as an attachment.
func (h *NoteHandler) Download(w http.ResponseWriter, r *http.Request) {
	dl, err := h.noteService.Download(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer dl.Body.Close()

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename}))
	w.WriteHeader(http.StatusOK)

	_, err = io.Copy(w, dl.Body)
	if err != nil {
		slog.Warn("download interrupted", "error", err, "note_id", dl.Note.ID)
	}
}

// Preview returns a time-limited URL for viewing the file in place.
func (h *NoteHandler) Preview(w http.ResponseWriter, r *http.Request) {
	url, err := h.noteService.PreviewURL(r.Context(), r.PathValue("id"), h.previewTTL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, previewResponse{URL: url, ExpiresIn: int(h.previewTTL.Seconds())})
}
