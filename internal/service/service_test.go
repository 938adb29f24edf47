package service

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hcissey0/lecture-notes-app/internal/markdown"
	"github.com/hcissey0/lecture-notes-app/internal/model"
	"github.com/hcissey0/lecture-notes-app/internal/repository"
	"github.com/hcissey0/lecture-notes-app/internal/storage/storagetest"
	"github.com/hcissey0/lecture-notes-app/internal/testdb"
	"github.com/hcissey0/lecture-notes-app/internal/validation"
)

// pdfHeader is enough for content sniffing to report application/pdf.
var pdfHeader = []byte("%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")

type sentMail struct {
	kind  string
	to    string
	name  string
	title string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendWelcomeEmail(_ context.Context, email, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: "welcome", to: email, name: name})
	return m.err
}

func (m *fakeMailer) SendUploadConfirmation(_ context.Context, email, name string, note *model.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{kind: "upload", to: email, name: name, title: note.Title})
	return m.err
}

func (m *fakeMailer) kinds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []string{}
	for _, s := range m.sent {
		out = append(out, s.kind)
	}
	return out
}

// failingNotes lets a test break individual repository calls.
type failingNotes struct {
	repository.NoteRepository
	createErr   error
	deleteErr   error
	downloadErr error
}

func (f *failingNotes) Create(ctx context.Context, note *model.Note) (*model.Note, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.NoteRepository.Create(ctx, note)
}

func (f *failingNotes) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.NoteRepository.Delete(ctx, id)
}

func (f *failingNotes) IncrementDownloadCount(ctx context.Context, id string) (*model.Note, error) {
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return f.NoteRepository.IncrementDownloadCount(ctx, id)
}

type fixture struct {
	notes    *failingNotes
	profiles repository.ProfileRepository
	store    *storagetest.Memory
	mailer   *fakeMailer
	sessions *SessionService
	svc      *NoteService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)

	f := &fixture{
		notes:    &failingNotes{NoteRepository: repository.NewNoteRepository(db)},
		profiles: repository.NewProfileRepository(db),
		store:    storagetest.NewMemory(),
		mailer:   &fakeMailer{},
	}
	f.sessions = NewSessionService(f.profiles, f.mailer)
	f.svc = NewNoteService(f.notes, f.store, f.sessions, f.mailer, markdown.NewParser(), validation.NoteConstraints, 0)
	f.svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return f
}

func (f *fixture) signIn(t *testing.T, email string, meta map[string]string) *model.Session {
	t.Helper()
	session, err := f.sessions.SignIn(context.Background(), model.Principal{Email: email, Metadata: meta})
	require.NoError(t, err)
	return session
}

func pdfUpload(size int64) validation.Upload {
	content := make([]byte, size)
	copy(content, pdfHeader)
	return validation.Upload{
		Filename:    "week1.pdf",
		ContentType: "application/pdf",
		Size:        size,
		Content:     bytes.NewReader(content),
	}
}

func uploadInput(file validation.Upload) UploadInput {
	return UploadInput{
		Title:    "Limits",
		Course:   "MATH101",
		Lecturer: "Dr. Lee",
		Tags:     model.Tags{"calculus", " ", "week1"},
		File:     file,
	}
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }
