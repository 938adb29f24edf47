// Package storagetest provides an in-memory storage.Storage for tests.
package storagetest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/hcissey0/lecture-notes-app/internal/storage"
)

// Memory is a storage.Storage kept in a map. The Fail* fields inject
// errors into the matching operation.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string

	FailSave   error
	FailOpen   error
	FailDelete error
	FailSign   error
}

func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

func (m *Memory) Save(_ context.Context, path string, r io.Reader, contentType string) error {
	if m.FailSave != nil {
		return m.FailSave
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = data
	m.types[path] = contentType
	return nil
}

func (m *Memory) Open(_ context.Context, path string) (io.ReadCloser, error) {
	if m.FailOpen != nil {
		return nil, m.FailOpen
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, storage.ErrObjectNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *Memory) Delete(_ context.Context, paths ...string) error {
	if m.FailDelete != nil {
		return m.FailDelete
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range paths {
		delete(m.objects, p)
		delete(m.types, p)
	}
	return nil
}

func (m *Memory) SignedURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	if m.FailSign != nil {
		return "", m.FailSign
	}
	return fmt.Sprintf("memory://%s?ttl=%d", path, int(ttl.Seconds())), nil
}

// Paths lists stored object paths in sorted order.
func (m *Memory) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for p := range m.objects {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (m *Memory) ContentType(path string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.types[path]
}

var _ storage.Storage = (*Memory)(nil)
