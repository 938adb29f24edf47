package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	FileTypePDF   = "pdf"
	FileTypeImage = "image"
)

type Note struct {
	ID            string    `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Course        string    `db:"course" json:"course"`
	Lecturer      string    `db:"lecturer" json:"lecturer"`
	Description   *string   `db:"description" json:"description"`
	FilePath      string    `db:"file_path" json:"file_path"`
	FileType      string    `db:"file_type" json:"file_type"` // "pdf" or "image"
	Tags          Tags      `db:"tags" json:"tags"`
	UploaderID    string    `db:"uploader_id" json:"uploader_id"`
	UploaderName  string    `db:"uploader_name" json:"uploader_name"` // Snapshot taken at upload time
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	DownloadCount int64     `db:"download_count" json:"download_count"`
	ViewCount     int64     `db:"view_count" json:"view_count"`
}

// HasTag reports whether tag is one of the note's tags (exact match).
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// DownloadName is the filename offered to the browser on download.
func (n *Note) DownloadName() string {
	if n.FileType == FileTypePDF {
		return n.Title + ".pdf"
	}
	return n.Title + ".jpg"
}

// FileTypeFromMIME maps a sniffed content type to the stored file type.
func FileTypeFromMIME(contentType string) string {
	if strings.Contains(contentType, "pdf") {
		return FileTypePDF
	}
	return FileTypeImage
}

// ExtensionFromMIME is the object key extension for a sniffed content type.
func ExtensionFromMIME(contentType string) string {
	switch {
	case strings.Contains(contentType, "pdf"):
		return "pdf"
	case strings.Contains(contentType, "png"):
		return "png"
	default:
		return "jpg"
	}
}

// NoteUpdate is a partial update. Nil fields are left untouched.
// An empty Description clears it.
type NoteUpdate struct {
	Title       *string `json:"title"`
	Course      *string `json:"course"`
	Lecturer    *string `json:"lecturer"`
	Description *string `json:"description"`
	Tags        *Tags   `json:"tags"`
}

func (u NoteUpdate) IsEmpty() bool {
	return u.Title == nil && u.Course == nil && u.Lecturer == nil && u.Description == nil && u.Tags == nil
}

// Tags is an ordered tag list persisted as a JSON array in a text column.
type Tags []string

func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (t *Tags) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = Tags{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("tags: unsupported source type %T", src)
	}

	if len(raw) == 0 {
		*t = Tags{}
		return nil
	}

	var out []string
	err := json.Unmarshal(raw, &out)
	if err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*t = out
	return nil
}

// ParseTags splits a comma separated tag field, trimming entries and
// dropping empty ones.
func ParseTags(raw string) Tags {
	tags := Tags{}
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
