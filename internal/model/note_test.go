package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags_Value(t *testing.T) {
	v, err := Tags(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	v, err = Tags{"calculus", "week 1"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["calculus","week 1"]`, v)
}

func TestTags_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want Tags
	}{
		{"nil", nil, Tags{}},
		{"empty string", "", Tags{}},
		{"json null", "null", Tags{}},
		{"string", `["a","b"]`, Tags{"a", "b"}},
		{"bytes", []byte(`["c"]`), Tags{"c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tags Tags
			require.NoError(t, tags.Scan(tt.src))
			assert.Equal(t, tt.want, tags)
		})
	}

	var tags Tags
	assert.Error(t, tags.Scan(42))
	assert.Error(t, tags.Scan("not json"))
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, Tags{"exam", "week 3", "calculus"}, ParseTags(" exam, week 3 ,,calculus,  "))
	assert.Equal(t, Tags{}, ParseTags(""))
}

func TestNote_DownloadName(t *testing.T) {
	assert.Equal(t, "Limits.pdf", (&Note{Title: "Limits", FileType: FileTypePDF}).DownloadName())
	assert.Equal(t, "Board photo.jpg", (&Note{Title: "Board photo", FileType: FileTypeImage}).DownloadName())
}

func TestFileTypeFromMIME(t *testing.T) {
	assert.Equal(t, FileTypePDF, FileTypeFromMIME("application/pdf"))
	assert.Equal(t, FileTypeImage, FileTypeFromMIME("image/png"))
	assert.Equal(t, FileTypeImage, FileTypeFromMIME("image/jpeg"))
}

func TestExtensionFromMIME(t *testing.T) {
	assert.Equal(t, "pdf", ExtensionFromMIME("application/pdf"))
	assert.Equal(t, "png", ExtensionFromMIME("image/png"))
	assert.Equal(t, "jpg", ExtensionFromMIME("image/jpeg"))
}

func TestNoteUpdate_IsEmpty(t *testing.T) {
	assert.True(t, NoteUpdate{}.IsEmpty())
	title := "x"
	assert.False(t, NoteUpdate{Title: &title}.IsEmpty())
	assert.False(t, NoteUpdate{Tags: &Tags{}}.IsEmpty())
}
