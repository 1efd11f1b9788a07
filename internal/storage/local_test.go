package storage

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, field, name, contentType string, body []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + name + `"`}
	h["Content-Type"] = []string{contentType}
	w, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = w.Write(body)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[field][0]
}

func TestLocalStore_SaveAndRemove(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }

	f, err := s.Save("resume", fileHeader(t, "resume", "my cv.pdf", "application/pdf", []byte("%PDF-1.4")))
	require.NoError(t, err)

	assert.Equal(t, "resume", f.Field)
	assert.Equal(t, "my cv.pdf", f.OriginalName)
	assert.Equal(t, "application/pdf", f.MimeType)
	assert.Equal(t, int64(8), f.Size)
	assert.Regexp(t, regexp.MustCompile(`^1700000000000-\d{1,9}-my cv\.pdf$`), f.StoredName)

	fd, err := os.Open(f.Path)
	require.NoError(t, err)
	got, _ := io.ReadAll(fd)
	_ = fd.Close()
	assert.Equal(t, []byte("%PDF-1.4"), got)

	require.NoError(t, s.Remove(f.Path))
	_, err = os.Stat(f.Path)
	assert.True(t, os.IsNotExist(err))

	// second delete of the same path is a no-op
	assert.NoError(t, s.Remove(f.Path))
	assert.NoError(t, s.Remove(""))
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "cv.pdf", sanitizeName("../../etc/cv.pdf"))
	assert.Equal(t, "cv.pdf", sanitizeName(`C:\Users\me\cv.pdf`))
	assert.Equal(t, "a_b.pdf", sanitizeName("a:b.pdf"))
	assert.Equal(t, "upload", sanitizeName(""))
	assert.Equal(t, "upload", sanitizeName(filepath.Join("x", "..", "..")))
}

func TestLocalStore_SniffsGenericContentType(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name     string
		declared string
		body     []byte
		want     string
	}{
		{"octet-stream pdf", "application/octet-stream", []byte("%PDF-1.4\n%body"), "application/pdf"},
		{"missing type png", "", []byte("\x89PNG\r\n\x1a\n0000"), "image/png"},
		{"declared type kept", "application/pdf", []byte("not really a pdf"), "application/pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := s.Save("resume", fileHeader(t, "resume", "cv.bin", tt.declared, tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.MimeType)

			// sniffing must not eat the head of the file
			got, err := os.ReadFile(f.Path)
			require.NoError(t, err)
			assert.Equal(t, tt.body, got)
		})
	}
}
