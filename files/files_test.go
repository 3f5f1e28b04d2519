package files_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jrsteele09/go-blog-client/apiclient"
	"github.com/jrsteele09/go-blog-client/files"
	errs "github.com/jrsteele09/go-blog-client/internal/errors"
	"github.com/jrsteele09/go-blog-client/sessions"
	"github.com/stretchr/testify/require"
)

var pngHeader = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"

func TestFile_Sniffed(t *testing.T) {
	tests := []struct {
		name    string
		file    files.File
		ctype   string
		isImage bool
	}{
		{"png by content", files.File{Name: "a", Reader: strings.NewReader(pngHeader)}, "image/png", true},
		{"text by content", files.File{Name: "a", Reader: strings.NewReader("hello")}, "text/plain; charset=utf-8", false},
		{"explicit type wins", files.File{Name: "a", ContentType: "image/webp", Reader: strings.NewReader("hello")}, "image/webp", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.file.Sniffed()
			require.Equal(t, tt.ctype, f.ContentType)
			require.Equal(t, tt.isImage, f.IsImage())
		})
	}

	t.Run("sniffing keeps the bytes", func(t *testing.T) {
		f := files.File{Reader: strings.NewReader(pngHeader)}.Sniffed()
		b, err := io.ReadAll(f.Reader)
		require.NoError(t, err)
		require.Equal(t, pngHeader, string(b))
	})
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diagram.png")
	require.NoError(t, os.WriteFile(path, []byte(pngHeader), 0o600))

	f, closer, err := files.Open(path)
	require.NoError(t, err)
	defer closer.Close()
	require.Equal(t, "diagram.png", f.Name)
	require.True(t, f.IsImage())
}

func TestClient_Upload(t *testing.T) {
	var gotName, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/files/upload" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		b, _ := io.ReadAll(f)
		gotName, gotBody = hdr.Filename, string(b)
		// The upload endpoint answers without the envelope.
		_ = json.NewEncoder(w).Encode(files.UploadResponse{ID: 9, OriginalName: hdr.Filename, URL: "/files/9.png", Type: files.MetadataImage})
	}))
	defer srv.Close()

	api, err := apiclient.New(srv.URL, sessions.NewMemoryStore())
	require.NoError(t, err)
	c := files.NewClient(api)

	resp, err := c.UploadImage(context.Background(), files.File{Name: "shot.png", Reader: strings.NewReader(pngHeader)})
	require.NoError(t, err)
	require.Equal(t, &files.UploadResponse{ID: 9, OriginalName: "shot.png", URL: "/files/9.png", Type: files.MetadataImage}, resp)
	require.Equal(t, "shot.png", gotName)
	require.Equal(t, pngHeader, gotBody)

	_, err = c.UploadImage(context.Background(), files.File{Name: "notes.txt", Reader: strings.NewReader("plain text")})
	require.ErrorIs(t, err, errs.ErrNotAnImage)
}
