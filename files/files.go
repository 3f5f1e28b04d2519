package files

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/jrsteele09/go-blog-client/apiclient"
	errs "github.com/jrsteele09/go-blog-client/internal/errors"
)

const uploadPath = "/files/upload"

// MetadataType is how the server classified an upload from its MIME type.
type MetadataType string

const (
	MetadataImage    MetadataType = "IMAGE"
	MetadataVideo    MetadataType = "VIDEO"
	MetadataDocument MetadataType = "DOCUMENT"
	MetadataOther    MetadataType = "OTHER"
)

type UploadResponse struct {
	ID           int64        `json:"id"`
	OriginalName string       `json:"originalName"`
	URL          string       `json:"url"`
	Type         MetadataType `json:"fileMetadataType"`
}

// File is a local file about to be uploaded.
type File struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// Open reads the file at path, guessing its content type from the extension
// and, failing that, from the first bytes. The caller closes the returned
// closer.
func Open(path string) (File, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, nil, err
	}
	file := File{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		Reader:      f,
	}
	file = file.Sniffed()
	return file, f, nil
}

// Sniffed fills in ContentType from the first 512 bytes when it is empty.
// The returned File reads the same bytes as the original.
func (f File) Sniffed() File {
	if f.ContentType != "" || f.Reader == nil {
		return f
	}
	br := bufio.NewReaderSize(f.Reader, 512)
	head, _ := br.Peek(512)
	f.ContentType = http.DetectContentType(head)
	f.Reader = br
	return f
}

func (f File) IsImage() bool {
	mediaType, _, err := mime.ParseMediaType(f.ContentType)
	if err != nil {
		mediaType = f.ContentType
	}
	return strings.HasPrefix(mediaType, "image/")
}

// Part turns the file into a multipart file part under field.
func (f File) Part(field string) apiclient.Part {
	return apiclient.FilePart(field, f.Name, f.ContentType, f.Reader)
}

type Client struct {
	api *apiclient.Client
}

func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

// Upload posts the file to the server's temporary upload area. The server
// classifies it by MIME type.
func (c *Client) Upload(ctx context.Context, f File) (*UploadResponse, error) {
	if f.Reader == nil {
		return nil, fmt.Errorf("[files Upload] %s: %w", f.Name, errs.ErrUnexpectedBody)
	}
	f = f.Sniffed()
	var resp UploadResponse
	if err := c.api.Upload(ctx, http.MethodPost, uploadPath, []apiclient.Part{f.Part("file")}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UploadImage is Upload restricted to images.
func (c *Client) UploadImage(ctx context.Context, f File) (*UploadResponse, error) {
	f = f.Sniffed()
	if !f.IsImage() {
		return nil, fmt.Errorf("%s (%s): %w", f.Name, f.ContentType, errs.ErrNotAnImage)
	}
	return c.Upload(ctx, f)
}
