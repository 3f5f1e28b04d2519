package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	errs "github.com/jrsteele09/go-blog-client/internal/errors"
)

// Part is one field of a multipart/form-data request. A part with a FileName
// is sent as a file.
type Part struct {
	FieldName   string
	FileName    string
	ContentType string
	Reader      io.Reader
}

func FilePart(field, fileName, contentType string, r io.Reader) Part {
	return Part{FieldName: field, FileName: fileName, ContentType: contentType, Reader: r}
}

// JSONPart encodes v as an application/json part, the shape the API expects
// for a request object sent alongside files.
func JSONPart(field string, v any) (Part, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Part{}, errs.Wrapf(err, "[apiclient JSONPart] encode %s", field)
	}
	return Part{FieldName: field, ContentType: "application/json", Reader: bytes.NewReader(b)}, nil
}

// Upload sends parts as multipart/form-data. The body is buffered so the
// request can be replayed after a refresh.
func (c *Client) Upload(ctx context.Context, method, path string, parts []Part, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		if err := writePart(w, p); err != nil {
			return errs.Wrapf(err, "[apiclient Upload] part %s", p.FieldName)
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, method, path, nil, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.send(c.http, req, out)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writePart(w *multipart.Writer, p Part) error {
	if p.FieldName == "" {
		return fmt.Errorf("empty field name")
	}
	h := make(textproto.MIMEHeader)
	disposition := fmt.Sprintf(`form-data; name="%s"`, quoteEscaper.Replace(p.FieldName))
	if p.FileName != "" {
		disposition += fmt.Sprintf(`; filename="%s"`, quoteEscaper.Replace(p.FileName))
	}
	h.Set("Content-Disposition", disposition)
	switch {
	case p.ContentType != "":
		h.Set("Content-Type", p.ContentType)
	case p.FileName != "":
		h.Set("Content-Type", "application/octet-stream")
	}

	dst, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	if p.Reader == nil {
		return nil
	}
	_, err = io.Copy(dst, p.Reader)
	return err
}
