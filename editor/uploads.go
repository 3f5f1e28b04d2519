package editor

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-blog-client/apiclient"
	"github.com/jrsteele09/go-blog-client/files"
	errs "github.com/jrsteele09/go-blog-client/internal/errors"
)

const (
	// PlaceholderSrc is a transparent 1x1 GIF shown while an image uploads.
	PlaceholderSrc = "data:image/gif;base64,R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7"
	PlaceholderAlt = "Uploading..."

	// MarkerPrefix starts every upload marker.
	MarkerPrefix = "uploading-"
)

// Uploader stores a file on the server. *files.Client implements it.
type Uploader interface {
	Upload(ctx context.Context, f files.File) (*files.UploadResponse, error)
}

type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeError NoticeLevel = "error"
)

// Notice is a message for the writer, such as a failed upload.
type Notice struct {
	Level   NoticeLevel
	Message string
	Err     error
}

type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

type UploadsOption func(*Uploads)

func WithUploadLogger(logger zerolog.Logger) UploadsOption {
	return func(u *Uploads) {
		u.logger = logger
	}
}

// Uploads runs image uploads for a document. Each upload shows a placeholder
// image at once and swaps in the real image when the server answers.
type Uploads struct {
	doc      *Document
	uploader Uploader
	notifier Notifier
	logger   zerolog.Logger
	wg       sync.WaitGroup
}

func NewUploads(doc *Document, uploader Uploader, notifier Notifier, opts ...UploadsOption) *Uploads {
	u := &Uploads{
		doc:      doc,
		uploader: uploader,
		notifier: notifier,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Start inserts a placeholder for f at position at, or at the end when at is
// nil, and uploads f in the background. It returns the marker identifying
// the placeholder. Files that are not images are rejected and the document
// is left as is.
func (u *Uploads) Start(ctx context.Context, f files.File, at *int) (string, error) {
	f = f.Sniffed()
	if !f.IsImage() {
		return "", fmt.Errorf("[editor Start] %s (%s): %w", f.Name, f.ContentType, errs.ErrNotAnImage)
	}

	marker := MarkerPrefix + uuid.NewString()
	placeholder := Image{Src: PlaceholderSrc, Alt: PlaceholderAlt, Loading: marker}
	if at != nil {
		u.doc.Insert(*at, placeholder)
	} else {
		u.doc.Append(placeholder)
	}

	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		u.finish(ctx, f, marker)
	}()
	return marker, nil
}

func (u *Uploads) finish(ctx context.Context, f files.File, marker string) {
	resp, err := u.uploader.Upload(ctx, f)
	if err == nil && resp != nil {
		if !u.doc.ReplaceImage(marker, Image{Src: resp.URL, Alt: resp.OriginalName}) {
			u.logger.Debug().Str("marker", marker).Msg("placeholder gone before upload finished")
		}
		return
	}
	if err == nil {
		err = errs.ErrUnexpectedBody
	}

	u.logger.Warn().Err(err).Str("file", f.Name).Msg("image upload failed")
	u.doc.RemoveImage(marker)
	if u.notifier != nil {
		u.notifier.Notify(Notice{
			Level:   NoticeError,
			Message: fmt.Sprintf("Failed to upload %s: %s", f.Name, apiclient.ErrorMessage(err)),
			Err:     err,
		})
	}
}

// Wait blocks until every started upload has finished.
func (u *Uploads) Wait() {
	u.wg.Wait()
}
