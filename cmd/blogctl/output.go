package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/mattn/go-isatty"

	"github.com/jrsteele09/go-blog-client/editor"
	"github.com/jrsteele09/go-blog-client/posts"
)

const (
	formatText = "text"
	formatJSON = "json"
)

const (
	red        = "\033[31m"
	green      = "\033[32m"
	yellow     = "\033[33m"
	blue       = "\033[34m"
	magenta    = "\033[35m"
	cyan       = "\033[36m"
	gray       = "\033[90m"
	resetColor = "\033[0m"
)

var postTypeColors = map[posts.PostType]string{
	posts.TypeCore:            green,
	posts.TypeArchitecture:    blue,
	posts.TypeTroubleshooting: magenta,
	posts.TypeEssay:           cyan,
}

var statusColors = map[posts.Status]string{
	posts.StatusPublic:  green,
	posts.StatusPrivate: yellow,
}

var noticeColors = map[editor.NoticeLevel]string{
	editor.NoticeInfo:  gray,
	editor.NoticeError: red,
}

type printer struct {
	out    io.Writer
	format string
	color  bool
}

func newPrinter(out io.Writer, format string, color bool) *printer {
	return &printer{out: out, format: format, color: color}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// emit writes v as indented JSON, or calls text with a tab aligned writer.
func (p *printer) emit(v any, text func(w io.Writer)) error {
	if p.format == formatJSON {
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	text(tw)
	return tw.Flush()
}

func (p *printer) paint(color, s string) string {
	if !p.color || color == "" {
		return s
	}
	return color + s + resetColor
}

func (p *printer) postType(t posts.PostType) string {
	return p.paint(postTypeColors[t], t.Label())
}

func (p *printer) status(s posts.Status) string {
	return p.paint(statusColors[s], string(s))
}

func (p *printer) notice(n editor.Notice) string {
	return p.paint(noticeColors[n.Level], fmt.Sprintf("[%s] %s", n.Level, n.Message))
}

// done prints a short confirmation for commands without a result body.
func (p *printer) done(msg string) error {
	return p.emit(map[string]any{"ok": true, "message": msg}, func(w io.Writer) {
		fmt.Fprintln(w, msg)
	})
}
