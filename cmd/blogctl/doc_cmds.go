package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-blog-client/editor"
	"github.com/jrsteele09/go-blog-client/files"
	"github.com/jrsteele09/go-blog-client/routes"
)

func newDocCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doc",
		Short: "Edit post HTML locally",
	}

	render := &cobra.Command{
		Use:   "render FILE",
		Short: "Normalise post HTML through the document model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}
			return a.printDocument(doc)
		},
	}

	var (
		at    int
		write bool
	)
	attach := &cobra.Command{
		Use:   "attach-image FILE IMAGE...",
		Short: "Upload images and insert them into post HTML",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(routes.RouteWrite); err != nil {
				return err
			}
			doc, err := loadDocument(args[0])
			if err != nil {
				return err
			}

			notify := editor.NotifierFunc(func(n editor.Notice) {
				fmt.Fprintln(a.errOut, a.print.notice(n))
			})
			uploads := editor.NewUploads(doc, a.files, notify, editor.WithUploadLogger(a.logger))

			var closers []io.Closer
			defer func() {
				for _, c := range closers {
					c.Close()
				}
			}()
			pos := at
			for _, path := range args[1:] {
				f, closer, err := files.Open(path)
				if err != nil {
					return err
				}
				closers = append(closers, closer)

				var where *int
				if cmd.Flags().Changed("at") {
					p := pos
					where = &p
				}
				if _, err := uploads.Start(a.context(cmd), f, where); err != nil {
					notify(editor.Notice{Level: editor.NoticeError, Message: err.Error(), Err: err})
					continue
				}
				// a rejected file leaves no placeholder to step over
				if where != nil {
					pos++
				}
			}
			uploads.Wait()

			if write {
				html, err := doc.HTML()
				if err != nil {
					return err
				}
				if err := os.WriteFile(args[0], []byte(html), 0o644); err != nil {
					return err
				}
				return a.print.done(fmt.Sprintf("Updated %s.", args[0]))
			}
			return a.printDocument(doc)
		},
	}
	attach.Flags().IntVar(&at, "at", 0, "block index of the first image; appended when unset")
	attach.Flags().BoolVar(&write, "write", false, "write the result back to FILE")

	cmd.AddCommand(render, attach)
	return cmd
}

func loadDocument(path string) (*editor.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	nodes, err := editor.ParseHTML(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return editor.NewDocument(nodes...), nil
}

type documentOutput struct {
	Blocks []editor.Kind `json:"blocks"`
	HTML   string        `json:"html"`
}

func (a *app) printDocument(doc *editor.Document) error {
	html, err := doc.HTML()
	if err != nil {
		return err
	}
	out := documentOutput{HTML: html}
	for _, n := range doc.Nodes() {
		out.Blocks = append(out.Blocks, n.Kind())
	}
	return a.print.emit(out, func(w io.Writer) {
		fmt.Fprintln(w, html)
	})
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Annotations: map[string]string{annotationOffline: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.print.format == formatText {
				displayAppname(a, a.cfg.GetAppName())
			}
			return a.print.emit(map[string]string{"version": version, "api": a.apiURL()}, func(w io.Writer) {
				fmt.Fprintf(w, "Version\t%s\n", version)
				fmt.Fprintf(w, "API\t%s\n", a.apiURL())
			})
		},
	}
}
