package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-blog-client/filter"
	"github.com/jrsteele09/go-blog-client/taxonomy"
)

func newFilterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "filter",
		Short:       "Work with post filter paths",
		Annotations: map[string]string{annotationOffline: "true"},
	}

	var size int
	parse := &cobra.Command{
		Use:   "parse PATH",
		Short: "Show what a filter path selects and the query it sends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := filter.Parse(args[0])
			if err != nil {
				return err
			}
			q := f.Query(orSize(size, a.cfg.GetPageSize()))
			out := map[string]any{
				"canonical":  f.String(),
				"postType":   f.PostType,
				"stackGroup": f.StackGroup,
				"stack":      f.Stack,
				"keyword":    f.Keyword,
				"page":       f.Page,
				"active":     f.HasActive(),
				"query":      q.Values().Encode(),
			}
			return a.print.emit(out, func(w io.Writer) {
				fmt.Fprintf(w, "Canonical\t%s\n", f.String())
				if f.PostType != "" {
					fmt.Fprintf(w, "Type\t%s\n", a.print.postType(f.PostType))
				}
				if f.Stack != "" {
					fmt.Fprintf(w, "Stack\t%s (%s)\n", f.Stack, f.StackGroup.Label())
				}
				if f.Keyword != "" {
					fmt.Fprintf(w, "Keyword\t%s\n", f.Keyword)
				}
				fmt.Fprintf(w, "Page\t%d\n", f.Page)
				fmt.Fprintf(w, "Query\t%s\n", q.Values().Encode())
			})
		},
	}
	parse.Flags().IntVar(&size, "size", 0, "page size for the query")

	var lf listFlags
	build := &cobra.Command{
		Use:   "build",
		Short: "Build a canonical filter path",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.buildFilter(a.context(cmd), lf)
			if err != nil {
				return err
			}
			return a.print.emit(map[string]string{"path": f.String()}, func(w io.Writer) {
				fmt.Fprintln(w, f.String())
			})
		},
	}
	fl := build.Flags()
	fl.StringVar(&lf.url, "from", "", "filter path to start from")
	fl.StringVar(&lf.postType, "type", "", "post type, or all to clear")
	fl.StringVar(&lf.group, "group", "", "stack group; looked up when --stack is given alone")
	fl.StringVar(&lf.stack, "stack", "", "stack name")
	fl.StringVarP(&lf.keyword, "query", "q", "", "search keyword")
	fl.IntVar(&lf.page, "page", 0, "zero based page")

	cmd.AddCommand(parse, build)
	return cmd
}

func stackPath(group taxonomy.StackGroup, name string) string {
	return filter.Filter{}.ToggleStack(group, name).String()
}
