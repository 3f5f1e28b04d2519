package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-blog-client/apiclient"
	"github.com/jrsteele09/go-blog-client/apimodel"
	"github.com/jrsteele09/go-blog-client/editor"
	"github.com/jrsteele09/go-blog-client/filter"
	"github.com/jrsteele09/go-blog-client/posts"
	"github.com/jrsteele09/go-blog-client/query"
	"github.com/jrsteele09/go-blog-client/routes"
	"github.com/jrsteele09/go-blog-client/taxonomy"
)

func newPostsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Read and write posts",
	}
	cmd.AddCommand(
		newPostsListCmd(a),
		newPostsGetCmd(a),
		newPostsMineCmd(a),
		newPostsSearchCmd(a),
		newPostsWriteCmd(a, false),
		newPostsWriteCmd(a, true),
		newPostsDeleteCmd(a),
	)
	return cmd
}

type listFlags struct {
	url      string
	postType string
	group    string
	stack    string
	keyword  string
	tag      string
	page     int
	size     int
	all      bool
}

func newPostsListCmd(a *app) *cobra.Command {
	var lf listFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts, optionally filtered",
		Example: `  blogctl posts list --type core
  blogctl posts list --filter "/backend/Go?q=cache"
  blogctl posts list --stack Go --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.context(cmd)
			size := lf.size
			if size <= 0 {
				size = a.cfg.GetPageSize()
			}
			if lf.tag != "" {
				page, err := a.posts.ListByTag(ctx, lf.tag, apimodel.PageParams{Page: lf.page, Size: size})
				if err != nil {
					return err
				}
				return a.printPostPage(page.Content, paginationOf(page), "")
			}

			f, err := a.buildFilter(ctx, lf)
			if err != nil {
				return err
			}
			return a.listPosts(ctx, f, size, lf.all)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&lf.url, "filter", "", "filter path such as /backend/Go/core?q=x&page=2")
	fl.StringVar(&lf.postType, "type", "", "post type: core|architecture|troubleshooting|essay")
	fl.StringVar(&lf.group, "group", "", "stack group; looked up when --stack is given alone")
	fl.StringVar(&lf.stack, "stack", "", "stack name")
	fl.StringVarP(&lf.keyword, "query", "q", "", "search keyword")
	fl.StringVar(&lf.tag, "tag", "", "list posts carrying a tag")
	fl.IntVar(&lf.page, "page", 0, "zero based page")
	fl.IntVar(&lf.size, "size", 0, "page size (env BLOG_PAGE_SIZE)")
	fl.BoolVar(&lf.all, "all", false, "follow every page")
	return cmd
}

// buildFilter reads a filter path, then lets the individual flags refine it.
func (a *app) buildFilter(ctx context.Context, lf listFlags) (filter.Filter, error) {
	var f filter.Filter
	if lf.url != "" {
		parsed, err := filter.Parse(lf.url)
		if err != nil {
			return f, err
		}
		f = parsed
	}
	if lf.stack != "" {
		group, err := a.stackGroup(ctx, lf.group, lf.stack)
		if err != nil {
			return f, err
		}
		// toggling the stack already in the path would clear it
		if f.Stack == lf.stack {
			f.StackGroup = group
		} else {
			f = f.ToggleStack(group, lf.stack)
		}
	}
	switch {
	case strings.EqualFold(lf.postType, filter.AllTypes):
		f = f.WithPostType("")
	case lf.postType != "":
		t, err := posts.ParsePostType(lf.postType)
		if err != nil {
			return f, err
		}
		f = f.WithPostType(t)
	}
	if lf.keyword != "" {
		f = f.WithKeyword(lf.keyword)
	}
	if lf.page > 0 {
		f = f.WithPage(lf.page)
	}
	return f, nil
}

func (a *app) stackGroup(ctx context.Context, group, stack string) (taxonomy.StackGroup, error) {
	if group != "" {
		return taxonomy.ParseStackGroup(group)
	}
	// offline commands only connect when a lookup is needed
	if err := a.connect(); err != nil {
		return "", err
	}
	g, ok, err := a.taxonomy.ResolveStackGroup(ctx, stack)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("unknown stack %q: pass --group", stack)
	}
	return g, nil
}

func (a *app) listPosts(ctx context.Context, f filter.Filter, size int, all bool) error {
	pager := query.NewPager[posts.ListItem, filter.Filter](a.fetchPostPage, f, size)
	pager.SetPage(f.Page)

	st := pager.Refetch(ctx)
	if st.Err != "" {
		return errors.New(st.Err)
	}
	items := st.Data
	for all && pager.Pagination().HasNext {
		st = pager.Next(ctx)
		if st.Err != "" {
			return errors.New(st.Err)
		}
		items = append(items, st.Data...)
	}
	return a.printPostPage(items, pager.Pagination(), f.String())
}

func (a *app) fetchPostPage(ctx context.Context, f filter.Filter, p apimodel.PageParams) (*apimodel.Page[posts.ListItem], error) {
	q := f.Query(p.Size)
	q.Page = p.Page
	return a.posts.List(ctx, q)
}

func paginationOf(p *posts.PageResult) query.Pagination {
	return query.Pagination{
		Page:          p.Page,
		Size:          p.Size,
		TotalPages:    p.TotalPages,
		TotalElements: p.TotalElements,
		HasNext:       p.HasNext,
		HasPrevious:   p.HasPrevious,
	}
}

type postListOutput struct {
	Filter     string           `json:"filter,omitempty"`
	Posts      []posts.ListItem `json:"posts"`
	Pagination query.Pagination `json:"pagination"`
}

func (a *app) printPostPage(items []posts.ListItem, pg query.Pagination, filterPath string) error {
	out := postListOutput{Filter: filterPath, Posts: items, Pagination: pg}
	return a.print.emit(out, func(w io.Writer) {
		if filterPath != "" {
			fmt.Fprintf(w, "Filter: %s\n", filterPath)
		}
		fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tDATE\tTITLE\tTAGS")
		for _, p := range items {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", p.ID, a.print.postType(p.PostType),
				a.print.status(p.Status), posts.FormatDate(p.CreatedAt), p.Title, strings.Join(p.Tags, ", "))
		}
		fmt.Fprintf(w, "Page %d of %d (%d posts)\n", pg.Page+1, max(pg.TotalPages, 1), pg.TotalElements)
	})
}

func newPostsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			d, err := a.posts.Get(a.context(cmd), id)
			if err != nil {
				return err
			}
			return a.printPost(d)
		},
	}
}

type postOutput struct {
	*posts.Detail
	Path     string          `json:"path"`
	ReadTime int             `json:"readTime"`
	Sections []posts.Section `json:"sections"`
}

func (a *app) printPost(d *posts.Detail) error {
	out := postOutput{
		Detail:   d,
		Path:     routes.PostPath(d.ID),
		ReadTime: posts.ReadTime(d.Content),
		Sections: posts.TableOfContents(d.Content),
	}
	return a.print.emit(out, func(w io.Writer) {
		fmt.Fprintf(w, "%s\n\n", d.Title)
		fmt.Fprintf(w, "Type\t%s\n", a.print.postType(d.PostType))
		fmt.Fprintf(w, "Status\t%s\n", a.print.status(d.Status))
		fmt.Fprintf(w, "Date\t%s\n", posts.FormatDate(d.CreatedAt))
		fmt.Fprintf(w, "Read\t%s\n", posts.ReadTimeLabel(d.Content))
		if len(d.Stacks) > 0 {
			fmt.Fprintf(w, "Stacks\t%s\n", strings.Join(d.Stacks, ", "))
		}
		if len(d.Tags) > 0 {
			fmt.Fprintf(w, "Tags\t%s\n", strings.Join(d.Tags, ", "))
		}
		if d.Prev != nil {
			fmt.Fprintf(w, "Previous\t%s (%s)\n", d.Prev.Title, routes.PostPath(d.Prev.ID))
		}
		if d.Next != nil {
			fmt.Fprintf(w, "Next\t%s (%s)\n", d.Next.Title, routes.PostPath(d.Next.ID))
		}
		if len(out.Sections) > 0 {
			fmt.Fprintln(w, "\nContents")
			for _, s := range out.Sections {
				fmt.Fprintf(w, "%s%s\t#%s\n", strings.Repeat("  ", s.Level-1), s.Title, s.ID)
			}
		}
		fmt.Fprintf(w, "\n%s\n", d.Content)
	})
}

func newPostsMineCmd(a *app) *cobra.Command {
	var page, size int
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "List your own posts, private ones included",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(routes.RouteProfile); err != nil {
				return err
			}
			p, err := a.posts.Mine(a.context(cmd), apimodel.PageParams{Page: page, Size: orSize(size, a.cfg.GetPageSize())})
			if err != nil {
				return err
			}
			return a.printPostPage(p.Content, paginationOf(p), "")
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "zero based page")
	cmd.Flags().IntVar(&size, "size", 0, "page size")
	return cmd
}

func newPostsSearchCmd(a *app) *cobra.Command {
	var page, size int
	cmd := &cobra.Command{
		Use:   "search KEYWORD",
		Short: "Search posts by keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyword := strings.Join(args, " ")
			p, err := a.posts.Search(a.context(cmd), keyword, apimodel.PageParams{Page: page, Size: orSize(size, a.cfg.GetPageSize())})
			if err != nil {
				return err
			}
			return a.printPostPage(p.Content, paginationOf(p), filter.Filter{}.WithKeyword(keyword).WithPage(page).String())
		},
	}
	cmd.Flags().IntVar(&page, "page", 0, "zero based page")
	cmd.Flags().IntVar(&size, "size", 0, "page size")
	return cmd
}

type writeFlags struct {
	title       string
	excerpt     string
	postType    string
	status      string
	contentFile string
	tags        []string
	stacks      []string
}

// newPostsWriteCmd builds "create", or "update ID" when update is set.
func newPostsWriteCmd(a *app, update bool) *cobra.Command {
	var wf writeFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Write a new post",
		Args:  cobra.NoArgs,
	}
	if update {
		cmd.Use = "update ID"
		cmd.Short = "Edit a post; only the given flags change"
		cmd.Args = cobra.ExactArgs(1)
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := a.context(cmd)
		form := posts.NewForm()
		route := routes.RouteWrite
		var id int64
		if update {
			var err error
			if id, err = parseID(args[0]); err != nil {
				return err
			}
			route = routes.EditPath(id)
		}
		if err := a.requireLogin(route); err != nil {
			return err
		}
		if update {
			d, err := a.posts.Get(ctx, id)
			if err != nil {
				return err
			}
			form = posts.FromDetail(d)
		}
		if err := applyWriteFlags(cmd, form, wf); err != nil {
			return err
		}
		if fields := form.Validate(); fields != nil {
			a.printFieldErrors(fields)
			return errors.New("post is not valid")
		}

		var (
			d   *posts.Detail
			err error
		)
		if update {
			d, err = a.posts.Update(ctx, id, form.Request())
		} else {
			d, err = a.posts.Create(ctx, form.Request())
		}
		if err != nil {
			if fields := apiclient.FieldErrors(err); fields != nil {
				form.SetFieldErrors(fields)
				a.printFieldErrors(form.FieldErrors())
			}
			return err
		}
		return a.printPost(d)
	}

	fl := cmd.Flags()
	fl.StringVar(&wf.title, "title", "", "title")
	fl.StringVar(&wf.excerpt, "excerpt", "", "short summary")
	fl.StringVar(&wf.postType, "type", "", "post type: core|architecture|troubleshooting|essay")
	fl.StringVar(&wf.status, "status", "", "PUBLIC or PRIVATE")
	fl.StringVar(&wf.contentFile, "content-file", "", "file with the body; .html files are normalised, - reads stdin")
	fl.StringSliceVar(&wf.tags, "tag", nil, "tag, repeatable; replaces the tags on update")
	fl.StringSliceVar(&wf.stacks, "stack", nil, "stack, repeatable; replaces the stacks on update")
	return cmd
}

func applyWriteFlags(cmd *cobra.Command, form *posts.Form, wf writeFlags) error {
	fl := cmd.Flags()
	text := []struct {
		flag  string
		field posts.Field
		value string
	}{
		{"title", posts.FieldTitle, wf.title},
		{"excerpt", posts.FieldExcerpt, wf.excerpt},
		{"type", posts.FieldPostType, wf.postType},
		{"status", posts.FieldStatus, wf.status},
	}
	for _, t := range text {
		if !fl.Changed(t.flag) {
			continue
		}
		if err := form.UpdateField(t.field, t.value); err != nil {
			return fmt.Errorf("--%s: %w", t.flag, err)
		}
	}

	if fl.Changed("content-file") {
		content, err := readContent(cmd.InOrStdin(), wf.contentFile)
		if err != nil {
			return err
		}
		if err := form.UpdateField(posts.FieldContent, content); err != nil {
			return err
		}
	}
	if fl.Changed("tag") {
		form.Tags = nil
		for _, tag := range wf.tags {
			if err := form.AddTag(tag); err != nil {
				return fmt.Errorf("--tag %q: %w", tag, err)
			}
		}
	}
	if fl.Changed("stack") {
		form.Stacks = nil
		for _, stack := range wf.stacks {
			if err := form.AddStack(stack); err != nil {
				return fmt.Errorf("--stack %q: %w", stack, err)
			}
		}
	}
	return nil
}

// readContent loads a post body. HTML goes through the document model so
// the stored markup has the editor's shape.
func readContent(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".html" && ext != ".htm" {
		return string(data), nil
	}
	nodes, err := editor.ParseHTML(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := editor.RenderHTML(&buf, nodes); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func newPostsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.requireLogin(routes.EditPath(id)); err != nil {
				return err
			}
			if err := a.posts.Delete(a.context(cmd), id); err != nil {
				return err
			}
			return a.print.done(fmt.Sprintf("Deleted post %d.", id))
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func orSize(size, def int) int {
	if size > 0 {
		return size
	}
	return def
}
