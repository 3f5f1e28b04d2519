package filter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	errs "github.com/jrsteele09/go-blog-client/internal/errors"
	"github.com/jrsteele09/go-blog-client/posts"
	"github.com/jrsteele09/go-blog-client/taxonomy"
)

const (
	keywordParam = "q"
	pageParam    = "page"

	// AllTypes selects every post type.
	AllTypes = "ALL"
)

// Filter is the post listing state carried in a URL:
//
//	/                          everything
//	/{type}                    one post type
//	/{group}/{stack}           one stack
//	/{group}/{stack}/{type}    one stack and post type
//
// plus ?q= for a search keyword and ?page= for a non-first page. Groups and
// types are lower case in the path.
type Filter struct {
	PostType   posts.PostType
	StackGroup taxonomy.StackGroup
	Stack      string
	Keyword    string
	Page       int
}

// Parse reads a filter from a URL or a path with optional query. It fails on
// paths that are not filter paths.
func Parse(rawURL string) (Filter, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Filter{}, errs.Wrapf(err, "[filter Parse] %q", rawURL)
	}

	var f Filter
	segments, err := splitPath(u.EscapedPath())
	if err != nil {
		return Filter{}, invalid(rawURL, err)
	}
	switch len(segments) {
	case 0:
	case 1:
		if f.PostType, err = posts.ParsePostType(segments[0]); err != nil {
			return Filter{}, invalid(rawURL, err)
		}
	case 2, 3:
		if f.StackGroup, err = taxonomy.ParseStackGroup(segments[0]); err != nil {
			return Filter{}, invalid(rawURL, err)
		}
		f.Stack = segments[1]
		if len(segments) == 3 {
			if f.PostType, err = posts.ParsePostType(segments[2]); err != nil {
				return Filter{}, invalid(rawURL, err)
			}
		}
	default:
		return Filter{}, invalid(rawURL, fmt.Errorf("too many path segments"))
	}

	q := u.Query()
	f.Keyword = strings.TrimSpace(q.Get(keywordParam))
	if p := q.Get(pageParam); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Filter{}, invalid(rawURL, fmt.Errorf("bad page %q", p))
		}
		f.Page = n
	}
	return f, nil
}

// splitPath returns the unescaped, non-empty segments of an escaped path.
// An escaped slash stays inside its segment.
func splitPath(escaped string) ([]string, error) {
	var out []string
	for _, s := range strings.Split(escaped, "/") {
		if s == "" {
			continue
		}
		seg, err := url.PathUnescape(s)
		if err != nil {
			return nil, err
		}
		out = append(out, seg)
	}
	return out, nil
}

func invalid(rawURL string, err error) error {
	return fmt.Errorf("not a filter url %q: %w: %w", rawURL, errs.ErrValidation, err)
}

// String renders the canonical URL for f. Parse(f.String()) returns f.
func (f Filter) String() string {
	var b strings.Builder
	if f.Stack != "" && f.StackGroup != "" {
		b.WriteString("/" + f.StackGroup.PathSegment() + "/" + url.PathEscape(f.Stack))
	}
	if f.PostType != "" {
		b.WriteString("/" + strings.ToLower(string(f.PostType)))
	}
	if b.Len() == 0 {
		b.WriteString("/")
	}

	q := url.Values{}
	if f.Keyword != "" {
		q.Set(keywordParam, f.Keyword)
	}
	if f.Page > 0 {
		q.Set(pageParam, strconv.Itoa(f.Page))
	}
	if len(q) > 0 {
		b.WriteString("?" + q.Encode())
	}
	return b.String()
}

// HasActive reports whether anything narrows the listing.
func (f Filter) HasActive() bool {
	return f.PostType != "" || f.Stack != "" || f.Keyword != ""
}

// WithPostType selects a post type, keeping the stack and keyword. ALL or
// an empty type clears it.
func (f Filter) WithPostType(t posts.PostType) Filter {
	if strings.EqualFold(string(t), AllTypes) {
		t = ""
	}
	f.PostType = t
	f.Page = 0
	return f
}

// ToggleStack selects a stack, or clears it when it is already selected.
// Either way only the keyword survives.
func (f Filter) ToggleStack(group taxonomy.StackGroup, name string) Filter {
	next := Filter{Keyword: f.Keyword}
	if f.Stack == name {
		return next
	}
	next.StackGroup = group
	next.Stack = name
	return next
}

func (f Filter) WithKeyword(keyword string) Filter {
	f.Keyword = strings.TrimSpace(keyword)
	f.Page = 0
	return f
}

func (f Filter) WithPage(page int) Filter {
	if page < 0 {
		page = 0
	}
	f.Page = page
	return f
}

// Clear drops every filter.
func (f Filter) Clear() Filter {
	return Filter{}
}

// Query converts the filter into a post listing query.
func (f Filter) Query(size int) posts.Query {
	q := posts.Query{
		PostType: f.PostType,
		Stack:    f.Stack,
		Keyword:  f.Keyword,
	}
	q.Page = f.Page
	q.Size = size
	return q
}
