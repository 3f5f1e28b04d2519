package filter_test

import (
	"testing"

	"github.com/jrsteele09/go-blog-client/filter"
	errs "github.com/jrsteele09/go-blog-client/internal/errors"
	"github.com/jrsteele09/go-blog-client/posts"
	"github.com/jrsteele09/go-blog-client/taxonomy"
	"github.com/stretchr/testify/require"
)

func TestParseAndString(t *testing.T) {
	tests := []struct {
		url  string
		want filter.Filter
	}{
		{"/", filter.Filter{}},
		{"/essay", filter.Filter{PostType: posts.TypeEssay}},
		{"/backend/Spring", filter.Filter{StackGroup: taxonomy.StackGroupBackend, Stack: "Spring"}},
		{"/backend/Spring/core", filter.Filter{StackGroup: taxonomy.StackGroupBackend, Stack: "Spring", PostType: posts.TypeCore}},
		{"/frontend/Next.js%20App?q=router", filter.Filter{StackGroup: taxonomy.StackGroupFrontend, Stack: "Next.js App", Keyword: "router"}},
		{"/?page=2&q=redis+cache", filter.Filter{Keyword: "redis cache", Page: 2}},
		{"/architecture?page=1", filter.Filter{PostType: posts.TypeArchitecture, Page: 1}},
		{"/tool/CI%2FCD", filter.Filter{StackGroup: taxonomy.StackGroupTool, Stack: "CI/CD"}},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := filter.Parse(tt.url)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.url, got.String())

			again, err := filter.Parse(got.String())
			require.NoError(t, err)
			require.Equal(t, got, again)
		})
	}
}

func TestParse_NonCanonical(t *testing.T) {
	tests := map[string]string{
		"https://blog.io/ESSAY/": "/essay",
		"/DevOps/Docker?q=":      "/devops/Docker",
		"/?page=0":               "/",
		"/backend//Go/":          "/backend/Go",
	}
	for in, want := range tests {
		f, err := filter.Parse(in)
		require.NoError(t, err, in)
		require.Equal(t, want, f.String(), in)
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"/write", "/post/12", "/edit/3", "/backend/Go/essay/extra", "/backend/Go/news", "/?page=-1", "/?page=x"} {
		_, err := filter.Parse(in)
		require.ErrorIs(t, err, errs.ErrValidation, in)
	}
}

func TestTransitions(t *testing.T) {
	base := filter.Filter{Keyword: "cache", Page: 3}

	t.Run("select and clear post type", func(t *testing.T) {
		f := base.WithPostType(posts.TypeEssay)
		require.Equal(t, "/essay?q=cache", f.String())
		require.Equal(t, "/?q=cache", f.WithPostType("ALL").String())
		require.Equal(t, "/?q=cache", f.WithPostType("").String())
	})

	t.Run("toggle stack", func(t *testing.T) {
		f := base.WithPostType(posts.TypeCore).ToggleStack(taxonomy.StackGroupLanguage, "Go")
		require.Equal(t, "/language/Go?q=cache", f.String())

		f = f.ToggleStack(taxonomy.StackGroupDatabase, "Redis")
		require.Equal(t, "/database/Redis?q=cache", f.String())

		f = f.ToggleStack(taxonomy.StackGroupDatabase, "Redis")
		require.Equal(t, "/?q=cache", f.String())
		require.True(t, f.HasActive())
	})

	t.Run("clear", func(t *testing.T) {
		f := base.WithPostType(posts.TypeCore).Clear()
		require.False(t, f.HasActive())
		require.Equal(t, "/", f.String())
	})

	t.Run("keyword and page", func(t *testing.T) {
		f := filter.Filter{}.WithPage(4).WithKeyword("  go  ")
		require.Equal(t, "/?q=go", f.String())
		require.Equal(t, "/?page=2&q=go", f.WithPage(2).String())
	})

	t.Run("query", func(t *testing.T) {
		f := filter.Filter{PostType: posts.TypeEssay, StackGroup: taxonomy.StackGroupLanguage, Stack: "Go", Page: 1}
		q := f.Query(10)
		require.Equal(t, posts.TypeEssay, q.PostType)
		require.Equal(t, "Go", q.Stack)
		require.Equal(t, 1, q.Page)
		require.Equal(t, 10, q.Size)
	})
}
