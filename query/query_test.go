package query_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jrsteele09/go-blog-client/apiclient"
	"github.com/jrsteele09/go-blog-client/apimodel"
	"github.com/jrsteele09/go-blog-client/query"
	"github.com/stretchr/testify/require"
)

func TestResource(t *testing.T) {
	calls := 0
	fail := false
	r := query.NewResource[string](func(ctx context.Context) (string, error) {
		calls++
		if fail {
			return "", &apiclient.APIError{StatusCode: 500, Message: "server down"}
		}
		return fmt.Sprintf("v%d", calls), nil
	})

	st := r.Fetch(context.Background())
	require.Equal(t, query.State[string]{Data: "v1"}, st)

	st = r.Fetch(context.Background())
	require.Equal(t, "v1", st.Data)
	require.Equal(t, 1, calls)

	st = r.Refetch(context.Background())
	require.Equal(t, "v2", st.Data)

	t.Run("failure keeps data by default", func(t *testing.T) {
		fail = true
		st := r.Refetch(context.Background())
		require.Equal(t, "v2", st.Data)
		require.Equal(t, "server down", st.Err)
		require.False(t, st.Loading)
	})

	t.Run("success clears the error", func(t *testing.T) {
		fail = false
		st := r.Refetch(context.Background())
		require.Empty(t, st.Err)
		require.Equal(t, "v4", st.Data)
	})
}

func TestResource_ResetOnError(t *testing.T) {
	fail := false
	r := query.NewResource[[]int](func(ctx context.Context) ([]int, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return []int{1, 2}, nil
	}, query.ResetOnError(), query.WithMessage(func(err error) string { return "failed: " + err.Error() }))

	require.Equal(t, []int{1, 2}, r.Refetch(context.Background()).Data)
	fail = true
	st := r.Refetch(context.Background())
	require.Nil(t, st.Data)
	require.Equal(t, "failed: boom", st.Err)
	require.Equal(t, st, r.State())
}

type postFilter struct {
	Keyword string
}

func TestPager(t *testing.T) {
	var seen []string
	p := query.NewPager[int, postFilter](func(ctx context.Context, f postFilter, pp apimodel.PageParams) (*apimodel.Page[int], error) {
		seen = append(seen, fmt.Sprintf("%s:%d:%d", f.Keyword, pp.Page, pp.Size))
		return &apimodel.Page[int]{
			Content:     []int{pp.Page},
			Page:        pp.Page,
			Size:        pp.Size,
			TotalPages:  3,
			HasNext:     pp.Page < 2,
			HasPrevious: pp.Page > 0,
		}, nil
	}, postFilter{}, 0)

	require.Equal(t, query.DefaultPageSize, p.Pagination().Size)

	st := p.Refetch(context.Background())
	require.Equal(t, []int{0}, st.Data)
	require.True(t, p.Pagination().HasNext)

	p.Next(context.Background())
	st = p.Next(context.Background())
	require.Equal(t, []int{2}, st.Data)
	require.False(t, p.Pagination().HasNext)

	// Already on the last page.
	p.Next(context.Background())
	require.Equal(t, 2, p.Pagination().Page)

	p.SetFilter(postFilter{Keyword: "go"})
	require.Equal(t, 0, p.Pagination().Page)
	require.Equal(t, "go", p.Filter().Keyword)
	p.Refetch(context.Background())

	p.SetPage(1)
	p.Previous(context.Background())
	p.Previous(context.Background())

	require.Equal(t, []string{":0:10", ":1:10", ":2:10", "go:0:10", "go:0:10"}, seen)
}
