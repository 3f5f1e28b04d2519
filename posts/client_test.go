package posts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jrsteele09/go-blog-client/apiclient"
	"github.com/jrsteele09/go-blog-client/apimodel"
	errs "github.com/jrsteele09/go-blog-client/internal/errors"
	"github.com/jrsteele09/go-blog-client/posts"
	"github.com/jrsteele09/go-blog-client/sessions"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method, uri string
	body        map[string]any
}

func newPostsClient(t *testing.T) (*posts.Client, func() []recorded) {
	t.Helper()
	var mu sync.Mutex
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, uri: r.URL.RequestURI()}
		_ = json.NewDecoder(r.Body).Decode(&rec.body)
		mu.Lock()
		calls = append(calls, rec)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		var data any
		switch {
		case r.Method == http.MethodDelete:
			data = nil
		case r.URL.Path == "/posts/42" || r.Method == http.MethodPost:
			data = posts.Detail{ID: 42, Title: "t", Prev: &posts.Adjacent{ID: 41, Title: "before"}}
		default:
			data = apimodel.Page[posts.ListItem]{
				Content: []posts.ListItem{{ID: 1, Title: "one"}},
				Page:    0, Size: 10, TotalPages: 3, TotalElements: 21, HasNext: true,
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
	}))
	t.Cleanup(srv.Close)

	api, err := apiclient.New(srv.URL, sessions.NewMemoryStore())
	require.NoError(t, err)
	return posts.NewClient(api), func() []recorded {
		mu.Lock()
		defer mu.Unlock()
		return append([]recorded(nil), calls...)
	}
}

func TestClient_Endpoints(t *testing.T) {
	ctx := context.Background()
	c, calls := newPostsClient(t)
	p := apimodel.PageParams{Page: 2, Size: 5}

	page, err := c.List(ctx, posts.Query{PostType: posts.TypeEssay, Keyword: " redis ", PageParams: p})
	require.NoError(t, err)
	require.Equal(t, int64(21), page.TotalElements)
	require.True(t, page.HasNext)
	require.Equal(t, "one", page.Content[0].Title)

	_, err = c.ListByType(ctx, posts.TypeCore, apimodel.PageParams{})
	require.NoError(t, err)
	_, err = c.ListByTag(ctx, "c# tips", p)
	require.NoError(t, err)
	_, err = c.ListByStack(ctx, "Spring Boot", apimodel.PageParams{})
	require.NoError(t, err)
	_, err = c.Search(ctx, "cache", apimodel.PageParams{Size: 10})
	require.NoError(t, err)
	_, err = c.Mine(ctx, apimodel.PageParams{})
	require.NoError(t, err)

	d, err := c.Get(ctx, 42)
	require.NoError(t, err)
	require.Equal(t, int64(41), d.Prev.ID)
	require.Nil(t, d.Next)

	f := validForm()
	_, err = c.Create(ctx, f.Request())
	require.NoError(t, err)
	_, err = c.Update(ctx, 42, f.Request())
	require.NoError(t, err)
	require.NoError(t, c.Delete(ctx, 42))

	got := calls()
	uris := make([]string, len(got))
	for i, r := range got {
		uris[i] = r.method + " " + r.uri
	}
	require.Equal(t, []string{
		"GET /posts?keyword=redis&page=2&postType=ESSAY&size=5",
		"GET /posts/category/CORE",
		"GET /posts/tag/c%23%20tips?page=2&size=5",
		"GET /posts/stack/Spring%20Boot",
		"GET /posts/search?keyword=cache&size=10",
		"GET /posts/my",
		"GET /posts/42",
		"POST /posts",
		"PUT /posts/42",
		"DELETE /posts/42",
	}, uris)
	require.Equal(t, "Designing a cache", got[7].body["title"])
	require.Equal(t, "PUBLIC", got[7].body["status"])
}

func TestClient_RejectsBeforeSending(t *testing.T) {
	c, calls := newPostsClient(t)

	_, err := c.Search(context.Background(), "  ", apimodel.PageParams{})
	require.ErrorIs(t, err, errs.ErrValidation)
	_, err = c.ListByType(context.Background(), "NEWS", apimodel.PageParams{})
	require.ErrorIs(t, err, errs.ErrValidation)
	require.Empty(t, calls())
}
