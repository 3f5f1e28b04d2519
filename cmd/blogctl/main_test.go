package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-blog-client/apiclient"
	"github.com/jrsteele09/go-blog-client/editor"
	"github.com/jrsteele09/go-blog-client/sessions"
	"github.com/jrsteele09/go-blog-client/users"
)

type cli struct {
	sessionFile string
	apiURL      string
}

func newCLI(t *testing.T, handler http.Handler) cli {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := cli{sessionFile: filepath.Join(t.TempDir(), "session.json"), apiURL: srv.URL + "/api"}
	t.Setenv("BLOG_SESSION_FILE", c.sessionFile)
	t.Setenv("BLOG_SESSION_KEY", "")
	t.Setenv("BLOG_CONFIG_FILE", "")
	t.Setenv("BLOG_OUTPUT", "")
	t.Setenv("BLOG_PAGE_SIZE", "")
	return c
}

func (c cli) signIn(t *testing.T) {
	t.Helper()
	store, err := sessions.NewFileStore(c.sessionFile, nil)
	require.NoError(t, err)
	require.NoError(t, store.Login("access", "refresh", &users.UserInfo{ID: 1, Email: "a@b.co", Role: users.RoleUser}))
}

func (c cli) run(args ...string) (string, string, error) {
	var out, errOut bytes.Buffer
	a := newApp(&out, &errOut)
	root := newRootCmd(a)
	root.SetArgs(append([]string{"--api-url", c.apiURL, "--no-color"}, args...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestFilterParse(t *testing.T) {
	c := newCLI(t, http.NotFoundHandler())

	out, _, err := c.run("filter", "parse", "/backend/Go/core?q=cache&page=2", "-o", "json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, "Go", got["stack"])
	require.Equal(t, "BACKEND", got["stackGroup"])
	require.Equal(t, "CORE", got["postType"])
	require.Equal(t, "cache", got["keyword"])
	require.Equal(t, "/backend/Go/core?page=2&q=cache", got["canonical"])
}

func TestFilterParseRejectsUnknownPath(t *testing.T) {
	c := newCLI(t, http.NotFoundHandler())
	_, _, err := c.run("filter", "parse", "/nope")
	require.Error(t, err)
}

func TestPostsList(t *testing.T) {
	var gotQuery atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/api/posts", func(w http.ResponseWriter, r *http.Request) {
		gotQuery.Store(r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"content":[{"id":7,"title":"Caching in Go","postType":"CORE","status":"PUBLIC","tags":["go"],"createdAt":"2024-03-05T10:00:00"}],"page":0,"size":10,"totalPages":1,"totalElements":1,"hasNext":false,"hasPrevious":false}}`))
	})
	c := newCLI(t, mux)

	out, _, err := c.run("posts", "list", "--type", "core", "-q", "cache")
	require.NoError(t, err)
	require.Contains(t, out, "Caching in Go")
	require.Contains(t, out, "2024-03-05")
	require.Contains(t, out, "Filter: /core?q=cache")
	require.Equal(t, "keyword=cache&postType=CORE&size=10", gotQuery.Load())
}

func TestPostsCreateRequiresLogin(t *testing.T) {
	var calls atomic.Int32
	c := newCLI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))

	_, _, err := c.run("posts", "create", "--title", "x")
	require.ErrorContains(t, err, "signed-in user")
	require.ErrorIs(t, err, apiclient.ErrNotAuthenticated)
	require.Zero(t, calls.Load())
}

func TestPostsCreateValidatesLocally(t *testing.T) {
	var calls atomic.Int32
	c := newCLI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	c.signIn(t)

	_, errOut, err := c.run("posts", "create", "--excerpt", "short")
	require.EqualError(t, err, "post is not valid")
	require.Contains(t, errOut, "title: title is required")
	require.Zero(t, calls.Load())
}

func TestLoginRefusedWhenSignedIn(t *testing.T) {
	c := newCLI(t, http.NotFoundHandler())
	c.signIn(t)

	_, _, err := c.run("login", "--email", "a@b.co", "--password", "password1")
	require.ErrorContains(t, err, "already signed in as a@b.co")
}

func TestWhoamiSignedOut(t *testing.T) {
	c := newCLI(t, http.NotFoundHandler())
	out, _, err := c.run("whoami")
	require.NoError(t, err)
	require.Contains(t, out, "Not signed in.")
}

func TestUnknownOutputFormat(t *testing.T) {
	c := newCLI(t, http.NotFoundHandler())
	_, _, err := c.run("whoami", "-o", "yaml")
	require.ErrorContains(t, err, "unknown output format")
}

func TestOfflineCommandsIgnoreSessionFile(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, c cli)
	}{
		{"corrupt file", func(t *testing.T, c cli) {
			require.NoError(t, os.WriteFile(c.sessionFile, []byte("{not json"), 0o600))
		}},
		{"bad key", func(t *testing.T, c cli) {
			t.Setenv("BLOG_SESSION_KEY", "zz")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := newCLI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				http.NotFound(w, r)
			}))
			tt.setup(t, c)

			out, _, err := c.run("version", "-o", "json")
			require.NoError(t, err)
			var v map[string]string
			require.NoError(t, json.Unmarshal([]byte(out), &v))
			require.Equal(t, c.apiURL, v["api"])

			_, _, err = c.run("filter", "parse", "/backend/Go")
			require.NoError(t, err)

			out, _, err = c.run("filter", "build", "--stack", "Go", "--group", "backend", "-o", "json")
			require.NoError(t, err)
			require.Contains(t, out, "/backend/Go")

			_, _, err = c.run("whoami")
			require.Error(t, err)
			require.Zero(t, calls.Load())
		})
	}
}

func TestDocAttachImageAtSkipsRejectedFiles(t *testing.T) {
	c := newCLI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/files/upload" {
			http.NotFound(w, r)
			return
		}
		_, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"id": 1, "originalName": hdr.Filename, "url": "/cdn/" + hdr.Filename},
		})
	}))
	c.signIn(t)

	dir := t.TempDir()
	doc := filepath.Join(dir, "post.html")
	require.NoError(t, os.WriteFile(doc, []byte("<p>one</p><p>two</p>"), 0o600))
	a := filepath.Join(dir, "a.png")
	notes := filepath.Join(dir, "notes.txt")
	b := filepath.Join(dir, "b.png")
	require.NoError(t, os.WriteFile(a, []byte("\x89PNG\r\n\x1a\n"), 0o600))
	require.NoError(t, os.WriteFile(notes, []byte("just text"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("\x89PNG\r\n\x1a\n"), 0o600))

	out, errOut, err := c.run("doc", "attach-image", doc, a, notes, b, "--at", "1", "-o", "json")
	require.NoError(t, err)
	require.Contains(t, errOut, "notes.txt")

	var got documentOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Equal(t, []editor.Kind{
		editor.KindParagraph, editor.KindImage, editor.KindImage, editor.KindParagraph,
	}, got.Blocks)
	require.Less(t, strings.Index(got.HTML, "/cdn/a.png"), strings.Index(got.HTML, "/cdn/b.png"))
	require.Less(t, strings.Index(got.HTML, "/cdn/b.png"), strings.Index(got.HTML, "two"))
}
