package editor_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-blog-client/editor"
	"github.com/jrsteele09/go-blog-client/files"
	errs "github.com/jrsteele09/go-blog-client/internal/errors"
)

func TestParseHTML(t *testing.T) {
	src := `<h2>Title</h2><p>Hello <strong>world</strong></p>` +
		`<pre><code class="language-go">fmt.Println("&lt;x&gt;")</code></pre>` +
		`<p><img src="/a.png" alt="A"></p>` +
		`<ul><li><p>one</p></li><li>two</li></ul>` +
		`<blockquote><p>q</p></blockquote><hr><h5>deep</h5>`

	nodes, err := editor.ParseHTML(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, []editor.Node{
		editor.Heading{Level: 2, Inline: "Title"},
		editor.Paragraph{Inline: "Hello <strong>world</strong>"},
		editor.CodeBlock{Language: "go", Code: `fmt.Println("<x>")`},
		editor.Image{Src: "/a.png", Alt: "A"},
		editor.List{Items: []editor.ListItem{
			{Children: []editor.Node{editor.Paragraph{Inline: "one"}}},
			{Children: []editor.Node{editor.Paragraph{Inline: "two"}}},
		}},
		editor.Blockquote{Children: []editor.Node{editor.Paragraph{Inline: "q"}}},
		editor.HorizontalRule{},
		editor.Heading{Level: 3, Inline: "deep"},
	}, nodes)
}

func TestParseHTMLDefaults(t *testing.T) {
	tests := []struct {
		name string
		html string
		want []editor.Node
	}{
		{"code without language", `<pre><code>x := 1</code></pre>`,
			[]editor.Node{editor.CodeBlock{Language: "javascript", Code: "x := 1"}}},
		{"stray text", `plain <em>text</em>`,
			[]editor.Node{editor.Paragraph{Inline: "plain <em>text</em>"}}},
		{"image without src", `<img alt="x">`, nil},
		{"lazy image", `<img src="/b.png" loading="lazy">`,
			[]editor.Node{editor.Image{Src: "/b.png"}}},
		{"div unwrapped", `<div><p>a</p><hr></div>`,
			[]editor.Node{editor.Paragraph{Inline: "a"}, editor.HorizontalRule{}}},
		{"ordered list", `<ol><li>1</li></ol>`,
			[]editor.Node{editor.List{Ordered: true, Items: []editor.ListItem{
				{Children: []editor.Node{editor.Paragraph{Inline: "1"}}},
			}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := editor.ParseHTML(strings.NewReader(tt.html))
			require.NoError(t, err)
			require.Equal(t, tt.want, nodes)
		})
	}
}

func TestRenderHTMLRoundTrip(t *testing.T) {
	doc := editor.NewDocument(
		editor.Heading{Level: 1, Inline: "Intro"},
		editor.Text("a < b & c"),
		editor.NewCodeBlock("", "if (a < b) {}"),
		editor.Image{Src: "/x.png", Alt: `say "hi"`},
		editor.HorizontalRule{},
	)

	out, err := doc.HTML()
	require.NoError(t, err)
	require.Contains(t, out, "<h1>Intro</h1>")
	require.Contains(t, out, "<p>a &lt; b &amp; c</p>")
	require.Contains(t, out, `<pre><code class="language-javascript">if (a &lt; b) {}</code></pre>`)
	require.Contains(t, out, `<img src="/x.png" alt="say &#34;hi&#34;">`)
	require.NotContains(t, out, "title=")

	nodes, err := editor.ParseHTML(strings.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, doc.Nodes(), nodes)
}

// foreign satisfies Node through the embedded Paragraph but is not one.
type foreign struct{ editor.Paragraph }

func TestRenderHTMLUnsupported(t *testing.T) {
	var buf strings.Builder
	err := editor.RenderHTML(&buf, []editor.Node{editor.Text("ok"), foreign{}})
	require.ErrorIs(t, err, errs.ErrUnsupported)
}

func TestCodeBlockExit(t *testing.T) {
	doc := editor.NewDocument(editor.NewCodeBlock("go", "x := 1\n"))
	require.False(t, doc.ExitCodeBlock(0))

	doc = editor.NewDocument(editor.NewCodeBlock("go", "x := 1\n\n"), editor.Text("after"))
	require.True(t, doc.ExitCodeBlock(0))
	require.Equal(t, []editor.Node{
		editor.CodeBlock{Language: "go", Code: "x := 1"},
		editor.Paragraph{},
		editor.Paragraph{Inline: "after"},
	}, doc.Nodes())

	require.False(t, doc.ExitCodeBlock(1))
	require.False(t, doc.ExitCodeBlock(9))
}

func TestDocumentInsertClamps(t *testing.T) {
	doc := editor.NewDocument(editor.Text("a"))
	require.Equal(t, 0, doc.Insert(-5, editor.Text("first")))
	require.Equal(t, 2, doc.Insert(99, editor.Text("last")))
	require.Equal(t, []editor.Node{
		editor.Paragraph{Inline: "first"},
		editor.Paragraph{Inline: "a"},
		editor.Paragraph{Inline: "last"},
	}, doc.Nodes())
}

func TestDocumentConcurrentInsert(t *testing.T) {
	doc := editor.NewDocument()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			doc.Insert(doc.Len()/2, editor.HorizontalRule{})
		}()
	}
	wg.Wait()
	require.Equal(t, 50, doc.Len())
}

func TestReplaceImageInsideQuote(t *testing.T) {
	doc := editor.NewDocument(editor.Blockquote{Children: []editor.Node{
		editor.Image{Src: editor.PlaceholderSrc, Loading: "uploading-1"},
	}})
	require.True(t, doc.ReplaceImage("uploading-1", editor.Image{Src: "/done.png"}))
	require.False(t, doc.ReplaceImage("uploading-1", editor.Image{Src: "/again.png"}))
	require.Equal(t, []editor.Node{
		editor.Blockquote{Children: []editor.Node{editor.Image{Src: "/done.png"}}},
	}, doc.Nodes())
}

type gatedUploader struct {
	release chan struct{}
	resp    *files.UploadResponse
	err     error
}

func (g *gatedUploader) Upload(ctx context.Context, f files.File) (*files.UploadResponse, error) {
	<-g.release
	return g.resp, g.err
}

type notices struct {
	lock sync.Mutex
	got  []editor.Notice
}

func (n *notices) Notify(notice editor.Notice) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.got = append(n.got, notice)
}

func png(name string) files.File {
	return files.File{Name: name, ContentType: "image/png", Reader: bytes.NewReader([]byte("png"))}
}

func TestUploadSuccess(t *testing.T) {
	doc := editor.NewDocument(editor.Text("a"), editor.Text("b"))
	up := &gatedUploader{
		release: make(chan struct{}),
		resp:    &files.UploadResponse{ID: 1, OriginalName: "cat.png", URL: "https://cdn/cat.png"},
	}
	uploads := editor.NewUploads(doc, up, &notices{})

	at := 1
	marker, err := uploads.Start(context.Background(), png("cat.png"), &at)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(marker, editor.MarkerPrefix))

	// placeholder is visible before the upload answers
	nodes := doc.Nodes()
	require.Len(t, nodes, 3)
	require.Equal(t, editor.Image{Src: editor.PlaceholderSrc, Alt: editor.PlaceholderAlt, Loading: marker}, nodes[1])

	close(up.release)
	uploads.Wait()

	require.Equal(t, []editor.Node{
		editor.Paragraph{Inline: "a"},
		editor.Image{Src: "https://cdn/cat.png", Alt: "cat.png"},
		editor.Paragraph{Inline: "b"},
	}, doc.Nodes())
}

func TestUploadFailure(t *testing.T) {
	doc := editor.NewDocument(editor.Text("a"))
	up := &gatedUploader{release: make(chan struct{}), err: errors.New("boom")}
	got := &notices{}
	uploads := editor.NewUploads(doc, up, got)

	_, err := uploads.Start(context.Background(), png("dog.png"), nil)
	require.NoError(t, err)
	require.Equal(t, 2, doc.Len())

	close(up.release)
	uploads.Wait()

	require.Equal(t, []editor.Node{editor.Paragraph{Inline: "a"}}, doc.Nodes())
	require.Len(t, got.got, 1)
	require.Equal(t, editor.NoticeError, got.got[0].Level)
	require.Contains(t, got.got[0].Message, "dog.png")
	require.EqualError(t, got.got[0].Err, "boom")
}

func TestUploadRejectsNonImage(t *testing.T) {
	doc := editor.NewDocument(editor.Text("a"))
	uploads := editor.NewUploads(doc, &gatedUploader{}, &notices{})

	f := files.File{Name: "notes.txt", ContentType: "text/plain", Reader: strings.NewReader("hi")}
	marker, err := uploads.Start(context.Background(), f, nil)
	require.ErrorIs(t, err, errs.ErrNotAnImage)
	require.Empty(t, marker)
	require.Equal(t, 1, doc.Len())
}

func TestUploadsConcurrent(t *testing.T) {
	doc := editor.NewDocument()
	up := &gatedUploader{
		release: make(chan struct{}),
		resp:    &files.UploadResponse{URL: "/img.png", OriginalName: "img.png"},
	}
	uploads := editor.NewUploads(doc, up, editor.NotifierFunc(func(editor.Notice) {}))

	for i := 0; i < 10; i++ {
		_, err := uploads.Start(context.Background(), png("img.png"), nil)
		require.NoError(t, err)
	}
	require.Equal(t, 10, doc.Len())
	close(up.release)
	uploads.Wait()

	for _, n := range doc.Nodes() {
		img, ok := n.(editor.Image)
		require.True(t, ok)
		require.False(t, img.IsPlaceholder())
	}
}
