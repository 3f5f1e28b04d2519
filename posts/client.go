package posts

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-blog-client/apiclient"
	"github.com/jrsteele09/go-blog-client/apimodel"
	errs "github.com/jrsteele09/go-blog-client/internal/errors"
)

const basePath = "/posts"

type PageResult = apimodel.Page[ListItem]

// Query narrows a post listing. Empty fields are not sent.
type Query struct {
	PostType PostType
	Tag      string
	Stack    string
	Keyword  string
	apimodel.PageParams
}

func (q Query) Values() url.Values {
	v := q.PageParams.Values()
	if q.PostType != "" {
		v.Set("postType", string(q.PostType))
	}
	if q.Tag != "" {
		v.Set("tag", q.Tag)
	}
	if q.Stack != "" {
		v.Set("stack", q.Stack)
	}
	if k := strings.TrimSpace(q.Keyword); k != "" {
		v.Set("keyword", k)
	}
	return v
}

type Client struct {
	api *apiclient.Client
}

func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

func (c *Client) List(ctx context.Context, q Query) (*PageResult, error) {
	return c.page(ctx, basePath, q.Values())
}

func (c *Client) Get(ctx context.Context, id int64) (*Detail, error) {
	var d Detail
	if err := c.api.Get(ctx, postPath(id), nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) ListByType(ctx context.Context, t PostType, p apimodel.PageParams) (*PageResult, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("[posts ListByType] %q: %w", t, errs.ErrValidation)
	}
	return c.page(ctx, basePath+"/category/"+string(t), p.Values())
}

func (c *Client) ListByTag(ctx context.Context, tag string, p apimodel.PageParams) (*PageResult, error) {
	return c.page(ctx, basePath+"/tag/"+url.PathEscape(tag), p.Values())
}

func (c *Client) ListByStack(ctx context.Context, stack string, p apimodel.PageParams) (*PageResult, error) {
	return c.page(ctx, basePath+"/stack/"+url.PathEscape(stack), p.Values())
}

func (c *Client) Search(ctx context.Context, keyword string, p apimodel.PageParams) (*PageResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("[posts Search] empty keyword: %w", errs.ErrValidation)
	}
	v := p.Values()
	v.Set("keyword", keyword)
	return c.page(ctx, basePath+"/search", v)
}

// Mine lists the signed-in user's posts, private ones included.
func (c *Client) Mine(ctx context.Context, p apimodel.PageParams) (*PageResult, error) {
	return c.page(ctx, basePath+"/my", p.Values())
}

func (c *Client) Create(ctx context.Context, req Request) (*Detail, error) {
	var d Detail
	if err := c.api.Post(ctx, basePath, req, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) Update(ctx context.Context, id int64, req Request) (*Detail, error) {
	var d Detail
	if err := c.api.Put(ctx, postPath(id), req, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.api.Delete(ctx, postPath(id), nil)
}

func (c *Client) page(ctx context.Context, path string, v url.Values) (*PageResult, error) {
	var page PageResult
	if err := c.api.Get(ctx, path, v, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func postPath(id int64) string {
	return basePath + "/" + strconv.FormatInt(id, 10)
}
