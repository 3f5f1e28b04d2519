package taxonomy

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-blog-client/apiclient"
	errs "github.com/jrsteele09/go-blog-client/internal/errors"
)

const (
	tagsPath   = "/tags"
	stacksPath = "/stacks"

	DefaultPopularLimit = 5
)

type Client struct {
	api *apiclient.Client
}

func NewClient(api *apiclient.Client) *Client {
	return &Client{api: api}
}

func (c *Client) Tags(ctx context.Context) ([]Tag, error) {
	return get[[]Tag](ctx, c, tagsPath, nil)
}

func (c *Client) TagsByGroup(ctx context.Context, g TagGroup) ([]Tag, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("[taxonomy TagsByGroup] %q: %w", g, errs.ErrValidation)
	}
	return get[[]Tag](ctx, c, tagsPath+"/group/"+string(g), nil)
}

func (c *Client) TagsWithCount(ctx context.Context) ([]TagWithCount, error) {
	return get[[]TagWithCount](ctx, c, tagsPath+"/with-count", nil)
}

func (c *Client) GroupedTags(ctx context.Context) (GroupedTags, error) {
	return get[GroupedTags](ctx, c, tagsPath+"/grouped", nil)
}

// PopularTags returns the most used tags. A non-positive limit means the default of 5.
func (c *Client) PopularTags(ctx context.Context, limit int) ([]PopularTag, error) {
	return get[[]PopularTag](ctx, c, tagsPath+"/popular", limitQuery(limit))
}

func (c *Client) CreateTag(ctx context.Context, req TagRequest) (*Tag, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	var t Tag
	if err := c.api.Post(ctx, tagsPath, req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) UpdateTag(ctx context.Context, id int64, req TagRequest) (*Tag, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	var t Tag
	if err := c.api.Put(ctx, tagsPath+"/"+strconv.FormatInt(id, 10), req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTag(ctx context.Context, id int64) error {
	return c.api.Delete(ctx, tagsPath+"/"+strconv.FormatInt(id, 10), nil)
}

func (c *Client) Stacks(ctx context.Context) ([]Stack, error) {
	return get[[]Stack](ctx, c, stacksPath, nil)
}

func (c *Client) GroupedStacks(ctx context.Context) (GroupedStacks, error) {
	return get[GroupedStacks](ctx, c, stacksPath+"/grouped", nil)
}

func (c *Client) PopularStacks(ctx context.Context, limit int) ([]PopularStack, error) {
	return get[[]PopularStack](ctx, c, stacksPath+"/popular", limitQuery(limit))
}

func (r TagRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("tag name is required: %w", errs.ErrValidation)
	}
	if r.Group != nil && !r.Group.Valid() {
		return fmt.Errorf("unknown tag group %q: %w", *r.Group, errs.ErrValidation)
	}
	return nil
}

func limitQuery(limit int) url.Values {
	if limit <= 0 {
		limit = DefaultPopularLimit
	}
	return url.Values{"limit": []string{strconv.Itoa(limit)}}
}

func get[T any](ctx context.Context, c *Client, path string, q url.Values) (T, error) {
	var out T
	err := c.api.Get(ctx, path, q, &out)
	return out, err
}
