package taxonomy

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL = 5 * time.Minute

	keyTags          = "tags"
	keyTagsByGroup   = "tags:group:"
	keyTagsWithCount = "tags:with-count"
	keyGroupedTags   = "tags:grouped"
	keyPopularTags   = "tags:popular:"
	keyStacks        = "stacks"
	keyGroupedStacks = "stacks:grouped"
	keyPopularStacks = "stacks:popular:"
)

// Cache serves taxonomy reads from memory for a TTL. Tags and stacks change
// rarely; any mutation made through the cache drops everything it holds.
type Cache struct {
	client *Client
	mem    *gocache.Cache
	group  singleflight.Group
}

func NewCache(client *Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, mem: gocache.New(ttl, time.Minute)}
}

// Invalidate drops every cached read so the next call refetches.
func (c *Cache) Invalidate() {
	c.mem.Flush()
}

func (c *Cache) Tags(ctx context.Context) ([]Tag, error) {
	return cached(ctx, c, keyTags, c.client.Tags)
}

func (c *Cache) TagsByGroup(ctx context.Context, g TagGroup) ([]Tag, error) {
	return cached(ctx, c, keyTagsByGroup+string(g), func(ctx context.Context) ([]Tag, error) {
		return c.client.TagsByGroup(ctx, g)
	})
}

func (c *Cache) TagsWithCount(ctx context.Context) ([]TagWithCount, error) {
	return cached(ctx, c, keyTagsWithCount, c.client.TagsWithCount)
}

func (c *Cache) GroupedTags(ctx context.Context) (GroupedTags, error) {
	return cached(ctx, c, keyGroupedTags, c.client.GroupedTags)
}

func (c *Cache) PopularTags(ctx context.Context, limit int) ([]PopularTag, error) {
	return cached(ctx, c, keyPopularTags+strconv.Itoa(limit), func(ctx context.Context) ([]PopularTag, error) {
		return c.client.PopularTags(ctx, limit)
	})
}

func (c *Cache) Stacks(ctx context.Context) ([]Stack, error) {
	return cached(ctx, c, keyStacks, c.client.Stacks)
}

func (c *Cache) GroupedStacks(ctx context.Context) (GroupedStacks, error) {
	return cached(ctx, c, keyGroupedStacks, c.client.GroupedStacks)
}

func (c *Cache) PopularStacks(ctx context.Context, limit int) ([]PopularStack, error) {
	return cached(ctx, c, keyPopularStacks+strconv.Itoa(limit), func(ctx context.Context) ([]PopularStack, error) {
		return c.client.PopularStacks(ctx, limit)
	})
}

// ResolveStackGroup finds the group of a stack by name using the cached
// grouped listing.
func (c *Cache) ResolveStackGroup(ctx context.Context, name string) (StackGroup, bool, error) {
	grouped, err := c.GroupedStacks(ctx)
	if err != nil {
		return "", false, err
	}
	g, ok := FindStackGroup(grouped, name)
	return g, ok, nil
}

func (c *Cache) CreateTag(ctx context.Context, req TagRequest) (*Tag, error) {
	defer c.Invalidate()
	return c.client.CreateTag(ctx, req)
}

func (c *Cache) UpdateTag(ctx context.Context, id int64, req TagRequest) (*Tag, error) {
	defer c.Invalidate()
	return c.client.UpdateTag(ctx, id, req)
}

func (c *Cache) DeleteTag(ctx context.Context, id int64) error {
	defer c.Invalidate()
	return c.client.DeleteTag(ctx, id)
}

// cached returns the value under key or fetches it. Concurrent misses for the
// same key share one fetch. Failures are not cached.
func cached[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := c.mem.Get(key); ok {
		return v.(T), nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.mem.Get(key); ok {
			return v, nil
		}
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.mem.SetDefault(key, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
