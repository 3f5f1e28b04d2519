package query

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-blog-client/apimodel"
)

const DefaultPageSize = 10

// Pagination mirrors the page metadata of the last fetched page.
type Pagination struct {
	Page          int
	Size          int
	TotalPages    int
	TotalElements int64
	HasNext       bool
	HasPrevious   bool
}

// PageFunc loads one page of items for filter F.
type PageFunc[T, F any] func(ctx context.Context, filter F, page apimodel.PageParams) (*apimodel.Page[T], error)

// Pager is a filtered, paginated list. Changing the filter goes back to the
// first page.
type Pager[T, F any] struct {
	fetch    PageFunc[T, F]
	resource *Resource[[]T]

	lock       sync.Mutex
	filter     F
	pagination Pagination
}

func NewPager[T, F any](fetch PageFunc[T, F], initial F, size int) *Pager[T, F] {
	if size <= 0 {
		size = DefaultPageSize
	}
	p := &Pager[T, F]{
		fetch:      fetch,
		filter:     initial,
		pagination: Pagination{Size: size},
	}
	p.resource = NewResource[[]T](p.load, ResetOnError())
	return p
}

func (p *Pager[T, F]) load(ctx context.Context) ([]T, error) {
	p.lock.Lock()
	filter := p.filter
	params := apimodel.PageParams{Page: p.pagination.Page, Size: p.pagination.Size}
	p.lock.Unlock()

	page, err := p.fetch(ctx, filter, params)
	if err != nil {
		return nil, err
	}

	p.lock.Lock()
	p.pagination.TotalPages = page.TotalPages
	p.pagination.TotalElements = page.TotalElements
	p.pagination.HasNext = page.HasNext
	p.pagination.HasPrevious = page.HasPrevious
	p.lock.Unlock()
	return page.Content, nil
}

// SetFilter replaces the filter and resets to page 0. Call Refetch to load.
func (p *Pager[T, F]) SetFilter(f F) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.filter = f
	p.pagination.Page = 0
}

func (p *Pager[T, F]) SetPage(page int) {
	if page < 0 {
		page = 0
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	p.pagination.Page = page
}

func (p *Pager[T, F]) Filter() F {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.filter
}

func (p *Pager[T, F]) Pagination() Pagination {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.pagination
}

// Refetch loads the current page for the current filter.
func (p *Pager[T, F]) Refetch(ctx context.Context) State[[]T] {
	return p.resource.Refetch(ctx)
}

func (p *Pager[T, F]) State() State[[]T] {
	return p.resource.State()
}

// Next moves forward a page and loads it. It is a no-op on the last page.
func (p *Pager[T, F]) Next(ctx context.Context) State[[]T] {
	p.lock.Lock()
	if !p.pagination.HasNext {
		p.lock.Unlock()
		return p.State()
	}
	p.pagination.Page++
	p.lock.Unlock()
	return p.Refetch(ctx)
}

func (p *Pager[T, F]) Previous(ctx context.Context) State[[]T] {
	p.lock.Lock()
	if p.pagination.Page == 0 {
		p.lock.Unlock()
		return p.State()
	}
	p.pagination.Page--
	p.lock.Unlock()
	return p.Refetch(ctx)
}
