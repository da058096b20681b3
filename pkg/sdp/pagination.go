package sdp

import (
	"context"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/sdp-client/internal/constants"
)

// PageFetcher fetches one page of resources for the given list_info window.
// Resource client List methods satisfy this shape directly.
type PageFetcher[T any] func(ctx context.Context, listInfo *ListInfo) (*ListResponse[T], error)

// PaginationOptions tune the page-walking helpers.
type PaginationOptions struct {
	// PageSize overrides row_count for each fetched page.
	PageSize int

	// MaxPages caps the number of pages fetched; 0 means the library
	// default, which exists so a stuck has_more_rows cannot loop forever.
	MaxPages int
}

// DefaultPaginationOptions returns the defaults: full pages, bounded page
// count.
func DefaultPaginationOptions() *PaginationOptions {
	return &PaginationOptions{
		PageSize: constants.DefaultRowCount,
		MaxPages: constants.MaxPages,
	}
}

// RowIterator walks a paginated collection row by row, fetching pages
// lazily as the provider reports has_more_rows. The iterator advances
// start_index by row_count between fetches.
type RowIterator[T any] struct {
	ctx      context.Context
	fetch    PageFetcher[T]
	listInfo ListInfo
	buffer   []T
	position int
	fetched  bool
	hasMore  bool
	pages    int
}

// NewRowIterator creates an iterator over the collection selected by
// listInfo; nil listInfo uses the provider defaults. The given listInfo is
// copied, so the builder can be reused.
func NewRowIterator[T any](ctx context.Context, fetch PageFetcher[T], listInfo *ListInfo) *RowIterator[T] {
	if listInfo == nil {
		listInfo = NewListInfo()
	}

	window := *listInfo
	if window.StartIndex == 0 {
		window.StartIndex = constants.DefaultStartIndex
	}

	return &RowIterator[T]{
		ctx:      ctx,
		fetch:    fetch,
		listInfo: window,
	}
}

// HasNext reports whether more rows are available, possibly on an unfetched
// page.
func (it *RowIterator[T]) HasNext() bool {
	return it.position < len(it.buffer) || !it.fetched || it.hasMore
}

// Next returns the next row, fetching the next page when the buffered one is
// exhausted. It returns ErrNoMoreItems past the last row.
func (it *RowIterator[T]) Next() (T, error) {
	var zero T

	for it.position >= len(it.buffer) {
		if it.fetched && !it.hasMore {
			return zero, ErrNoMoreItems
		}

		if err := it.fetchPage(); err != nil {
			return zero, err
		}

		if len(it.buffer) == 0 && !it.hasMore {
			return zero, ErrNoMoreItems
		}
	}

	item := it.buffer[it.position]
	it.position++

	return item, nil
}

// All drains the iterator, returning every remaining row.
func (it *RowIterator[T]) All() ([]T, error) {
	var items []T

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			if errors.Is(err, ErrNoMoreItems) {
				break
			}

			return nil, err
		}

		items = append(items, item)
	}

	return items, nil
}

// ForEach applies fn to each remaining row, stopping on the first error.
func (it *RowIterator[T]) ForEach(fn func(T) error) error {
	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			if errors.Is(err, ErrNoMoreItems) {
				return nil
			}

			return err
		}

		if err := fn(item); err != nil {
			return err
		}
	}

	return nil
}

func (it *RowIterator[T]) fetchPage() error {
	if it.pages >= constants.MaxPages {
		return fmt.Errorf("%w: pagination exceeded %d pages", ErrNoMoreItems, constants.MaxPages)
	}

	window := it.listInfo

	response, err := it.fetch(it.ctx, &window)
	if err != nil {
		return fmt.Errorf("fetching page at index %d: %w", window.StartIndex, err)
	}

	it.buffer = response.Items
	it.position = 0
	it.fetched = true
	it.hasMore = response.ListInfo.HasMoreRows
	it.pages++

	step := it.listInfo.RowCount
	if step <= 0 {
		step = len(response.Items)
	}

	it.listInfo.StartIndex += step

	return nil
}

// FetchAllRows walks every page and returns the concatenated rows.
func FetchAllRows[T any](ctx context.Context, fetch PageFetcher[T], listInfo *ListInfo, options *PaginationOptions) ([]T, error) {
	if listInfo == nil {
		listInfo = NewListInfo()
	}

	window := *listInfo
	if window.StartIndex == 0 {
		window.StartIndex = constants.DefaultStartIndex
	}

	maxPages := constants.MaxPages

	if options != nil {
		if options.PageSize > 0 {
			window.RowCount = options.PageSize
		}

		if options.MaxPages > 0 {
			maxPages = options.MaxPages
		}
	}

	var items []T

	for page := 0; page < maxPages; page++ {
		pageWindow := window

		response, err := fetch(ctx, &pageWindow)
		if err != nil {
			return nil, fmt.Errorf("fetching page at index %d: %w", window.StartIndex, err)
		}

		items = append(items, response.Items...)

		if !response.ListInfo.HasMoreRows {
			break
		}

		step := window.RowCount
		if step <= 0 {
			step = len(response.Items)
		}

		if step <= 0 {
			break
		}

		window.StartIndex += step
	}

	return items, nil
}

// RowBatch is one page of a streamed collection.
type RowBatch[T any] struct {
	Items []T
	Err   error
}

// StreamRows fetches pages in a goroutine, delivering each as a RowBatch.
// The channel closes after the last page, the first error, or context
// cancellation.
func StreamRows[T any](ctx context.Context, fetch PageFetcher[T], listInfo *ListInfo, options *PaginationOptions) <-chan RowBatch[T] {
	results := make(chan RowBatch[T], constants.SmallBufferSize)

	if listInfo == nil {
		listInfo = NewListInfo()
	}

	window := *listInfo
	if window.StartIndex == 0 {
		window.StartIndex = constants.DefaultStartIndex
	}

	maxPages := constants.MaxPages

	if options != nil {
		if options.PageSize > 0 {
			window.RowCount = options.PageSize
		}

		if options.MaxPages > 0 {
			maxPages = options.MaxPages
		}
	}

	go func() {
		defer close(results)

		for page := 0; page < maxPages; page++ {
			pageWindow := window

			response, err := fetch(ctx, &pageWindow)
			if err != nil {
				select {
				case results <- RowBatch[T]{Err: fmt.Errorf("fetching page at index %d: %w", window.StartIndex, err)}:
				case <-ctx.Done():
				}

				return
			}

			select {
			case results <- RowBatch[T]{Items: response.Items}:
			case <-ctx.Done():
				return
			}

			if !response.ListInfo.HasMoreRows {
				return
			}

			step := window.RowCount
			if step <= 0 {
				step = len(response.Items)
			}

			if step <= 0 {
				return
			}

			window.StartIndex += step
		}
	}()

	return results
}
