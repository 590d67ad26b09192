// Package pagination provides page navigation and parallel batch fetching for
// the artworks collection.
//
// The collection is served in fixed-size, 1-based pages. The Controller owns the
// page the user is looking at (0-based index, page size, last known total) and
// the PageCache holding that page's records. The BatchFetcher fetches a run of
// following pages concurrently for bulk operations.
//
// Example usage:
//
//	ctrl, err := pagination.NewController(src, 12)
//	if err := ctrl.GoToPage(ctx, 0); err != nil { ... }
//	state, page := ctrl.Snapshot()
//
//	fetcher := pagination.NewBatchFetcher(src, pagination.DefaultConfig())
//	pages, err := fetcher.FetchPages(ctx, 2, 3) // pages 2, 3 and 4
//
// The batch fetcher:
//   - Launches one fetch per page, bounded by MaxConcurrency
//   - Gives every page its own timeout
//   - Stores each result in the slot of its page index, so output order is page order
//   - Cancels outstanding fetches on the first failure and returns no pages at all
package pagination
