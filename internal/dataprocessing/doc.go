// Package dataprocessing turns an uploaded sales-order export into demand
// summaries.
//
// # Data Flow
//
//	bytes → Ingest → RawTable → Resolver → ColumnResolution
//	      → OrderProcessor → FilteredOrderSet → Summarizer → AggregationResult
//
// Each stage only depends on the output of earlier ones. Pipeline runs them in
// order and wraps the first failure in a *StageError naming the stage.
//
// # Column Resolution
//
// Export column names drift between releases, so columns are found by
// case-insensitive substring matching. Product columns are claimed in
// vocabulary order, then alias order; each alias claims the first unclaimed
// column in table order. Alias order and vocabulary order are therefore part of
// the observable behaviour. The channel column takes part in product matching
// and is claimed for metadata only afterwards.
//
// CSV input must be valid UTF-8 with balanced quotes; anything else is an
// ErrParse rather than a repaired table.
//
// # Errors
//
// All errors are fatal for the upload and wrap one of the sentinels in
// errors.go, so callers can use errors.Is and ErrorCode.
package dataprocessing
