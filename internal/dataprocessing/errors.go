package dataprocessing

import (
	"errors"
	"fmt"
)

// Pipeline errors. Every one of them is fatal for the upload that raised it.
var (
	ErrUnsupportedFormat       = errors.New("unsupported file format")
	ErrParse                   = errors.New("could not parse export")
	ErrDuplicateColumn         = errors.New("duplicate column after trimming")
	ErrTableTooLarge           = errors.New("export exceeds configured size limits")
	ErrMissingChannelColumn    = errors.New("could not find a 'Delivery Method' or 'Order Type' column")
	ErrNoProductColumnsMatched = errors.New("no product columns found")
	ErrMoneyParse              = errors.New("could not parse monetary amount")
)

// Stage names a step of the pipeline.
type Stage string

const (
	StageIngest    Stage = "ingest"
	StageResolve   Stage = "resolve"
	StageFilter    Stage = "filter"
	StageAggregate Stage = "aggregate"
	StageRender    Stage = "render"
)

// StageError attaches the failing stage to an error.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the stage recorded on err, if any.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

// ErrorCode returns a stable machine readable code for a pipeline error.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return "UNSUPPORTED_FORMAT"
	case errors.Is(err, ErrParse):
		return "PARSE_ERROR"
	case errors.Is(err, ErrDuplicateColumn):
		return "DUPLICATE_COLUMN"
	case errors.Is(err, ErrTableTooLarge):
		return "TABLE_TOO_LARGE"
	case errors.Is(err, ErrMissingChannelColumn):
		return "MISSING_CHANNEL_COLUMN"
	case errors.Is(err, ErrNoProductColumnsMatched):
		return "NO_PRODUCT_COLUMNS_MATCHED"
	case errors.Is(err, ErrMoneyParse):
		return "MONEY_PARSE_ERROR"
	default:
		return ""
	}
}
