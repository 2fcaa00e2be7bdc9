package exporter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trooplogistics/pkg/contracts/domain"
)

var (
	// ErrUnsupportedFormat is returned for a format with no backend.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrFormatDisabled is returned for a backend that is switched off.
	ErrFormatDisabled = errors.New("document format disabled")
)

// Renderer produces the printable documents derived from an aggregation.
// Implementations are safe for concurrent use.
type Renderer interface {
	Format() domain.DocumentFormat
	RenderTroopSummary(ctx context.Context, totals []domain.Quantity) ([]byte, error)
	RenderRecipientPickList(ctx context.Context, products []string, totals []domain.RecipientTotals) ([]byte, error)
	RenderPackingSlips(ctx context.Context, orders []domain.RecipientOrders) ([]byte, error)
	RenderRecipientPacket(ctx context.Context, recipient string, totals domain.RecipientTotals, orders domain.RecipientOrders) ([]byte, error)
}

// Options configures the renderers.
type Options struct {
	// Title is printed under every document heading.
	Title      string
	PDFEnabled bool
	// ChromePath overrides the browser binary used for PDF output.
	ChromePath string
	PDFTimeout time.Duration
}

// encoder turns a page into the bytes of one format.
type encoder interface {
	format() domain.DocumentFormat
	encode(ctx context.Context, p *Page) ([]byte, error)
}

// DocumentRenderer lays documents out as pages and hands them to a format
// encoder.
type DocumentRenderer struct {
	enc   encoder
	title string
}

var _ Renderer = (*DocumentRenderer)(nil)

// NewRenderer returns the renderer for format.
func NewRenderer(format domain.DocumentFormat, opts Options) (*DocumentRenderer, error) {
	var enc encoder
	switch format {
	case domain.FormatCSV:
		enc = csvEncoder{}
	case domain.FormatXLSX:
		enc = xlsxEncoder{}
	case domain.FormatHTML:
		enc = htmlEncoder{}
	case domain.FormatPDF:
		if !opts.PDFEnabled {
			return nil, fmt.Errorf("%w: %s", ErrFormatDisabled, format)
		}
		enc = newPDFEncoder(opts.ChromePath, opts.PDFTimeout)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return &DocumentRenderer{enc: enc, title: opts.Title}, nil
}

// Format returns the output format.
func (r *DocumentRenderer) Format() domain.DocumentFormat {
	return r.enc.format()
}

// RenderTroopSummary renders the troop-wide pull list.
func (r *DocumentRenderer) RenderTroopSummary(ctx context.Context, totals []domain.Quantity) ([]byte, error) {
	return r.render(ctx, troopSummaryPage(r.title, totals))
}

// RenderRecipientPickList renders one row per recipient with a column per product.
func (r *DocumentRenderer) RenderRecipientPickList(ctx context.Context, products []string, totals []domain.RecipientTotals) ([]byte, error) {
	return r.render(ctx, pickListPage(r.title, products, totals))
}

// RenderPackingSlips renders one slip per order, grouped by recipient.
func (r *DocumentRenderer) RenderPackingSlips(ctx context.Context, orders []domain.RecipientOrders) ([]byte, error) {
	return r.render(ctx, packingSlipsPage(r.title, orders))
}

// RenderRecipientPacket renders a recipient's pickup summary followed by
// the packing slips of their customers.
func (r *DocumentRenderer) RenderRecipientPacket(ctx context.Context, recipient string, totals domain.RecipientTotals, orders domain.RecipientOrders) ([]byte, error) {
	return r.render(ctx, packetPage(r.title, recipient, totals, orders))
}

func (r *DocumentRenderer) render(ctx context.Context, p *Page) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := r.enc.encode(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("render %s %s: %w", r.enc.format(), p.Name, err)
	}
	return data, nil
}
