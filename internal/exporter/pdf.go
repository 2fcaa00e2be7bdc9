package exporter

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"trooplogistics/pkg/contracts/domain"
)

const defaultPDFTimeout = 30 * time.Second

// pdfEncoder prints the HTML rendition of a page with headless Chrome.
// Every call starts its own browser so concurrent packets do not share tabs.
type pdfEncoder struct {
	html       htmlEncoder
	chromePath string
	timeout    time.Duration
}

func newPDFEncoder(chromePath string, timeout time.Duration) *pdfEncoder {
	if timeout <= 0 {
		timeout = defaultPDFTimeout
	}
	return &pdfEncoder{chromePath: chromePath, timeout: timeout}
}

func (*pdfEncoder) format() domain.DocumentFormat { return domain.FormatPDF }

func (e *pdfEncoder) encode(ctx context.Context, p *Page) ([]byte, error) {
	doc, err := e.html.encode(ctx, p)
	if err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.DisableGPU,
	)
	if e.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(e.chromePath))
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("data:text/html;base64,"+base64.StdEncoding.EncodeToString(doc)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to print pdf: %w", err)
	}
	return pdf, nil
}
