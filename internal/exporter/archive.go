package exporter

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"trooplogistics/pkg/contracts/domain"
)

const fallbackEntryName = "recipient"

// Archive is a zip of one packet per recipient.
type Archive struct {
	Data []byte
	// Entries lists the file names in archive order.
	Entries []string
}

// BuildArchive renders every recipient's packet with at most workers
// renders in flight and zips them in first-appearance order. Recipients with
// no demand still get a packet listing their zero-box orders.
func BuildArchive(ctx context.Context, r Renderer, result *domain.AggregationResult, workers int) (*Archive, error) {
	recipients := result.Recipients()
	names := EntryNames(recipients, Extension(r.Format()))

	packets := make([][]byte, len(recipients))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, recipient := range recipients {
		g.Go(func() error {
			totals, _ := result.Totals(recipient)
			orders, _ := result.Orders(recipient)
			data, err := r.RenderRecipientPacket(gctx, recipient, totals, orders)
			if err != nil {
				return fmt.Errorf("packet for %q: %w", recipient, err)
			}
			packets[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	modified := time.Now()
	for i, name := range names {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", name, err)
		}
		if _, err := w.Write(packets[i]); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}
	return &Archive{Data: buf.Bytes(), Entries: names}, nil
}

// EntryNames maps recipients to unique archive file names. Collisions are
// detected case-insensitively and resolved with _2, _3 suffixes.
func EntryNames(recipients []string, ext string) []string {
	names := make([]string, len(recipients))
	used := make(map[string]bool, len(recipients))
	for i, recipient := range recipients {
		base := SanitizeName(recipient)
		name := base
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		used[strings.ToLower(name)] = true
		names[i] = name + "." + ext
	}
	return names
}

// SanitizeName keeps letters, digits, spaces, underscores and hyphens, and
// trims surrounding spaces. An empty result becomes "recipient".
func SanitizeName(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' || r == '-' {
			return r
		}
		return -1
	}, s)
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return fallbackEntryName
	}
	return cleaned
}
