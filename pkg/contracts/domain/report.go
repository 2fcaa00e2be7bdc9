package domain

import "time"

// Report is the full outcome of processing one uploaded export.
type Report struct {
	ID          string             `json:"id"`
	Filename    string             `json:"filename"`
	Format      string             `json:"format"`
	ProcessedAt time.Time          `json:"processed_at"`
	Columns     []string           `json:"columns"`
	Resolution  *ColumnResolution  `json:"resolution"`
	Orders      *FilteredOrderSet  `json:"orders"`
	Result      *AggregationResult `json:"result"`
}

// DocumentKind names one of the printable documents.
type DocumentKind string

const (
	DocumentTroopSummary DocumentKind = "troop-summary"
	DocumentPickList     DocumentKind = "pick-list"
	DocumentPackingSlips DocumentKind = "packing-slips"
	DocumentPacket       DocumentKind = "packet"
	DocumentArchive      DocumentKind = "archive"
)

// DocumentFormat names a rendering backend.
type DocumentFormat string

const (
	FormatCSV  DocumentFormat = "csv"
	FormatXLSX DocumentFormat = "xlsx"
	FormatHTML DocumentFormat = "html"
	FormatPDF  DocumentFormat = "pdf"
)

// Document is a rendered byte stream with the metadata needed to serve it.
type Document struct {
	Kind        DocumentKind   `json:"kind"`
	Format      DocumentFormat `json:"format"`
	Filename    string         `json:"filename"`
	ContentType string         `json:"content_type"`
	Data        []byte         `json:"-"`
}
