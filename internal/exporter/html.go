package exporter

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"trooplogistics/pkg/contracts/domain"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 2em; color: #222; }
h1 { margin-bottom: 0.2em; }
table { border-collapse: collapse; margin: 1em 0; }
th { background: #2e8b57; color: #f5f5f5; }
th, td { border: 1px solid #000; padding: 4px 10px; text-align: center; }
hr { border: 0; page-break-after: always; break-after: page; }
@page { size: letter landscape; margin: 0.5in; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// htmlEncoder lays a page out as markdown and converts it with goldmark.
// Horizontal rules mark page breaks for print.
type htmlEncoder struct{}

func (htmlEncoder) format() domain.DocumentFormat { return domain.FormatHTML }

func (htmlEncoder) encode(_ context.Context, p *Page) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(pageMarkdown(p)), &body); err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}

	var out bytes.Buffer
	err := pageTemplate.Execute(&out, struct {
		Title string
		Body  template.HTML
	}{
		Title: p.Title,
		// goldmark escapes text and omits raw HTML by default.
		Body: template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to execute page template: %w", err)
	}
	return out.Bytes(), nil
}

func pageMarkdown(p *Page) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(p.Title))
	if p.Subtitle != "" {
		fmt.Fprintf(&b, "*%s*\n\n", escapeMarkdown(p.Subtitle))
	}

	for _, s := range p.Sections {
		if s.NewPage {
			b.WriteString("---\n\n")
		}
		fmt.Fprintf(&b, "## %s\n\n", escapeMarkdown(s.Heading))
		if len(s.Fields) > 0 {
			for _, f := range s.Fields {
				fmt.Fprintf(&b, "- **%s:** %s\n", escapeMarkdown(f.Label), escapeMarkdown(f.Value))
			}
			b.WriteString("\n")
		}
		switch {
		case s.Table != nil:
			writeMarkdownTable(&b, s.Table)
		case s.Note != "":
			fmt.Fprintf(&b, "%s\n\n", escapeMarkdown(s.Note))
		}
	}
	return b.String()
}

func writeMarkdownTable(b *strings.Builder, t *Table) {
	b.WriteString("|")
	for _, h := range t.Header {
		fmt.Fprintf(b, " %s |", escapeMarkdown(h))
	}
	b.WriteString("\n|")
	for i := range t.Header {
		if i == 0 {
			b.WriteString(" --- |")
		} else {
			b.WriteString(" ---: |")
		}
	}
	b.WriteString("\n")

	for _, row := range t.Rows {
		writeMarkdownRow(b, row, false)
	}
	if t.Footer != nil {
		writeMarkdownRow(b, t.Footer, true)
	}
	b.WriteString("\n")
}

func writeMarkdownRow(b *strings.Builder, cells []Cell, strong bool) {
	b.WriteString("|")
	for _, c := range cells {
		text := escapeMarkdown(c.Text)
		if strong && text != "" {
			text = "**" + text + "**"
		}
		fmt.Fprintf(b, " %s |", text)
	}
	b.WriteString("\n")
}

// escapeMarkdown backslash-escapes ASCII punctuation so export text is never
// read as markup. Line breaks would end a table row and become spaces.
func escapeMarkdown(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r':
			b.WriteByte(' ')
		case r < 0x80 && isASCIIPunct(byte(r)):
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isASCIIPunct(c byte) bool {
	return strings.IndexByte("!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~", c) >= 0
}
