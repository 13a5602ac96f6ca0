package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Document collects everything the printable export needs.
type Document struct {
	Title    string
	Table    Table
	Metadata map[string]string
}

// BuildDocument renders the printable tabular document as HTML. The same
// Table feeds WriteCSV, so the printable export enumerates identical rows in
// identical order; only the serialisation differs.
func BuildDocument(doc Document) (string, error) {
	if len(doc.Table.Rows) == 0 {
		return "", ErrNothingToExport
	}
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"utf-8\"><style>")
	b.WriteString("body{font-family:sans-serif;margin:24px;}h1{font-size:20px;}table{width:100%;border-collapse:collapse;margin-bottom:16px;}th,td{border:1px solid #ddd;padding:6px;text-align:right;}th{text-align:left;background:#f5f5f5;}dl{margin-bottom:16px;}dt{font-weight:bold;display:inline;}dd{display:inline;margin:0 12px 0 4px;} .row-label{text-align:left;}")
	b.WriteString("</style></head><body>")
	b.WriteString(fmt.Sprintf("<h1>%s</h1>", htmlEscape(doc.Title)))

	if len(doc.Metadata) > 0 {
		keys := make([]string, 0, len(doc.Metadata))
		for key := range doc.Metadata {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		b.WriteString("<dl>")
		for _, key := range keys {
			label := titleCaser.String(strings.ReplaceAll(key, "_", " "))
			b.WriteString("<dt>")
			b.WriteString(htmlEscape(label))
			b.WriteString("</dt><dd>")
			b.WriteString(htmlEscape(doc.Metadata[key]))
			b.WriteString("</dd>")
		}
		b.WriteString("</dl>")
	}

	b.WriteString("<table><thead><tr>")
	for _, h := range doc.Table.Header {
		b.WriteString("<th>")
		b.WriteString(htmlEscape(h))
		b.WriteString("</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, row := range doc.Table.Rows {
		b.WriteString("<tr>")
		for i, cell := range row {
			if i == 0 {
				b.WriteString("<td class=\"row-label\">")
			} else {
				b.WriteString("<td>")
			}
			b.WriteString(htmlEscape(cell))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table></body></html>")
	return b.String(), nil
}

// PDFExporter wraps Gotenberg interactions for printable exports.
type PDFExporter struct {
	Endpoint string
	Client   *http.Client
}

// Render sends the document HTML to Gotenberg and returns the PDF bytes.
func (p *PDFExporter) Render(ctx context.Context, doc Document) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("pdf exporter not initialised")
	}
	endpoint := strings.TrimRight(p.Endpoint, "/")
	if endpoint == "" {
		return nil, fmt.Errorf("gotenberg endpoint required")
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	html, err := BuildDocument(doc)
	if err != nil {
		return nil, err
	}
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "report.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, err
	}
	if err := writer.WriteField("waitDelay", "500"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("gotenberg response %d: %s", resp.StatusCode, string(data))
	}

	return io.ReadAll(resp.Body)
}

func htmlEscape(v string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(v)
}
