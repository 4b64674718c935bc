// Package export builds the downloadable forms of a document: the JSON
// backup, a minimal ODT package and the HTML wrapper used for DOCX.
package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	defaultName = "Apollo Document"
	maxBaseLen  = 80
	odtMime     = "application/vnd.oasis.opendocument.text"
)

var (
	unsafeRun = regexp.MustCompile(`[/:*?"<>|]+`)
	spaceRun  = regexp.MustCompile(`\s+`)
)

// SafeFilename turns a document title into a download filename.
func SafeFilename(name, ext string) string {
	base := strings.TrimSpace(name)
	if base == "" {
		base = defaultName
	}
	base = unsafeRun.ReplaceAllString(base, "-")
	base = spaceRun.ReplaceAllString(base, " ")
	if utf8.RuneCountInString(base) > maxBaseLen {
		base = string([]rune(base)[:maxBaseLen])
	}
	if base == "" {
		base = defaultName
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return base + ext
}

// Document is the input to JSON.
type Document struct {
	ID      string
	Title   string
	Content string // editor payload
	HTML    string
	Text    string
}

type jsonExport struct {
	Version int    `json:"version"`
	ID      string `json:"id"`
	Title   string `json:"title"`
	SavedAt string `json:"savedAt"`
	Content any    `json:"content"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// JSON renders the "Save As JSON" payload. A content payload that is not
// valid JSON is embedded as a string.
func JSON(doc Document, now time.Time) ([]byte, error) {
	out := jsonExport{
		Version: 1,
		ID:      doc.ID,
		Title:   doc.Title,
		SavedAt: now.UTC().Format("2006-01-02T15:04:05.000Z"),
		HTML:    doc.HTML,
		Text:    doc.Text,
	}
	if out.Title == "" {
		out.Title = defaultName
	}
	switch {
	case doc.Content == "":
		out.Content = map[string]any{}
	case json.Valid([]byte(doc.Content)):
		out.Content = json.RawMessage(doc.Content)
	default:
		out.Content = doc.Content
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

// HTMLDocument wraps an editor HTML fragment into a standalone page.
func HTMLDocument(body string) string {
	return `<!doctype html><html><head><meta charset="utf-8"></head><body>` + body + `</body></html>`
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// xmlText drops runes that XML 1.0 does not allow in character data.
func xmlText(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n' || r == '\r':
			return r
		case r < 0x20, r >= 0xD800 && r <= 0xDFFF, r == 0xFFFE, r == 0xFFFF:
			return -1
		}
		return r
	}, s)
}

const (
	xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

	stylesXML = xmlHeader + `<office:document-styles xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" ` +
		`xmlns:style="urn:oasis:names:tc:opendocument:xmlns:style:1.0" office:version="1.2"><office:styles/></office:document-styles>`

	metaXML = xmlHeader + `<office:document-meta xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" ` +
		`xmlns:meta="urn:oasis:names:tc:opendocument:xmlns:meta:1.0" office:version="1.2">` + "\n" +
		` <office:meta><meta:generator>Apollo Documents</meta:generator></office:meta>` + "\n" +
		`</office:document-meta>`

	manifestXML = xmlHeader + `<manifest:manifest xmlns:manifest="urn:oasis:names:tc:opendocument:xmlns:manifest:1.0" manifest:version="1.2">` + "\n" +
		` <manifest:file-entry manifest:media-type="` + odtMime + `" manifest:full-path="/"/>` + "\n" +
		` <manifest:file-entry manifest:media-type="text/xml" manifest:full-path="content.xml"/>` + "\n" +
		` <manifest:file-entry manifest:media-type="text/xml" manifest:full-path="styles.xml"/>` + "\n" +
		` <manifest:file-entry manifest:media-type="text/xml" manifest:full-path="meta.xml"/>` + "\n" +
		`</manifest:manifest>`
)

// Paragraphs splits plain text into trimmed, non-blank lines.
func Paragraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(line); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func contentXML(text string) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" ` +
		`xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0" ` +
		`xmlns:fo="urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0" office:version="1.2">` + "\n")
	b.WriteString(" <office:body><office:text>\n")
	for _, p := range Paragraphs(text) {
		b.WriteString("  <text:p>")
		b.WriteString(xmlEscaper.Replace(xmlText(p)))
		b.WriteString("</text:p>\n")
	}
	b.WriteString(" </office:text></office:body>\n</office:document-content>")
	return b.String()
}

// ODT packages text as an OpenDocument file. The mimetype entry comes
// first and is stored uncompressed.
func ODT(text string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return nil, fmt.Errorf("odt mimetype: %w", err)
	}
	if _, err := w.Write([]byte(odtMime)); err != nil {
		return nil, fmt.Errorf("odt mimetype: %w", err)
	}

	entries := []struct{ name, body string }{
		{"content.xml", contentXML(text)},
		{"styles.xml", stylesXML},
		{"meta.xml", metaXML},
		{"META-INF/manifest.xml", manifestXML},
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			return nil, fmt.Errorf("odt %s: %w", e.name, err)
		}
		if _, err := w.Write([]byte(e.body)); err != nil {
			return nil, fmt.Errorf("odt %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("odt close: %w", err)
	}
	return buf.Bytes(), nil
}
