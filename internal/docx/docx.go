// Package docx reads and writes Word documents (OOXML packages) using only
// archive/zip and encoding/xml. It models just enough of WordprocessingML to
// substitute text across every surface while leaving all other parts of the
// package byte-for-byte intact.
package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	// ContentType is the MIME type for .docx packages.
	ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	// Extension is the fixed filename extension for documents and templates.
	Extension = ".docx"

	documentPart = "word/document.xml"
)

// ErrInvalidDocument is returned when bytes do not parse as a well-formed
// .docx package.
var ErrInvalidDocument = errors.New("invalid docx document")

type part struct {
	name string
	data []byte
}

// Document is an editable in-memory Word document. Parts that bear text
// (body, headers, footers) are parsed into XML trees; everything else is kept
// as opaque bytes and written back untouched.
type Document struct {
	parts []part
	trees map[string]*xmlNode
}

// Parse loads a .docx package from bytes. It fails with ErrInvalidDocument if
// the bytes are not a zip archive, the main document part is missing, or any
// text-bearing part is malformed.
func Parse(b []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a zip archive", ErrInvalidDocument)
	}

	doc := &Document{trees: make(map[string]*xmlNode)}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open part %s", ErrInvalidDocument, f.Name)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: read part %s", ErrInvalidDocument, f.Name)
		}
		doc.parts = append(doc.parts, part{name: f.Name, data: data})

		if textBearing(f.Name) {
			tree, err := parseXML(data)
			if err != nil {
				return nil, fmt.Errorf("%w: part %s: %v", ErrInvalidDocument, f.Name, err)
			}
			doc.trees[f.Name] = tree
		}
	}

	if doc.trees[documentPart] == nil {
		return nil, fmt.Errorf("%w: missing %s", ErrInvalidDocument, documentPart)
	}
	return doc, nil
}

// textBearing reports whether a part holds substitutable text: the main body
// plus every header and footer section.
func textBearing(name string) bool {
	if name == documentPart {
		return true
	}
	if !strings.HasSuffix(name, ".xml") {
		return false
	}
	base := strings.TrimPrefix(name, "word/")
	return strings.HasPrefix(base, "header") || strings.HasPrefix(base, "footer")
}

// Bytes serializes the document back into a .docx package. Text-bearing parts
// are re-rendered from their trees; all other parts keep their original bytes.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range d.parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("write part %s: %w", p.name, err)
		}
		data := p.data
		if tree, ok := d.trees[p.name]; ok {
			data = serialize(tree)
		}
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("write part %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close package: %w", err)
	}
	return buf.Bytes(), nil
}

// paragraphs returns every w:p element across all text-bearing parts:
// body paragraphs, table cells (nested under w:tbl), headers and footers.
// Each paragraph is an independent text region; tokens never span them.
func (d *Document) paragraphs() []*xmlNode {
	var out []*xmlNode
	for _, p := range d.parts {
		if tree, ok := d.trees[p.name]; ok {
			out = append(out, tree.elements("w:p")...)
		}
	}
	return out
}

// Text returns the plain text of the main body, one line per paragraph.
func (d *Document) Text() string {
	tree := d.trees[documentPart]
	var lines []string
	for _, p := range tree.elements("w:p") {
		lines = append(lines, mergedText(p))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Paragraphs counts the paragraphs in the main body, including table cells.
func (d *Document) Paragraphs() int {
	return len(d.trees[documentPart].elements("w:p"))
}

// Tables counts the tables in the main body.
func (d *Document) Tables() int {
	return len(d.trees[documentPart].elements("w:tbl"))
}

// Sections counts the section breaks in the main body.
func (d *Document) Sections() int {
	return len(d.trees[documentPart].elements("w:sectPr"))
}

// OutlineParagraph is one top-level body paragraph: its style (empty for the
// default) and a short text preview.
type OutlineParagraph struct {
	Index int    `json:"index"`
	Style string `json:"style,omitempty"`
	Text  string `json:"text"`
}

// OutlineTable is one top-level body table, described by its dimensions.
type OutlineTable struct {
	Index   int `json:"index"`
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// Outline is a structural summary of the main body.
type Outline struct {
	Paragraphs []OutlineParagraph `json:"paragraphs"`
	Tables     []OutlineTable     `json:"tables"`
}

const outlinePreviewLimit = 100

// Outline walks the direct children of the body: paragraphs become preview
// entries with their style, tables report row and column counts. Paragraphs
// inside table cells belong to their table and are not listed separately.
func (d *Document) Outline() Outline {
	out := Outline{
		Paragraphs: []OutlineParagraph{},
		Tables:     []OutlineTable{},
	}

	bodies := d.trees[documentPart].childElements("w:body")
	if len(bodies) == 0 {
		return out
	}
	for _, c := range bodies[0].children {
		switch {
		case c.kind != elementNode:
		case c.name == "w:p":
			op := OutlineParagraph{Index: len(out.Paragraphs), Text: preview(mergedText(c))}
			if pPr := c.childElements("w:pPr"); len(pPr) > 0 {
				if st := pPr[0].childElements("w:pStyle"); len(st) > 0 {
					op.Style = st[0].attr("w:val")
				}
			}
			out.Paragraphs = append(out.Paragraphs, op)
		case c.name == "w:tbl":
			ot := OutlineTable{Index: len(out.Tables)}
			rows := c.childElements("w:tr")
			ot.Rows = len(rows)
			if len(rows) > 0 {
				ot.Columns = len(rows[0].childElements("w:tc"))
			}
			out.Tables = append(out.Tables, ot)
		}
	}
	return out
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= outlinePreviewLimit {
		return s
	}
	return string(r[:outlinePreviewLimit])
}

const wNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// New builds a minimal well-formed document with the given core properties
// and an empty body.
func New(title, author string) (*Document, error) {
	created := time.Now().UTC().Format(time.RFC3339)
	parts := []part{
		{name: "[Content_Types].xml", data: []byte(xmlHeader +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>` +
			`</Types>`)},
		{name: "_rels/.rels", data: []byte(xmlHeader +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>` +
			`</Relationships>`)},
		{name: "docProps/core.xml", data: []byte(xmlHeader +
			`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"` +
			` xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/"` +
			` xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
			`<dc:title>` + escapeString(title) + `</dc:title>` +
			`<dc:creator>` + escapeString(author) + `</dc:creator>` +
			`<dcterms:created xsi:type="dcterms:W3CDTF">` + created + `</dcterms:created>` +
			`</cp:coreProperties>`)},
		{name: documentPart, data: []byte(xmlHeader +
			`<w:document xmlns:w="` + wNamespace + `">` +
			`<w:body><w:p/><w:sectPr><w:pgSz w:w="12240" w:h="15840"/></w:sectPr></w:body>` +
			`</w:document>`)},
	}

	doc := &Document{parts: parts, trees: make(map[string]*xmlNode)}
	tree, err := parseXML(parts[3].data)
	if err != nil {
		return nil, fmt.Errorf("build document: %w", err)
	}
	doc.trees[documentPart] = tree
	return doc, nil
}

func escapeString(s string) string {
	var b bytes.Buffer
	escape(&b, s)
	return b.String()
}
