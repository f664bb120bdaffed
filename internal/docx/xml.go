package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// WordprocessingML parts must round-trip without losing namespace prefixes or
// elements this package does not model. encoding/xml's marshalling rewrites
// prefixed names, so parts are parsed with Decoder.RawToken into a small
// generic tree that keeps names exactly as written and serialized by hand.

type nodeKind int

const (
	elementNode nodeKind = iota
	textNode
	commentNode
)

type xmlAttr struct {
	name  string
	value string
}

// xmlNode is one node of a parsed XML part. Elements carry name, attrs and
// children; text and comment nodes carry only data.
type xmlNode struct {
	kind     nodeKind
	name     string // prefixed, e.g. "w:p"
	attrs    []xmlAttr
	children []*xmlNode
	data     string // chardata or comment body
}

func newText(data string) *xmlNode {
	return &xmlNode{kind: textNode, data: data}
}

func rawName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// parseXML builds a tree from a full XML part. The declaration and DTD are
// dropped; a standard declaration is re-emitted on serialization.
func parseXML(b []byte) (*xmlNode, error) {
	dec := xml.NewDecoder(bytes.NewReader(b))
	var (
		root  *xmlNode
		stack []*xmlNode
	)
	for {
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &xmlNode{kind: elementNode, name: rawName(t.Name)}
			for _, a := range t.Attr {
				n.attrs = append(n.attrs, xmlAttr{name: rawName(a.Name), value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("parse xml: multiple root elements")
				}
				root = n
			} else {
				p := stack[len(stack)-1]
				p.children = append(p.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, errors.New("parse xml: unbalanced end element")
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				p := stack[len(stack)-1]
				p.children = append(p.children, newText(string(t)))
			}
		case xml.Comment:
			if len(stack) > 0 {
				p := stack[len(stack)-1]
				p.children = append(p.children, &xmlNode{kind: commentNode, data: string(t)})
			}
		case xml.ProcInst, xml.Directive:
			// declaration/DTD, re-emitted in canonical form on write
		}
	}
	if root == nil {
		return nil, errors.New("parse xml: no root element")
	}
	if len(stack) != 0 {
		return nil, errors.New("parse xml: unexpected end of input")
	}
	return root, nil
}

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\r\n"

// serialize renders the part back to bytes with the standard declaration.
func serialize(root *xmlNode) []byte {
	var b bytes.Buffer
	b.WriteString(xmlHeader)
	root.write(&b)
	return b.Bytes()
}

func (n *xmlNode) write(b *bytes.Buffer) {
	switch n.kind {
	case textNode:
		escape(b, n.data)
	case commentNode:
		b.WriteString("<!--")
		b.WriteString(n.data)
		b.WriteString("-->")
	case elementNode:
		b.WriteByte('<')
		b.WriteString(n.name)
		for _, a := range n.attrs {
			b.WriteByte(' ')
			b.WriteString(a.name)
			b.WriteString(`="`)
			escape(b, a.value)
			b.WriteByte('"')
		}
		if len(n.children) == 0 {
			b.WriteString("/>")
			return
		}
		b.WriteByte('>')
		for _, c := range n.children {
			c.write(b)
		}
		b.WriteString("</")
		b.WriteString(n.name)
		b.WriteByte('>')
	}
}

func escape(b *bytes.Buffer, s string) {
	// EscapeText covers <, >, &, quotes and control characters, which is
	// safe for both chardata and attribute values.
	_ = xml.EscapeText(b, []byte(s))
}

// elements returns every descendant element (including n itself) with the
// given prefixed name, in document order.
func (n *xmlNode) elements(name string) []*xmlNode {
	var out []*xmlNode
	n.walk(func(e *xmlNode) {
		if e.name == name {
			out = append(out, e)
		}
	})
	return out
}

// childElements returns the direct child elements with the given prefixed
// name, leaving nested occurrences (e.g. paragraphs inside table cells) out.
func (n *xmlNode) childElements(name string) []*xmlNode {
	var out []*xmlNode
	for _, c := range n.children {
		if c.kind == elementNode && c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// attr returns the value of the named attribute, or "".
func (n *xmlNode) attr(name string) string {
	for _, a := range n.attrs {
		if a.name == name {
			return a.value
		}
	}
	return ""
}

func (n *xmlNode) walk(fn func(*xmlNode)) {
	if n.kind != elementNode {
		return
	}
	fn(n)
	for _, c := range n.children {
		c.walk(fn)
	}
}

// text concatenates all chardata beneath n.
func (n *xmlNode) text() string {
	var sb strings.Builder
	var rec func(*xmlNode)
	rec = func(c *xmlNode) {
		if c.kind == textNode {
			sb.WriteString(c.data)
			return
		}
		for _, ch := range c.children {
			rec(ch)
		}
	}
	rec(n)
	return sb.String()
}

// setText replaces n's children with a single text node.
func (n *xmlNode) setText(s string) {
	n.children = []*xmlNode{newText(s)}
}

func (n *xmlNode) setAttr(name, value string) {
	for i := range n.attrs {
		if n.attrs[i].name == name {
			n.attrs[i].value = value
			return
		}
	}
	n.attrs = append(n.attrs, xmlAttr{name: name, value: value})
}

// remove detaches target anywhere beneath n. Reports whether it was found.
func (n *xmlNode) remove(target *xmlNode) bool {
	if n.kind != elementNode {
		return false
	}
	for i, c := range n.children {
		if c == target {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return true
		}
		if c.remove(target) {
			return true
		}
	}
	return false
}
