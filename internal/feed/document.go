package feed

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// ErrNotRewritable is returned when a title node does not hold plain text
var ErrNotRewritable = errors.New("title element does not hold plain text")

// MalformedFeedError reports bytes that are not well-formed XML
type MalformedFeedError struct {
	Err error
}

func (e *MalformedFeedError) Error() string {
	return fmt.Sprintf("malformed feed document: %v", e.Err)
}

func (e *MalformedFeedError) Unwrap() error {
	return e.Err
}

var (
	utf8BOM     = []byte{0xEF, 0xBB, 0xBF}
	encodingRe  = regexp.MustCompile(`^\s*<\?xml[^>]*?\bencoding\s*=\s*["']([A-Za-z0-9._:-]+)["']`)
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// TitleNode is one <title> element of a parsed document
type TitleNode struct {
	text       string
	start, end int
	plain      bool

	replaced    bool
	replacement string
}

// Text returns the character data of the element as originally parsed
func (n *TitleNode) Text() string {
	return n.text
}

// Rewritable reports whether the node holds only character data
func (n *TitleNode) Rewritable() bool {
	return n.plain
}

// Document is a parsed feed owned by one translation run
type Document struct {
	raw    []byte
	titles []*TitleNode
}

// Parse checks that raw is well-formed XML and indexes its title elements.
// Documents declared in another encoding are transcoded to UTF-8 first.
func Parse(raw []byte) (*Document, error) {
	data, err := toUTF8(raw)
	if err != nil {
		return nil, &MalformedFeedError{Err: err}
	}

	// encoding/xml does not skip a byte order mark
	bodyStart := 0
	if bytes.HasPrefix(data, utf8BOM) {
		bodyStart = len(utf8BOM)
	}

	titles, err := indexTitles(data[bodyStart:], bodyStart)
	if err != nil {
		return nil, &MalformedFeedError{Err: err}
	}

	return &Document{raw: data, titles: titles}, nil
}

// indexTitles walks the token stream, verifying nesting and recording the
// content byte range of every unprefixed title element
func indexTitles(data []byte, base int) ([]*TitleNode, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	d.Strict = true
	d.Entity = xml.HTMLEntity
	// Other encodings were transcoded by toUTF8, only UTF-8 spellings such
	// as "utf8" reach the decoder
	d.CharsetReader = func(label string, input io.Reader) (io.Reader, error) {
		if isUTF8Label(label) {
			return input, nil
		}
		return nil, fmt.Errorf("unsupported encoding %q", label)
	}

	var (
		stack   []xml.Name
		titles  []*TitleNode
		current *TitleNode
		depth   int
		text    strings.Builder
		roots   int
	)

	for {
		offset := int(d.InputOffset())
		tok, err := d.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if len(stack) == 0 {
				roots++
				if roots > 1 {
					return nil, fmt.Errorf("more than one root element (<%s>)", qualified(t.Name))
				}
			}
			if current != nil {
				current.plain = false
			}
			stack = append(stack, t.Name)
			if current == nil && isTitle(t.Name) {
				contentStart := int(d.InputOffset())
				current = &TitleNode{start: base + contentStart, plain: true}
				// <title/> ends at the offset where its content would start
				if contentStart >= 2 && string(data[contentStart-2:contentStart]) == "/>" {
					current.plain = false
				}
				depth = len(stack)
				text.Reset()
			}

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("unexpected end element </%s>", qualified(t.Name))
			}
			if open := stack[len(stack)-1]; open != t.Name {
				return nil, fmt.Errorf("element <%s> closed by </%s>", qualified(open), qualified(t.Name))
			}
			if current != nil && len(stack) == depth {
				current.end = base + offset
				if current.end < current.start {
					current.end = current.start
				}
				current.text = text.String()
				titles = append(titles, current)
				current = nil
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if current != nil {
				text.Write(t)
			} else if len(stack) == 0 && len(bytes.TrimSpace(t)) > 0 {
				return nil, fmt.Errorf("character data outside the root element")
			}
		}
	}

	if roots == 0 {
		return nil, fmt.Errorf("no root element")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("unclosed element <%s>", qualified(stack[len(stack)-1]))
	}

	return titles, nil
}

func isTitle(name xml.Name) bool {
	return name.Space == "" && name.Local == "title"
}

func qualified(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

// toUTF8 transcodes documents whose XML declaration names a non-UTF-8
// encoding and rewrites the declaration to match
func toUTF8(raw []byte) ([]byte, error) {
	head := raw
	if len(head) > 512 {
		head = head[:512]
	}
	m := encodingRe.FindSubmatchIndex(bytes.TrimPrefix(head, utf8BOM))
	if m == nil {
		return raw, nil
	}

	label := string(bytes.TrimPrefix(head, utf8BOM)[m[2]:m[3]])
	if isUTF8Label(label) {
		return raw, nil
	}

	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}

	shift := 0
	if bytes.HasPrefix(raw, utf8BOM) {
		shift = len(utf8BOM)
	}
	decl := make([]byte, 0, len(raw))
	decl = append(decl, raw[:shift+m[2]]...)
	decl = append(decl, "UTF-8"...)
	decl = append(decl, raw[shift+m[3]:]...)

	data, err := enc.NewDecoder().Bytes(decl)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s document: %w", label, err)
	}

	return data, nil
}

func isUTF8Label(label string) bool {
	return strings.EqualFold(label, "utf-8") || strings.EqualFold(label, "utf8")
}

// Titles returns the title elements in document order
func (d *Document) Titles() []*TitleNode {
	return d.titles
}

// RewriteTitle replaces the text of node. Sibling nodes are not affected.
func (d *Document) RewriteTitle(node *TitleNode, text string) error {
	if !node.plain {
		return ErrNotRewritable
	}

	node.replacement = text
	node.replaced = true
	return nil
}

// Serialize renders the document with every rewritten title replaced
func (d *Document) Serialize() []byte {
	var buf bytes.Buffer
	buf.Grow(len(d.raw))

	prev := 0
	for _, node := range d.titles {
		if !node.replaced {
			continue
		}
		buf.Write(d.raw[prev:node.start])
		textEscaper.WriteString(&buf, node.replacement)
		prev = node.end
	}
	buf.Write(d.raw[prev:])

	return buf.Bytes()
}
