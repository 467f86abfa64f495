// Package xml provides the XML document parser used to read plugin descriptors.
package xml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/ochairo/plugincheck/internal/domain/interfaces/gateways"
)

// Parse errors for documents that tokenize but are not well-formed trees
var (
	ErrNoRootElement   = errors.New("document has no root element")
	ErrMultipleRoots   = errors.New("document has more than one root element")
	ErrTextOutsideRoot = errors.New("text content outside of the root element")
	ErrUnexpectedEOF   = errors.New("unexpected end of document")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// element is one node of the parsed tree. Only element names, direct
// character data and children are kept; attributes are not needed.
type element struct {
	name     string
	texts    []string
	children []*element
}

// DocumentParser parses XML bytes into a queryable tree
type DocumentParser struct{}

// NewDocumentParser creates a new XML document parser
func NewDocumentParser() *DocumentParser {
	return &DocumentParser{}
}

// Parse parses data as a well-formed XML document
func (p *DocumentParser) Parse(data []byte) (gateways.Document, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	dec.CharsetReader = charset.NewReaderLabel

	var (
		root  *element
		stack []*element
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed document: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{name: t.Name.Local}
			if len(stack) == 0 {
				if root != nil {
					return nil, ErrMultipleRoots
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, ErrTextOutsideRoot
				}
				continue
			}
			if len(t) > 0 {
				top := stack[len(stack)-1]
				top.texts = append(top.texts, string(t))
			}
		}
	}

	if len(stack) > 0 {
		return nil, ErrUnexpectedEOF
	}
	if root == nil {
		return nil, ErrNoRootElement
	}

	return &document{root: root}, nil
}

type document struct {
	root *element
}

// RootName returns the local name of the root element
func (d *document) RootName() string {
	return d.root.name
}

// Text walks path from the root element and returns the trimmed first text
// node among all matching elements, in document order
func (d *document) Text(path string) (string, bool) {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return firstText(d.root)
	}
	return findText(d.root, segments)
}

func findText(el *element, segments []string) (string, bool) {
	for _, child := range el.children {
		if child.name != segments[0] {
			continue
		}
		if len(segments) == 1 {
			if text, ok := firstText(child); ok {
				return text, true
			}
			continue
		}
		if text, ok := findText(child, segments[1:]); ok {
			return text, true
		}
	}
	return "", false
}

func firstText(el *element) (string, bool) {
	if len(el.texts) == 0 {
		return "", false
	}
	return strings.TrimSpace(el.texts[0]), true
}
