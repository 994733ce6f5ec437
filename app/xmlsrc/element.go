package xmlsrc

import (
	"bytes"
	"encoding/xml"
	"errors"
	"iter"
	"strings"
)

// Element is a handle to one open element. Its children are read lazily
// from the underlying Source; once the stream has moved past a child that
// child can no longer be read.
type Element struct {
	Name  xml.Name
	Attrs []xml.Attr

	src     *Source
	depth   int
	closed  bool
	started bool
	current *Element
	text    strings.Builder
}

// Attr returns the value of the first attribute with the given local name,
// regardless of its namespace. Namespace declarations are ignored.
func (e *Element) Attr(local string) string {
	for _, a := range e.Attrs {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// AttrNS returns the value of the attribute with the given namespace and
// local name. The namespace may be a resolved URI or an undeclared prefix.
func (e *Element) AttrNS(space, local string) string {
	for _, a := range e.Attrs {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// Children yields the immediate child elements in document order. The
// sequence is single-pass: a child not fully read by the loop body is
// skipped before the next one is produced, and breaking out of the loop
// leaves the rest of this element unread. Character data found between
// children is collected and later returned by Text.
func (e *Element) Children() iter.Seq2[*Element, error] {
	return func(yield func(*Element, error) bool) {
		e.started = true

		for !e.closed {
			if e.current != nil && !e.current.closed {
				if err := e.current.Skip(); err != nil {
					yield(nil, err)
					return
				}
			}

			tok, err := e.src.token()
			if err != nil {
				yield(nil, err)
				return
			}

			switch t := tok.(type) {
			case xml.StartElement:
				e.current = e.src.newElement(t)
				if !yield(e.current, nil) {
					return
				}
			case xml.EndElement:
				e.closeIfEnded()
			case xml.CharData:
				e.appendText(t)
			}
		}
	}
}

// Text consumes the rest of the element and returns the character data
// found directly inside it, trimmed of surrounding whitespace. Text nested
// in child elements is not included. Calling Text after the element has been
// consumed returns whatever was collected during iteration.
func (e *Element) Text() (string, error) {
	e.started = true

	for !e.closed {
		tok, err := e.src.token()
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.CharData:
			// depth equals ours only for text directly inside this element
			if e.src.depth == e.depth {
				e.appendText(t)
			}
		case xml.EndElement:
			e.closeIfEnded()
		}
	}

	return strings.TrimSpace(e.text.String()), nil
}

// appendText keeps non-blank runs and reduces a whitespace-only run to a
// single separator after earlier text.
func (e *Element) appendText(t []byte) {
	if len(bytes.TrimSpace(t)) > 0 {
		e.text.Write(t)
		return
	}
	s := e.text.String()
	if s != "" && !isSpace(s[len(s)-1]) {
		e.text.WriteByte(' ')
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// InnerXML consumes the element and re-serializes its content, child
// markup included. Element and attribute names are written without their
// namespace; namespace declarations are dropped. It must be called before
// any other read of the element.
func (e *Element) InnerXML() (string, error) {
	if e.started {
		return "", errors.New("element content already partially consumed")
	}
	e.started = true

	var buf bytes.Buffer
	for !e.closed {
		tok, err := e.src.token()
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			writeStart(&buf, t)
		case xml.EndElement:
			e.closeIfEnded()
			if !e.closed {
				buf.WriteString("</")
				buf.WriteString(t.Name.Local)
				buf.WriteString(">")
			}
		case xml.CharData:
			textEscaper.WriteString(&buf, string(t))
		}
	}

	return strings.TrimSpace(buf.String()), nil
}

// Skip discards the remainder of the element, including all descendants.
func (e *Element) Skip() error {
	e.started = true

	for !e.closed {
		tok, err := e.src.token()
		if err != nil {
			return err
		}
		if _, ok := tok.(xml.EndElement); ok {
			e.closeIfEnded()
		}
	}
	return nil
}

func (e *Element) closeIfEnded() {
	if e.src.depth < e.depth {
		e.closed = true
	}
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
)

func writeStart(buf *bytes.Buffer, start xml.StartElement) {
	buf.WriteString("<")
	buf.WriteString(start.Name.Local)
	for _, a := range start.Attr {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		buf.WriteString(" ")
		buf.WriteString(a.Name.Local)
		buf.WriteString(`="`)
		attrEscaper.WriteString(buf, a.Value)
		buf.WriteString(`"`)
	}
	buf.WriteString(">")
}
