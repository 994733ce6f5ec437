// Package xmlsrc exposes a forward-only, lazily materialized element tree
// over an XML token stream. Only the currently open element path is held in
// memory; children are produced one at a time and cannot be revisited.
package xmlsrc

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

type Option func(*xml.Decoder)

// HTMLEntities lets the tokenizer resolve HTML named entities such as &nbsp;.
// Without it unknown entities are reported as syntax errors.
func HTMLEntities() Option {
	return func(d *xml.Decoder) {
		d.Entity = xml.HTMLEntity
	}
}

// Source wraps a single XML token stream. It must not be shared between
// goroutines or reused for more than one document.
type Source struct {
	dec   *xml.Decoder
	depth int
	err   error
}

func New(r io.Reader, opts ...Option) *Source {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charsetReader
	for _, opt := range opts {
		opt(dec)
	}
	return &Source{dec: dec}
}

// Root advances past the prolog (declaration, comments, processing
// instructions, doctype, whitespace) and returns the document element.
// It returns nil and no error when the input ends before any element.
func (s *Source) Root() (*Element, error) {
	if s.depth != 0 {
		return nil, errors.New("root element already consumed")
	}

	for {
		tok, err := s.token()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		if start, ok := tok.(xml.StartElement); ok {
			return s.newElement(start), nil
		}
	}
}

// token reads the next token and keeps the open-element depth in sync.
// Once an error has been returned every later call returns it again.
func (s *Source) token() (xml.Token, error) {
	if s.err != nil {
		return nil, s.err
	}

	tok, err := s.dec.Token()
	if err != nil {
		if err == io.EOF && s.depth > 0 {
			err = io.ErrUnexpectedEOF
		}
		if err != io.EOF {
			err = fmt.Errorf("failed to read xml token: %w", err)
		}
		s.err = err
		return nil, err
	}

	switch t := tok.(type) {
	case xml.StartElement:
		s.depth++
	case xml.EndElement:
		s.depth--
	case xml.CharData:
		// CharData is only valid until the next call to Token.
		tok = t.Copy()
	}

	return tok, nil
}

func (s *Source) newElement(start xml.StartElement) *Element {
	return &Element{
		Name:  start.Name,
		Attrs: start.Attr,
		src:   s,
		depth: s.depth,
	}
}

func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}
