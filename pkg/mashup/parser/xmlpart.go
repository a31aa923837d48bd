package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// ErrElementNotFound indicates the requested element is absent from a part.
var ErrElementNotFound = errors.New("element not found")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// xmlPart is an XML document held as UTF-8 text together with the byte
// encoding it was stored in, so it can be written back the same way.
// customXml parts written by Excel are usually UTF-16LE with a BOM.
type xmlPart struct {
	text string
	enc  encoding.Encoding // nil for UTF-8
	bom  bool              // UTF-8 BOM present
}

// element is the location of one element inside xmlPart.text.
type element struct {
	qname        string
	tagStart     int
	contentStart int
	contentEnd   int
	text         string
}

func (e *element) selfClosing(doc string) bool {
	return e.contentStart == e.contentEnd && strings.HasSuffix(doc[e.tagStart:e.contentStart], "/>")
}

func decodePart(raw []byte) (*xmlPart, error) {
	switch {
	case bytes.HasPrefix(raw, utf8BOM):
		return &xmlPart{text: string(raw[len(utf8BOM):]), bom: true}, nil
	case bytes.HasPrefix(raw, []byte{0xFF, 0xFE}):
		return transcodePart(raw, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM))
	case bytes.HasPrefix(raw, []byte{0xFE, 0xFF}):
		return transcodePart(raw, unicode.UTF16(unicode.BigEndian, unicode.UseBOM))
	case len(raw) >= 2 && raw[0] == '<' && raw[1] == 0:
		return transcodePart(raw, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM))
	case len(raw) >= 2 && raw[0] == 0 && raw[1] == '<':
		return transcodePart(raw, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM))
	}
	return &xmlPart{text: string(raw)}, nil
}

func transcodePart(raw []byte, enc encoding.Encoding) (*xmlPart, error) {
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decode xml part: %w", err)
	}
	return &xmlPart{text: string(out), enc: enc}, nil
}

// bytes serializes the part in its original encoding.
func (p *xmlPart) bytes() ([]byte, error) {
	if p.enc != nil {
		return p.enc.NewEncoder().Bytes([]byte(p.text))
	}
	if p.bom {
		return append(append([]byte{}, utf8BOM...), p.text...), nil
	}
	return []byte(p.text), nil
}

// find returns the first element whose local name equals local, ignoring
// any namespace prefix.
func (p *xmlPart) find(local string) (*element, error) {
	decoder := xml.NewDecoder(strings.NewReader(p.text))
	// The text is already UTF-8 whatever the declaration says.
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var found *element
	var text strings.Builder
	depth := 0
	for {
		before := decoder.InputOffset()
		token, err := decoder.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if found != nil {
				depth++
				continue
			}
			if t.Name.Local == local {
				found = &element{
					qname:        qualifiedName(t.Name),
					tagStart:     int(before),
					contentStart: int(decoder.InputOffset()),
				}
			}
		case xml.EndElement:
			if found == nil {
				continue
			}
			if depth > 0 {
				depth--
				continue
			}
			found.contentEnd = int(before)
			found.text = text.String()
			return found, nil
		case xml.CharData:
			if found != nil && depth == 0 {
				text.Write(t)
			}
		}
	}

	if found != nil {
		return nil, fmt.Errorf("unterminated element %s", found.qname)
	}
	return nil, fmt.Errorf("%w: %s", ErrElementNotFound, local)
}

// setText replaces the character content of e with text.
func (p *xmlPart) setText(e *element, text string) {
	var escaped strings.Builder
	xml.EscapeText(&escaped, []byte(text))

	if e.selfClosing(p.text) {
		open := strings.TrimRight(strings.TrimSuffix(p.text[e.tagStart:e.contentStart], "/>"), " \t\r\n")
		p.text = p.text[:e.tagStart] + open + ">" + escaped.String() + "</" + e.qname + ">" + p.text[e.contentStart:]
		return
	}
	p.text = p.text[:e.contentStart] + escaped.String() + p.text[e.contentEnd:]
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// ElementText returns the text of the first element with the given local
// name in an XML part.
func ElementText(raw []byte, local string) (string, error) {
	part, err := decodePart(raw)
	if err != nil {
		return "", err
	}
	e, err := part.find(local)
	if err != nil {
		return "", err
	}
	return e.text, nil
}

// ReplaceElementText returns raw with the content of the first element
// named local replaced by text. Everything outside that element's content,
// including the encoding and byte order mark, is preserved.
func ReplaceElementText(raw []byte, local, text string) ([]byte, error) {
	part, err := decodePart(raw)
	if err != nil {
		return nil, err
	}
	e, err := part.find(local)
	if err != nil {
		return nil, err
	}
	part.setText(e, text)
	return part.bytes()
}
