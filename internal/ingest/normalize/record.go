package normalize

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Record is a decoded XML element: keys are child element names, values are
// strings (text-only children), nested Records, []any (repeated children), or
// nil (empty elements such as <cosponsors/>).
type Record map[string]any

// DecodeXML decodes a bill-status document into a generic Record tree.
// Repeated sibling elements collect into a list under their shared name;
// attributes are discarded.
func DecodeXML(r io.Reader) (Record, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("decode xml: no root element")
		}
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		value, err := decodeElement(dec)
		if err != nil {
			return nil, fmt.Errorf("decode xml: %w", err)
		}
		root := Record{}
		setChild(root, start.Name.Local, value)
		return root, nil
	}
}

// decodeElement consumes tokens until the matching end element and returns the
// element's value: a Record when it has child elements, a string when it holds
// only character data, nil when it is empty.
func decodeElement(dec *xml.Decoder) (any, error) {
	var (
		children Record
		text     strings.Builder
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			value, err := decodeElement(dec)
			if err != nil {
				return nil, err
			}
			if children == nil {
				children = Record{}
			}
			setChild(children, t.Name.Local, value)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if children != nil {
				return children, nil
			}
			if s := strings.TrimSpace(text.String()); s != "" {
				return s, nil
			}
			return nil, nil
		}
	}
}

// setChild inserts a child value, promoting repeated names into a list.
func setChild(rec Record, name string, value any) {
	existing, ok := rec[name]
	if !ok {
		rec[name] = value
		return
	}
	if list, ok := existing.([]any); ok {
		rec[name] = append(list, value)
		return
	}
	rec[name] = []any{existing, value}
}
