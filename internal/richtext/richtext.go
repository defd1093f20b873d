// Package richtext holds the opaque rich-content payload questions and
// choices carry, plus a plain-text renderer for it. Grading only ever needs
// the plain text; the authoring UI owns the full content model.
package richtext

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

// Content is an opaque rich-text value, stored verbatim as JSON.
type Content []byte

// Text builds a Content holding a plain string.
func Text(s string) Content {
	b, _ := json.Marshal(s)
	return b
}

func (c Content) MarshalJSON() ([]byte, error) {
	if len(c) == 0 {
		return []byte("null"), nil
	}
	return c, nil
}

func (c *Content) UnmarshalJSON(data []byte) error {
	*c = append((*c)[0:0], data...)
	return nil
}

func (c Content) Value() (driver.Value, error) {
	if len(c) == 0 {
		return nil, nil
	}
	return string(c), nil
}

func (c *Content) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*c = nil
		return nil
	case []byte:
		*c = append((*c)[0:0], v...)
		return nil
	case string:
		*c = Content(v)
		return nil
	default:
		return errors.New("richtext: unsupported scan source")
	}
}

// Plain is a method form of the package-level Plain.
func (c Content) Plain() string {
	return Plain(c)
}

// Plain renders the plain-text form of a rich-content value. It understands a
// bare JSON string, a node object carrying "text" and/or "children", and an
// array of either. Anything unrecognized renders as the empty string; this
// never fails.
func Plain(c Content) string {
	if len(c) == 0 {
		return ""
	}
	var decoded any
	if err := json.Unmarshal(c, &decoded); err != nil {
		return ""
	}
	var sb strings.Builder
	flatten(decoded, &sb)
	return strings.TrimSpace(sb.String())
}

func flatten(node any, sb *strings.Builder) {
	switch v := node.(type) {
	case string:
		writeSeparated(sb, v)
	case []any:
		for _, child := range v {
			flatten(child, sb)
		}
	case map[string]any:
		if text, ok := v["text"].(string); ok {
			writeSeparated(sb, text)
		}
		for _, key := range []string{"children", "content", "blocks"} {
			if children, ok := v[key].([]any); ok {
				for _, child := range children {
					flatten(child, sb)
				}
			}
		}
	}
}

func writeSeparated(sb *strings.Builder, s string) {
	if s == "" {
		return
	}
	if sb.Len() > 0 {
		sb.WriteByte(' ')
	}
	sb.WriteString(s)
}
