// Package frontmatter splits module files into a YAML metadata block and a
// markdown body, and joins them back together.
//
// A file with metadata looks like this:
//
//	---
//	title: Einleitung
//	kapitel: 1
//	---
//
//	Body text.
//
// Decoded values follow the JSON data model (float64 numbers, []any lists,
// map[string]any objects) so that metadata received over the API and metadata
// read from disk compare equal.
package frontmatter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const delim = "---"

var (
	// ErrUnterminated is returned when a file opens a metadata block but never closes it.
	ErrUnterminated = errors.New("frontmatter: unterminated metadata block")
	// ErrMalformed is returned when the metadata block is not a YAML mapping.
	ErrMalformed = errors.New("frontmatter: malformed metadata block")
)

// Decode separates the metadata block from the body. Text that does not start
// with a delimiter line has no metadata: the result is an empty map and the
// whole text as body.
func Decode(data []byte) (map[string]any, string, error) {
	text := string(data)

	firstEnd := strings.IndexByte(text, '\n')
	if firstEnd < 0 || strings.TrimRight(text[:firstEnd], "\r") != delim {
		return map[string]any{}, text, nil
	}

	start := firstEnd + 1
	pos := start
	for pos <= len(text) {
		end := strings.IndexByte(text[pos:], '\n')
		line, next := text[pos:], len(text)
		if end >= 0 {
			line, next = text[pos:pos+end], pos+end+1
		}
		if strings.TrimRight(line, "\r") == delim {
			meta, err := decodeBlock(text[start:pos])
			if err != nil {
				return nil, "", err
			}
			return meta, trimBlankLine(text[next:]), nil
		}
		if end < 0 {
			break
		}
		pos = next
	}
	return nil, "", ErrUnterminated
}

// Encode renders metadata and body into the on-disk format. The metadata block
// is always written, even when empty, so Decode(Encode(m, b)) returns b intact.
func Encode(meta map[string]any, body string) ([]byte, error) {
	var sb strings.Builder
	sb.WriteString(delim + "\n")
	if len(meta) > 0 {
		out, err := yaml.Marshal(meta)
		if err != nil {
			return nil, fmt.Errorf("frontmatter: encode: %w", err)
		}
		sb.Write(out)
	}
	sb.WriteString(delim + "\n\n")
	sb.WriteString(body)
	return []byte(sb.String()), nil
}

func decodeBlock(block string) (map[string]any, error) {
	var raw map[string]any
	if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	meta := make(map[string]any, len(raw))
	for k, v := range raw {
		meta[k] = normalize(v)
	}
	return meta, nil
}

// trimBlankLine drops the single blank line that separates the block from the body.
func trimBlankLine(s string) string {
	if strings.HasPrefix(s, "\r\n") {
		return s[2:]
	}
	return strings.TrimPrefix(s, "\n")
}

func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	default:
		return v
	}
}
