package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Field is a tri-state patch value: omitted (Set is false), explicit null
// (Set and Null), or a replacement value.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (f *Field[T]) decode(msg json.RawMessage) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(msg), []byte("null")) {
		f.Null = true
		return nil
	}
	return json.Unmarshal(msg, &f.Value)
}

// Ordinal is a chapter or subchapter number. It accepts JSON numbers and strings.
type Ordinal string

func (o *Ordinal) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*o = Ordinal(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected number or string")
	}
	*o = Ordinal(n.String())
	return nil
}

// value returns a float64 for canonical integers so they are written unquoted.
// Anything else, such as "1.10" or "02", stays a string to keep its spelling.
func (o Ordinal) value() any {
	if n, err := strconv.Atoi(string(o)); err == nil && strconv.Itoa(n) == string(o) {
		return float64(n)
	}
	return string(o)
}

// StringList accepts either a JSON array of strings or a single string.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected string or array of strings")
	}
	if s == "" {
		*l = StringList{}
		return nil
	}
	*l = StringList{s}
	return nil
}

// Patch is a partial frontmatter update. Keys are the frontmatter keys.
// Keys not modelled as fields are kept raw in Extra; a raw null removes the key.
type Patch struct {
	Title        Field[string]
	Kapitel      Field[Ordinal]
	Unterkapitel Field[Ordinal]
	Status       Field[string]
	Importance   Field[string]
	Urgency      Field[string]
	Priority     Field[json.RawMessage]
	Tags         Field[StringList]
	Summary      Field[string]
	Quotes       Field[StringList]
	Questions    Field[StringList]
	Extra        map[string]json.RawMessage
}

func (p *Patch) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, msg := range raw {
		var err error
		switch key {
		case "title":
			err = p.Title.decode(msg)
		case "kapitel":
			err = p.Kapitel.decode(msg)
		case "unterkapitel":
			err = p.Unterkapitel.decode(msg)
		case "status":
			err = p.Status.decode(msg)
		case "importance":
			err = p.Importance.decode(msg)
		case "urgency":
			err = p.Urgency.decode(msg)
		case "priority":
			err = p.Priority.decode(msg)
		case "tags":
			err = p.Tags.decode(msg)
		case "summary":
			err = p.Summary.decode(msg)
		case "quotes":
			err = p.Quotes.decode(msg)
		case "questions":
			err = p.Questions.decode(msg)
		default:
			if p.Extra == nil {
				p.Extra = make(map[string]json.RawMessage)
			}
			p.Extra[key] = msg
		}
		if err != nil {
			return fmt.Errorf("frontmatter.%s: %w", key, err)
		}
	}
	return nil
}

// Validate checks enumerated fields. Status aliases are accepted.
func (p Patch) Validate() error {
	if p.Status.Set && !p.Status.Null {
		if err := validation.Validate(NormalizeStatus(p.Status.Value), validation.In(anySlice(Statuses)...)); err != nil {
			return fmt.Errorf("frontmatter.status: %w", err)
		}
	}
	for name, f := range map[string]Field[string]{"importance": p.Importance, "urgency": p.Urgency} {
		if !f.Set || f.Null {
			continue
		}
		if err := validation.Validate(f.Value, validation.In(anySlice(Levels)...)); err != nil {
			return fmt.Errorf("frontmatter.%s: %w", name, err)
		}
	}
	if p.Title.Set && !p.Title.Null {
		if err := validation.Validate(p.Title.Value, validation.Length(0, 500)); err != nil {
			return fmt.Errorf("frontmatter.title: %w", err)
		}
	}
	return nil
}

// Apply merges the patch into meta in place.
func (p Patch) Apply(meta map[string]any) error {
	applyField(meta, "title", p.Title, func(v string) any { return v })
	applyField(meta, "kapitel", p.Kapitel, Ordinal.value)
	applyField(meta, "unterkapitel", p.Unterkapitel, Ordinal.value)
	applyField(meta, "status", p.Status, func(v string) any { return NormalizeStatus(v) })
	applyField(meta, "importance", p.Importance, func(v string) any { return v })
	applyField(meta, "urgency", p.Urgency, func(v string) any { return v })
	applyField(meta, "summary", p.Summary, func(v string) any { return v })
	applyField(meta, "tags", p.Tags, listValue)
	applyField(meta, "quotes", p.Quotes, listValue)
	applyField(meta, "questions", p.Questions, listValue)
	if p.Priority.Set {
		if err := applyRaw(meta, "priority", p.Priority.Value, p.Priority.Null); err != nil {
			return err
		}
	}
	for key, msg := range p.Extra {
		isNull := bytes.Equal(bytes.TrimSpace(msg), []byte("null"))
		if err := applyRaw(meta, key, msg, isNull); err != nil {
			return err
		}
	}
	return nil
}

func applyField[T any](meta map[string]any, key string, f Field[T], conv func(T) any) {
	switch {
	case !f.Set:
	case f.Null:
		delete(meta, key)
	default:
		meta[key] = conv(f.Value)
	}
}

func applyRaw(meta map[string]any, key string, msg json.RawMessage, isNull bool) error {
	if isNull {
		delete(meta, key)
		return nil
	}
	var v any
	if err := json.Unmarshal(msg, &v); err != nil {
		return fmt.Errorf("frontmatter.%s: %w", key, err)
	}
	meta[key] = v
	return nil
}

func listValue(l StringList) any {
	out := make([]any, len(l))
	for i, s := range l {
		out[i] = s
	}
	return out
}

func anySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
