package game

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// IntField is one bounded integer field of a move schema.
type IntField struct {
	Name string
	Min  int
	Max  int
}

// MoveSchema declares the structured output a game expects from the model.
// It drives both the format instructions in the prompt and the parser's
// acceptance criteria: a field outside its bounds is a parse failure, not
// a legality failure.
type MoveSchema struct {
	Fields []IntField
	// Reasoning marks whether prompts ask the model for a short
	// justification alongside the move.
	Reasoning bool
}

// Instructions renders the format block embedded in every prompt.
func (s MoveSchema) Instructions() string {
	var b strings.Builder
	b.WriteString("Respond with a single JSON object and nothing else, in exactly this format:\n")
	b.WriteString(`{"move": {`)
	for i, f := range s.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, `"%s": <integer %d-%d>`, f.Name, f.Min, f.Max)
	}
	b.WriteString("}")
	if s.Reasoning {
		b.WriteString(`, "reasoning": "<one short sentence>"`)
	}
	b.WriteString("}")
	return b.String()
}

// ValidateFields checks every declared field against its bounds.
func (s MoveSchema) ValidateFields(fields map[string]int) error {
	for _, f := range s.Fields {
		v, ok := fields[f.Name]
		if !ok {
			return fmt.Errorf("missing field %q", f.Name)
		}
		if v < f.Min || v > f.Max {
			return fmt.Errorf("field %q out of range: %d (allowed %d to %d)", f.Name, v, f.Min, f.Max)
		}
	}
	return nil
}

// ParseModelResponse decodes free-form model output against a schema. It
// accepts the declared {"move": {...}} wrapper as well as a flat object,
// and tolerates prose or code fences around the JSON. The returned fields
// are schema-validated; the second value is the optional reasoning text.
func ParseModelResponse(schema MoveSchema, text string) (map[string]int, string, error) {
	obj, ok := extractObject(text)
	if !ok {
		return nil, "", fmt.Errorf("response contains no JSON object")
	}

	var payload struct {
		Move      map[string]any `json:"move"`
		Reasoning string         `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return nil, "", fmt.Errorf("malformed JSON: %w", err)
	}

	src := payload.Move
	if src == nil {
		var flat map[string]any
		if err := json.Unmarshal([]byte(obj), &flat); err != nil {
			return nil, "", fmt.Errorf("malformed JSON: %w", err)
		}
		if r, ok := flat["reasoning"].(string); ok {
			payload.Reasoning = r
		}
		src = flat
	}

	fields := make(map[string]int, len(schema.Fields))
	for _, f := range schema.Fields {
		v, ok := src[f.Name]
		if !ok {
			return nil, "", fmt.Errorf("missing field %q", f.Name)
		}
		n, ok := v.(float64)
		if !ok || n != math.Trunc(n) {
			return nil, "", fmt.Errorf("field %q is not an integer", f.Name)
		}
		fields[f.Name] = int(n)
	}
	if err := schema.ValidateFields(fields); err != nil {
		return nil, "", err
	}
	return fields, payload.Reasoning, nil
}

// extractObject returns the first balanced JSON object in text. Models
// often wrap their answer in prose or a code fence, so the parser scans
// rather than unmarshalling the whole response.
func extractObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
