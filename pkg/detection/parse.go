package detection

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/menta2k/grid-locator/pkg/types"
)

// ParseResponse parses raw model text into a typed response. Any failure is
// reported as *types.MalformedResponseError.
func ParseResponse(raw string) (types.Response, error) {
	text := extractObject(raw)
	if !json.Valid([]byte(text)) {
		text = stripTrailingCommas(text)
	}
	resp, err := parseResponse(text)
	if err != nil {
		return nil, &types.MalformedResponseError{Raw: raw, Err: err}
	}
	return resp, nil
}

func parseResponse(text string) (types.Response, error) {
	if text == "" {
		return nil, errors.New("empty response")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("not a JSON object: %w", err)
	}

	if rawElements, ok := fields["elements"]; ok {
		var items []map[string]json.RawMessage
		if err := json.Unmarshal(rawElements, &items); err != nil {
			return nil, fmt.Errorf(`"elements" must be an array of objects: %w`, err)
		}
		out := &types.MultiElement{Elements: make([]types.Element, 0, len(items))}
		for i, item := range items {
			var el types.Element
			if err := decodeField(item, "grid_locations", &el.GridLocations); err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			if err := decodeField(item, "description", &el.Description); err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out.Elements = append(out.Elements, el)
		}
		return out, nil
	}

	if _, ok := fields["grid_location"]; ok {
		out := &types.SingleTarget{}
		if err := decodeField(fields, "grid_location", &out.GridLocation); err != nil {
			return nil, err
		}
		if err := decodeField(fields, "description", &out.Description); err != nil {
			return nil, err
		}
		return out, nil
	}

	return nil, errors.New(`expected an "elements" or "grid_location" key`)
}

func decodeField(obj map[string]json.RawMessage, key string, dst any) error {
	raw, ok := obj[key]
	if !ok {
		return fmt.Errorf("missing %q", key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid %q: %w", key, err)
	}
	return nil
}

// extractObject removes code fences and keeps the outermost {...} when the
// model wrapped its JSON in prose
func extractObject(raw string) string {
	raw = strings.TrimSpace(raw)

	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.TrimSpace(raw)

	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}
	return raw
}

// stripTrailingCommas drops commas that directly precede a closing bracket
// or brace. String literals are copied untouched.
func stripTrailingCommas(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	inString, escaped := false, false
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if inString {
			b.WriteByte(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case ',':
			j := i + 1
			for j < len(text) && strings.IndexByte(" \t\r\n", text[j]) >= 0 {
				j++
			}
			if j < len(text) && (text[j] == '}' || text[j] == ']') {
				continue
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}
