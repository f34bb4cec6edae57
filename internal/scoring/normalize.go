package scoring

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrMalformedValue is returned when a stored or submitted value cannot be coerced for comparison.
var ErrMalformedValue = errors.New("malformed answer value")

// Value is a normalized answer. The concrete type is one of Choice, Selection, Numeric or
// FreeText, selected by the question type.
type Value interface {
	isValue()
}

// Choice is a single selected option, whitespace-trimmed.
type Choice struct{ Text string }

// Selection is a set of selected options kept as a sorted sequence.
type Selection struct{ Items []string }

// Numeric is a coerced number. NaN never matches.
type Numeric struct{ Number float64 }

// FreeText is lower-cased, trimmed text.
type FreeText struct{ Text string }

func (Choice) isValue()    {}
func (Selection) isValue() {}
func (Numeric) isValue()   {}
func (FreeText) isValue()  {}

// NormalizeKey coerces a stored correct answer for a question of type t. Choice and numeric keys
// use the first element when stored as a sequence.
func NormalizeKey(t QuestionType, raw any) (Value, error) {
	value, err := decode(raw)
	if err != nil {
		return nil, err
	}

	switch t {
	case TypeMultipleChoice, TypeDropdown, TypeRating, TypeNumber:
		if items, ok := value.([]any); ok {
			if len(items) == 0 {
				return nil, fmt.Errorf("%w: empty answer key", ErrMalformedValue)
			}
			value = items[0]
		}
	}

	return normalize(t, value)
}

// NormalizeAnswer coerces a submitted answer for a question of type t.
func NormalizeAnswer(t QuestionType, raw any) (Value, error) {
	value, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return normalize(t, value)
}

func normalize(t QuestionType, value any) (Value, error) {
	switch t {
	case TypeMultipleChoice, TypeDropdown:
		text, err := toText(value)
		if err != nil {
			return nil, err
		}
		return Choice{Text: strings.TrimSpace(text)}, nil
	case TypeCheckbox:
		items, err := toTextSlice(value)
		if err != nil {
			return nil, err
		}
		sort.Strings(items)
		return Selection{Items: items}, nil
	case TypeRating, TypeNumber:
		number, err := toNumber(value)
		if err != nil {
			return nil, err
		}
		return Numeric{Number: number}, nil
	default:
		text, err := toText(value)
		if err != nil {
			return nil, err
		}
		return FreeText{Text: strings.TrimSpace(strings.ToLower(text))}, nil
	}
}

// Matches reports whether a normalized answer equals the normalized key. Values of different
// variants never match.
func Matches(key, answer Value) bool {
	switch k := key.(type) {
	case Choice:
		a, ok := answer.(Choice)
		return ok && a.Text == k.Text
	case Selection:
		a, ok := answer.(Selection)
		if !ok || len(a.Items) != len(k.Items) {
			return false
		}
		for i := range k.Items {
			if a.Items[i] != k.Items[i] {
				return false
			}
		}
		return true
	case Numeric:
		a, ok := answer.(Numeric)
		return ok && a.Number == k.Number
	case FreeText:
		a, ok := answer.(FreeText)
		return ok && a.Text == k.Text
	default:
		return false
	}
}

// IsBlank reports whether a submitted value counts as unanswered: nil, JSON null, an empty
// string or an empty sequence.
func IsBlank(raw any) bool {
	value, err := decode(raw)
	if err != nil {
		return false
	}
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

// decode turns raw input into the generic JSON shapes handled below.
func decode(raw any) (any, error) {
	switch v := raw.(type) {
	case json.RawMessage:
		return decodeJSON(v)
	case []byte:
		return decodeJSON(v)
	case []string:
		items := make([]any, 0, len(v))
		for _, item := range v {
			items = append(items, item)
		}
		return items, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedValue, err)
		}
		return f, nil
	default:
		return raw, nil
	}
}

func decodeJSON(data []byte) (any, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedValue, err)
	}
	return value, nil
}

// toText renders a value the way a loosely typed runtime would stringify it: numbers in shortest
// form, booleans as words, sequences joined by commas with null elements left empty.
func toText(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "null", nil
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case float64:
		return formatNumber(v), nil
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			if item == nil {
				continue
			}
			part, err := toText(item)
			if err != nil {
				return "", err
			}
			parts[i] = part
		}
		return strings.Join(parts, ","), nil
	default:
		return "", fmt.Errorf("%w: unsupported %T", ErrMalformedValue, value)
	}
}

func toTextSlice(value any) ([]string, error) {
	items, ok := value.([]any)
	if !ok {
		text, err := toText(value)
		if err != nil {
			return nil, err
		}
		return []string{text}, nil
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		text, err := toText(item)
		if err != nil {
			return nil, err
		}
		result = append(result, text)
	}
	return result, nil
}

func toNumber(value any) (float64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case float64:
		return v, nil
	case string:
		return parseNumber(v), nil
	case []any:
		text, err := toText(v)
		if err != nil {
			return 0, err
		}
		return parseNumber(text), nil
	default:
		return 0, fmt.Errorf("%w: unsupported %T", ErrMalformedValue, value)
	}
}

// parseNumber converts text to a number: blank is 0, signed Infinity is infinite, anything that
// is not a plain decimal literal is NaN.
func parseNumber(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}

	switch trimmed {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	lower := strings.ToLower(trimmed)
	if strings.ContainsAny(lower, "_xpn") || strings.Contains(lower, "inf") {
		return math.NaN()
	}

	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return math.NaN()
	}
	return parsed
}

func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
