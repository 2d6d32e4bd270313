package device

import "fmt"

// Option accessors with defaulting. YAML decodes numbers as int or
// float64 depending on spelling; the accessors accept either so a
// config may say "baudrate: 9600" or "timeout: 1.5" without the driver
// caring.

// Str returns the string option for key, or def when absent.
func (s Spec) Str(key, def string) string {
	v, ok := s.Options[key]
	if !ok {
		return def
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprintf("%v", v)
}

// StrRequired returns the string option for key, or an error naming the
// stanza when absent.
func (s Spec) StrRequired(key string) (string, error) {
	if _, ok := s.Options[key]; !ok {
		return "", fmt.Errorf("%s %q: missing required option %q", s.Kind, s.Name, key)
	}
	return s.Str(key, ""), nil
}

// Int returns the integer option for key, or def when absent.
func (s Spec) Int(key string, def int) int {
	switch v := s.Options[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// IntRequired returns the integer option for key, or an error naming
// the stanza when absent.
func (s Spec) IntRequired(key string) (int, error) {
	if _, ok := s.Options[key]; !ok {
		return 0, fmt.Errorf("%s %q: missing required option %q", s.Kind, s.Name, key)
	}
	return s.Int(key, 0), nil
}

// Float returns the float option for key, or def when absent.
func (s Spec) Float(key string, def float64) float64 {
	switch v := s.Options[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// Bool returns the boolean option for key, or def when absent.
func (s Spec) Bool(key string, def bool) bool {
	if v, ok := s.Options[key].(bool); ok {
		return v
	}
	return def
}

// IntSlice returns the list option for key as integers, or def when
// absent.
func (s Spec) IntSlice(key string, def []int) []int {
	raw, ok := s.Options[key].([]any)
	if !ok {
		return def
	}
	out := make([]int, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case int:
			out = append(out, v)
		case int64:
			out = append(out, int(v))
		case float64:
			out = append(out, int(v))
		}
	}
	return out
}

// Has reports whether key is present in the stanza.
func (s Spec) Has(key string) bool {
	_, ok := s.Options[key]
	return ok
}
