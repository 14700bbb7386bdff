package games

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MJE43/pf-verify-go/internal/engine"
)

func unsupported(format string, args ...any) error {
	return fmt.Errorf("%w: %s", engine.ErrUnsupportedParameter, fmt.Sprintf(format, args...))
}

// intParam reads params[key] as an integer. JSON numbers arrive as float64
// and query strings as text; both are accepted when they hold a whole number.
func intParam(params map[string]any, key string, def int) (int, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return def, nil
	}

	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, unsupported("%s must be a whole number, got %v", key, v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, unsupported("invalid %s value %q", key, v)
		}
		return n, nil
	default:
		return 0, unsupported("unsupported type for %s: %T", key, raw)
	}
}

func floatParam(params map[string]any, key string, def float64) (float64, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return def, nil
	}

	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, unsupported("invalid %s value %q", key, v)
		}
		return f, nil
	default:
		return 0, unsupported("unsupported type for %s: %T", key, raw)
	}
}

func stringParam(params map[string]any, key, def string) (string, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return def, nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", unsupported("unsupported type for %s: %T", key, raw)
	}
	return s, nil
}

// labelParam reads a table key such as a difficulty or risk level.
// Labels are matched case-insensitively.
func labelParam(params map[string]any, key, def string) (string, error) {
	s, err := stringParam(params, key, def)
	if err != nil {
		return "", err
	}
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return def, nil
	}
	return s, nil
}

// rtpParam reads the integer return-to-player percentage.
func rtpParam(params map[string]any) (int, error) {
	return intParam(params, "rtp", DefaultRTP)
}

// DefaultRTP is used when no rtp parameter is supplied.
const DefaultRTP = 97
