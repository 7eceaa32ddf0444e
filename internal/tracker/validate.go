package tracker

import (
	"fmt"

	"github.com/trackops/issuegate/internal/domain"
)

// Param validation helpers shared by the tool validators. All failures are
// INVALID_ARGUMENTS errors naming the offending field.

func requireString(params domain.Params, key string) error {
	v, ok := params[key]
	if !ok {
		return domain.ErrInvalidArguments(fmt.Sprintf("missing required parameter: %s", key))
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return domain.ErrInvalidArguments(fmt.Sprintf("parameter %s must be a non-empty string", key))
	}
	return nil
}

func optionalString(params domain.Params, key string) error {
	v, ok := params[key]
	if !ok {
		return nil
	}
	if _, ok := v.(string); !ok {
		return domain.ErrInvalidArguments(fmt.Sprintf("parameter %s must be a string", key))
	}
	return nil
}

// optionalInt accepts JSON numbers (which decode as float64) and ints.
func optionalInt(params domain.Params, key string, min, max int) error {
	v, ok := params[key]
	if !ok {
		return nil
	}
	var n int
	switch x := v.(type) {
	case float64:
		if x != float64(int(x)) {
			return domain.ErrInvalidArguments(fmt.Sprintf("parameter %s must be an integer", key))
		}
		n = int(x)
	case int:
		n = x
	default:
		return domain.ErrInvalidArguments(fmt.Sprintf("parameter %s must be an integer", key))
	}
	if n < min || n > max {
		return domain.ErrInvalidArguments(fmt.Sprintf("parameter %s must be between %d and %d", key, min, max))
	}
	return nil
}
