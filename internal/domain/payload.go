package domain

import (
	"encoding/json"
	"fmt"
	"strconv"

	apperrors "github.com/Altair788/DigitalBazaar/pkg/errors"
)

// Payload helpers coerce values out of JSON-decoded partial payloads
// (map[string]any, decoded with UseNumber). A nil value counts as absent
// for optional fields and is handled by the callers.

func stringField(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", apperrors.InvalidInput(fmt.Sprintf("%s must be a string", field))
	}
	return s, nil
}

func integerField(field string, v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, apperrors.InvalidInput(fmt.Sprintf("%s must be an integer", field))
		}
		return i, nil
	case float64:
		i := int64(n)
		if float64(i) != n {
			return 0, apperrors.InvalidInput(fmt.Sprintf("%s must be an integer", field))
		}
		return i, nil
	default:
		return 0, apperrors.InvalidInput(fmt.Sprintf("%s must be an integer", field))
	}
}

func numericField(field string, v any) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, apperrors.InvalidInput(fmt.Sprintf("%s must be numeric", field))
		}
		return f, nil
	case float64:
		return n, nil
	case string:
		// Decimal amounts are also accepted as strings, e.g. "150.50".
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, apperrors.InvalidInput(fmt.Sprintf("%s must be numeric", field))
		}
		return f, nil
	default:
		return 0, apperrors.InvalidInput(fmt.Sprintf("%s must be numeric", field))
	}
}
