package domain

import (
	"strings"

	apperrors "github.com/Altair788/DigitalBazaar/pkg/errors"
)

// Per-field node checks. Each is independently callable; ValidateNodePayload
// runs them over a partial payload in declaration order and stops at the
// first failure.

// ValidateNodeName fails on an empty name or fewer than 2 trimmed characters.
func ValidateNodeName(name string) error {
	if len([]rune(strings.TrimSpace(name))) < 2 {
		return apperrors.InvalidInput("name must be at least 2 characters")
	}
	return nil
}

// ValidateNodeType fails if the value is not one of the known variants.
func ValidateNodeType(nodeType string) error {
	if !IsValidNodeType(nodeType) {
		return apperrors.InvalidInput("node_type must be one of: factory, retail, individual")
	}
	return nil
}

// ValidateNodeEmail requires a non-empty value containing an @. Structural
// check only, not full RFC validation.
func ValidateNodeEmail(email string) error {
	if email == "" || !strings.Contains(email, "@") {
		return apperrors.InvalidInput("email must contain @")
	}
	return nil
}

// NormalizeNodePhone strips spaces, hyphens, dots, and parentheses and
// returns the remaining digits with an optional leading +. Empty input stays
// empty: phone is optional. Fails when anything else is left over or the
// digit count is outside 7..15.
func NormalizeNodePhone(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}

	var b strings.Builder
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return "", apperrors.InvalidInput("phone contains invalid characters")
		}
	}

	normalized := b.String()
	digits := strings.TrimPrefix(normalized, "+")
	if len(digits) < 7 || len(digits) > 15 {
		return "", apperrors.InvalidInput("phone must contain 7 to 15 digits")
	}
	return normalized, nil
}

// ValidateNodePhone accepts an empty value and otherwise requires the value
// to normalize cleanly.
func ValidateNodePhone(phone string) error {
	_, err := NormalizeNodePhone(phone)
	return err
}

// ValidateNodeCountry fails on an empty value or fewer than 2 trimmed characters.
func ValidateNodeCountry(country string) error {
	if len([]rune(strings.TrimSpace(country))) < 2 {
		return apperrors.InvalidInput("country must be at least 2 characters")
	}
	return nil
}

// ValidateNodeCity fails on an empty value or fewer than 2 trimmed characters.
func ValidateNodeCity(city string) error {
	if len([]rune(strings.TrimSpace(city))) < 2 {
		return apperrors.InvalidInput("city must be at least 2 characters")
	}
	return nil
}

// ValidateNodeStreet fails only when a value is present and shorter than
// 2 trimmed characters. Empty is fine: street is optional.
func ValidateNodeStreet(street string) error {
	if street == "" {
		return nil
	}
	if len([]rune(strings.TrimSpace(street))) < 2 {
		return apperrors.InvalidInput("street must be at least 2 characters")
	}
	return nil
}

// ValidateNodeHouseNumber fails on an empty or blank value.
func ValidateNodeHouseNumber(houseNumber string) error {
	if strings.TrimSpace(houseNumber) == "" {
		return apperrors.InvalidInput("house_number must not be blank")
	}
	return nil
}

// ValidateNodeDebt accepts any JSON-decoded value and fails if it is not
// numeric or is negative.
func ValidateNodeDebt(v any) error {
	f, err := numericField("debt_to_supplier", v)
	if err != nil {
		return err
	}
	if f < 0 {
		return apperrors.InvalidInput("debt_to_supplier must not be negative")
	}
	return nil
}

// nodeFieldOrder fixes the order in which payload fields are checked.
var nodeFieldOrder = []struct {
	name  string
	check func(v any) error
}{
	{"name", stringCheck("name", ValidateNodeName)},
	{"node_type", stringCheck("node_type", ValidateNodeType)},
	{"email", stringCheck("email", ValidateNodeEmail)},
	{"phone", stringCheck("phone", ValidateNodePhone)},
	{"country", stringCheck("country", ValidateNodeCountry)},
	{"city", stringCheck("city", ValidateNodeCity)},
	{"street", stringCheck("street", ValidateNodeStreet)},
	{"house_number", stringCheck("house_number", ValidateNodeHouseNumber)},
	{"debt_to_supplier", ValidateNodeDebt},
}

func stringCheck(field string, fn func(string) error) func(v any) error {
	return func(v any) error {
		s, err := stringField(field, v)
		if err != nil {
			return err
		}
		return fn(s)
	}
}

// ValidateNodePayload checks only the keys present in the payload, in field
// declaration order, returning the first failure. Absent keys are skipped,
// which supports PATCH-style partial updates.
func ValidateNodePayload(p map[string]any) error {
	for _, f := range nodeFieldOrder {
		v, ok := p[f.name]
		if !ok || v == nil {
			continue
		}
		if err := f.check(v); err != nil {
			return err
		}
	}
	return nil
}
