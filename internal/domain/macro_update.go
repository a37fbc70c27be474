package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type FieldReason string

const (
	ReasonMissing    FieldReason = "missing"
	ReasonNotInteger FieldReason = "not_integer"
	ReasonNegative   FieldReason = "negative"
	ReasonEmpty      FieldReason = "empty"
	ReasonNotString  FieldReason = "not_string"
	ReasonMalformed  FieldReason = "malformed"
	ReasonOverflow   FieldReason = "overflow"
)

type FieldError struct {
	Field  string      `json:"field"`
	Reason FieldReason `json:"reason"`
}

func (e FieldError) Error() string {
	switch e.Reason {
	case ReasonMissing:
		return fmt.Sprintf("Parameter '%s' is missing in the request body", e.Field)
	case ReasonNotInteger:
		return fmt.Sprintf("Parameter '%s' must be an integer", e.Field)
	case ReasonNegative:
		return fmt.Sprintf("Parameter '%s' must not be negative", e.Field)
	case ReasonEmpty:
		return fmt.Sprintf("Parameter '%s' must not be empty", e.Field)
	case ReasonNotString:
		return fmt.Sprintf("Parameter '%s' must be a string", e.Field)
	case ReasonOverflow:
		return fmt.Sprintf("Parameter '%s' would push the daily total out of range", e.Field)
	default:
		return "Request body must be a JSON object"
	}
}

// ValidationError lists every problem found in a request, in check order.
// Its message reports only the first one.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "invalid request"
	}
	return e.Errors[0].Error()
}

func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		fields = append(fields, fe.Field)
	}
	return fields
}

type fieldRule struct {
	name  string
	apply func(u *MacroUpdate, raw any) (FieldReason, bool)
}

// Required fields of a macro update, in the order they are checked.
var macroUpdateRules = []fieldRule{
	{"calories", amountRule(func(u *MacroUpdate, v int64) { u.Calories = v })},
	{"fat", amountRule(func(u *MacroUpdate, v int64) { u.Fat = v })},
	{"protein", amountRule(func(u *MacroUpdate, v int64) { u.Protein = v })},
	{"carbs", amountRule(func(u *MacroUpdate, v int64) { u.Carbs = v })},
	{"id", userIDRule},
}

// ParseMacroUpdate decodes and validates a macro update request body.
func ParseMacroUpdate(body []byte) (MacroUpdate, error) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return MacroUpdate{}, &ValidationError{Errors: []FieldError{{Field: "body", Reason: ReasonMalformed}}}
	}

	var (
		u    MacroUpdate
		errs []FieldError
	)
	for _, rule := range macroUpdateRules {
		v, ok := raw[rule.name]
		if !ok || v == nil {
			errs = append(errs, FieldError{Field: rule.name, Reason: ReasonMissing})
			continue
		}
		if reason, ok := rule.apply(&u, v); !ok {
			errs = append(errs, FieldError{Field: rule.name, Reason: reason})
		}
	}

	if len(errs) > 0 {
		return MacroUpdate{}, &ValidationError{Errors: errs}
	}
	return u, nil
}

func amountRule(set func(u *MacroUpdate, v int64)) func(u *MacroUpdate, raw any) (FieldReason, bool) {
	return func(u *MacroUpdate, raw any) (FieldReason, bool) {
		n, ok := parseInteger(raw)
		if !ok {
			return ReasonNotInteger, false
		}
		if n < 0 {
			return ReasonNegative, false
		}
		set(u, n)
		return "", true
	}
}

func userIDRule(u *MacroUpdate, raw any) (FieldReason, bool) {
	var id string
	switch v := raw.(type) {
	case string:
		id = strings.TrimSpace(v)
	case json.Number:
		id = v.String()
	default:
		return ReasonNotString, false
	}
	if id == "" {
		return ReasonEmpty, false
	}
	u.UserID = id
	return "", true
}

// parseInteger accepts JSON numbers (truncated toward zero) and strings
// with a leading integer such as "42" or " 42g".
func parseInteger(raw any) (int64, bool) {
	switch v := raw.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		f, err := v.Float64()
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f >= 1<<63 || f < -(1<<63) {
			return 0, false
		}
		return int64(f), true
	case string:
		return leadingInteger(v)
	default:
		return 0, false
	}
}

func leadingInteger(s string) (int64, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
