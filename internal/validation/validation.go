// Package validation checks stock creation requests against a configurable
// set of per-field rules written in go-playground/validator tag syntax.
package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vikasavnish/mandacarubroker/internal/models"
)

// Violation is a single field-level validation failure
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Rules maps a request field name (as it appears in JSON) to a validator tag,
// e.g. {"symbol": "notblank,max=10"}.
type Rules map[string]string

// Func evaluates a request and returns every violation found, in field order.
type Func func(req models.StockRequest) []Violation

type field struct {
	name  string
	value func(models.StockRequest) interface{}
}

var fields = []field{
	{"symbol", func(r models.StockRequest) interface{} { return r.Symbol }},
	{"companyName", func(r models.StockRequest) interface{} { return r.CompanyName }},
	{"price", func(r models.StockRequest) interface{} { return r.Price }},
}

// DefaultRules requires a non-blank symbol and company name. Price is free.
func DefaultRules() Rules {
	return Rules{
		"symbol":      "notblank",
		"companyName": "notblank",
	}
}

// ParseRules reads rules from the "field:rule;field:rule" form used in
// configuration. An empty string yields the default rules.
func ParseRules(s string) (Rules, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultRules(), nil
	}

	rules := make(Rules)
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, rule, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("invalid validation rule %q: expected field:rule", entry)
		}
		name = strings.TrimSpace(name)
		rule = strings.TrimSpace(rule)
		if name == "" || rule == "" {
			return nil, fmt.Errorf("invalid validation rule %q: expected field:rule", entry)
		}
		rules[name] = rule
	}
	return rules, nil
}

// Compile turns rules into a Func. Unknown fields, unknown validator tags and
// malformed tag parameters are reported here rather than at request time.
func Compile(rules Rules) (Func, error) {
	v := validator.New()
	if err := v.RegisterValidation("notblank", notBlank); err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.name] = true
	}
	for name, rule := range rules {
		if !known[name] {
			return nil, fmt.Errorf("unknown stock field %q in validation rules", name)
		}
		if err := checkRule(v, name, rule); err != nil {
			return nil, err
		}
	}

	// copy so later changes to the caller's map do not leak in
	compiled := make(Rules, len(rules))
	for name, rule := range rules {
		compiled[name] = rule
	}

	return func(req models.StockRequest) []Violation {
		var violations []Violation
		for _, f := range fields {
			rule, ok := compiled[f.name]
			if !ok || rule == "" {
				continue
			}
			err := v.Var(f.value(req), rule)
			if err == nil {
				continue
			}
			if errs, ok := err.(validator.ValidationErrors); ok {
				for _, fe := range errs {
					violations = append(violations, Violation{Field: f.name, Message: message(fe)})
				}
				continue
			}
			violations = append(violations, Violation{Field: f.name, Message: err.Error()})
		}
		return violations
	}, nil
}

// Check runs fn against req and returns an *Error when anything is violated.
func Check(fn Func, req models.StockRequest) error {
	if fn == nil {
		return nil
	}
	if violations := fn(req); len(violations) > 0 {
		return &Error{Violations: violations}
	}
	return nil
}

// Error is returned when a request breaks one or more rules. It carries the
// complete set of violations.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("[%s: %s]", v.Field, v.Message))
	}
	return "Validation failed. Details: " + strings.Join(parts, ", ")
}

// checkRule evaluates every tag of rule on its own against the zero value of
// the field, turning the validator's panic on undefined tags or malformed
// parameters into an error. Tags are tried one at a time because Var stops at
// the first failing tag and would leave the rest unchecked.
func checkRule(v *validator.Validate, name, rule string) error {
	var zero interface{}
	for _, f := range fields {
		if f.name == name {
			zero = f.value(models.StockRequest{})
		}
	}

	for _, group := range strings.Split(rule, ",") {
		for _, tag := range strings.Split(group, "|") {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				return fmt.Errorf("invalid validation rule %q for field %q: empty tag", rule, name)
			}
			if err := checkTag(v, zero, tag); err != nil {
				return fmt.Errorf("invalid validation rule %q for field %q: %v", rule, name, err)
			}
		}
	}
	return nil
}

func checkTag(v *validator.Validate, zero interface{}, tag string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tag %q: %v", tag, r)
		}
	}()
	_ = v.Var(zero, tag)
	return nil
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.String {
		return strings.TrimSpace(field.String()) != ""
	}
	return !field.IsZero()
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "notblank":
		return "must not be blank"
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lt":
		return "must be less than " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "min":
		if isString {
			return "must be at least " + fe.Param() + " characters long"
		}
		return "must be at least " + fe.Param()
	case "max":
		if isString {
			return "must be at most " + fe.Param() + " characters long"
		}
		return "must be at most " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters long"
	case "alphanum":
		return "must contain only letters and digits"
	case "uppercase":
		return "must be upper case"
	case "oneof":
		return "must be one of [" + fe.Param() + "]"
	}
	return fmt.Sprintf("failed the '%s' rule", fe.Tag())
}
