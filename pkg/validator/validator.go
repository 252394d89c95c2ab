package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/shopspring/decimal"
)

var (
	ProductNameRegex = regexp.MustCompile("^[a-zA-Z0-9 -]+$")
)

// Rule is a single field constraint. Tag uses go-playground validator syntax.
type Rule struct {
	Field   string
	Value   any
	Tag     string
	Message string
}

// Validatable is implemented by requests that declare their own ordered rules.
type Validatable interface {
	Rules() []Rule
}

// Validator is a validator that validates the given request.
type Validator interface {
	// Validate evaluates the request rules in order and returns FieldErrors on violation.
	Validate(r Validatable) error
}

type DefaultValidator struct {
	v        *validator.Validate
	failFast bool
}

type Option func(*DefaultValidator)

// WithFailFast stops validation at the first violated rule of a request.
// Without it every field is checked and the first violation per field is kept.
func WithFailFast(failFast bool) Option {
	return func(v *DefaultValidator) {
		v.failFast = failFast
	}
}

// NewDefaultValidator creates a new default validator.
// It returns a new DefaultValidator and an error if the validator registration fails.
func NewDefaultValidator(opts ...Option) (*DefaultValidator, error) {
	v := validator.New()

	// decimals reach the validators in scientific notation, which never expands the exponent
	v.RegisterCustomTypeFunc(decimalString, decimal.Decimal{})

	// Register custom validators
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		return nil, fmt.Errorf("register notblank validator: %w", err)
	}

	if err := v.RegisterValidation("productname", validateProductName); err != nil {
		return nil, fmt.Errorf("register productname validator: %w", err)
	}

	if err := v.RegisterValidation("decimalmin", validateDecimalMin); err != nil {
		return nil, fmt.Errorf("register decimalmin validator: %w", err)
	}

	if err := v.RegisterValidation("digits", validateDigits); err != nil {
		return nil, fmt.Errorf("register digits validator: %w", err)
	}

	dv := &DefaultValidator{v: v}
	for _, opt := range opts {
		opt(dv)
	}

	return dv, nil
}

func (v DefaultValidator) Validate(r Validatable) error {
	var errs FieldErrors
	for _, rule := range r.Rules() {
		if errs.Has(rule.Field) {
			continue
		}

		err := v.v.Var(rule.Value, rule.Tag)
		if err == nil {
			continue
		}

		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return fmt.Errorf("validate field %s with %q: %w", rule.Field, rule.Tag, err)
		}

		errs = append(errs, FieldError{Field: rule.Field, Message: rule.Message})
		if v.failFast {
			break
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// FieldError is a violated rule of a single field.
type FieldError struct {
	Field   string
	Message string
}

// FieldErrors lists violations in rule order, at most one per field.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field already has a violation.
func (fe FieldErrors) Has(field string) bool {
	for _, e := range fe {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Map returns the violations keyed by field name.
func (fe FieldErrors) Map() map[string]string {
	m := make(map[string]string, len(fe))
	for _, e := range fe {
		m[e.Field] = e.Message
	}
	return m
}

// IsValidationError checks if the given error carries field violations.
func IsValidationError(err error) bool {
	var fe FieldErrors
	return errors.As(err, &fe)
}

// decimalString renders d as "<coefficient>e<exponent>". Its length is bounded
// by the coefficient, whatever the exponent.
func decimalString(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.Coefficient().String() + "e" + strconv.FormatInt(int64(d.Exponent()), 10)
	}
	return nil
}

func validateProductName(fl validator.FieldLevel) bool {
	return ProductNameRegex.MatchString(fl.Field().String())
}

func validateDecimalMin(fl validator.FieldLevel) bool {
	value, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}

	minValue, err := decimal.NewFromString(fl.Param())
	if err != nil {
		panic(fmt.Sprintf("invalid decimalmin param %q: %v", fl.Param(), err))
	}

	return compareDecimals(value, minValue) >= 0
}

// validateDigits checks the integer and fraction digit counts of a decimal,
// param format is "<integer>.<fraction>". Trailing fraction zeros do not count.
func validateDigits(fl validator.FieldLevel) bool {
	maxInteger, maxFraction, err := parseDigitsParam(fl.Param())
	if err != nil {
		panic(err)
	}

	value, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}

	integer, fraction := countDigits(value)
	return integer <= int64(maxInteger) && fraction <= int64(maxFraction)
}

func parseDigitsParam(param string) (int, int, error) {
	intPart, fracPart, ok := strings.Cut(param, ".")
	if !ok {
		return 0, 0, fmt.Errorf("invalid digits param %q", param)
	}

	maxInteger, err := strconv.Atoi(intPart)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid digits param %q: %w", param, err)
	}

	maxFraction, err := strconv.Atoi(fracPart)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid digits param %q: %w", param, err)
	}

	return maxInteger, maxFraction, nil
}

// countDigits returns the integer and fraction digit counts of d from its
// coefficient and exponent. Trailing zeros of the coefficient are dropped first.
func countDigits(d decimal.Decimal) (integer, fraction int64) {
	coefficient := strings.TrimPrefix(d.Coefficient().String(), "-")
	if coefficient == "0" {
		return 0, 0
	}

	significant := strings.TrimRight(coefficient, "0")
	exponent := int64(d.Exponent()) + int64(len(coefficient)-len(significant))

	if exponent < 0 {
		fraction = -exponent
	}
	integer = max(int64(len(significant))+exponent, 0)

	return integer, fraction
}

// compareDecimals orders a and b like Cmp, but only rescales when both have
// the same magnitude so a huge exponent gap is never materialized.
func compareDecimals(a, b decimal.Decimal) int {
	if a.Sign() != b.Sign() {
		return cmpInt64(int64(a.Sign()), int64(b.Sign()))
	}
	if a.Sign() == 0 {
		return 0
	}

	if ma, mb := magnitude(a), magnitude(b); ma != mb {
		c := cmpInt64(ma, mb)
		if a.Sign() < 0 {
			c = -c
		}
		return c
	}

	return a.Cmp(b)
}

// magnitude is the position of the most significant digit of a non-zero d.
func magnitude(d decimal.Decimal) int64 {
	return int64(d.NumDigits()) + int64(d.Exponent())
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
