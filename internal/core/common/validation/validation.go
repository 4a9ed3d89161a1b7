// Package validation runs go-playground/validator tags against single values
// and collects one message per field, the way the console forms show them.
package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"unicode/utf16"

	"github.com/frahmantamala/access-admin/internal"
	"github.com/go-playground/validator/v10"
)

const (
	TagNotBlank   = "notblank"
	TagBasicEmail = "basic_email"
	// TagMaxUTF16 bounds a string by UTF-16 code units, the unit the console's
	// length limits were written in. A character outside the BMP counts twice.
	TagMaxUTF16 = "max_utf16"
)

var basicEmail = regexp.MustCompile(`\S+@\S+\.\S+`)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validate returns the shared validator with the console's custom tags
// registered.
func Validate() *validator.Validate {
	once.Do(func() {
		instance = validator.New()
		_ = instance.RegisterValidation(TagNotBlank, func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = instance.RegisterValidation(TagBasicEmail, func(fl validator.FieldLevel) bool {
			return basicEmail.MatchString(fl.Field().String())
		})
		_ = instance.RegisterValidation(TagMaxUTF16, func(fl validator.FieldLevel) bool {
			limit, err := strconv.Atoi(fl.Param())
			if err != nil {
				return false
			}
			return UTF16Len(fl.Field().String()) <= limit
		})
	})
	return instance
}

// UTF16Len is the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// Errors maps a field name to the message of its first failing rule. An
// empty map means the candidate is valid.
type Errors map[string]string

func (e Errors) Valid() bool {
	return len(e) == 0
}

// ToAppError converts the messages into a validation AppError with one
// detail per field, ordered by field name. It returns nil when e is empty.
func (e Errors) ToAppError() *internal.AppError {
	if len(e) == 0 {
		return nil
	}
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	details := make([]internal.ValidationError, 0, len(fields))
	for _, f := range fields {
		details = append(details, internal.ValidationError{
			Field:   f,
			Message: e[f],
			Code:    string(internal.ErrCodeValidationFailed),
		})
	}
	return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).
		WithDetails(internal.ValidationErrors{Errors: details})
}

type rule struct {
	tag     string
	message string
}

type FieldValidator struct {
	FieldName string
	Value     interface{}
	rules     []rule
}

type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{fields: make([]*FieldValidator, 0)}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{FieldName: name, Value: value}
	v.fields = append(v.fields, fv)
	return fv
}

// Rule adds a validator tag (for example "required" or "max=200") and the
// message reported when it fails. Rules run in the order added.
func (fv *FieldValidator) Rule(tag, message string) *FieldValidator {
	fv.rules = append(fv.rules, rule{tag: tag, message: message})
	return fv
}

func (fv *FieldValidator) Required(message string) *FieldValidator {
	return fv.Rule("required", message)
}

func (fv *FieldValidator) NotBlank(message string) *FieldValidator {
	return fv.Rule(TagNotBlank, message)
}

func (fv *FieldValidator) Email(message string) *FieldValidator {
	return fv.Rule(TagBasicEmail, message)
}

func (fv *FieldValidator) MaxLength(limit int, message string) *FieldValidator {
	return fv.Rule(fmt.Sprintf("%s=%d", TagMaxUTF16, limit), message)
}

// Errors evaluates every field and keeps the first failing rule's message.
func (v *ValidationBuilder) Errors() Errors {
	out := make(Errors)
	validate := Validate()
	for _, field := range v.fields {
		for _, r := range field.rules {
			if err := validate.Var(field.Value, r.tag); err != nil {
				out[field.FieldName] = r.message
				break
			}
		}
	}
	return out
}

// Validate is Errors converted to an AppError, nil when every rule passes.
func (v *ValidationBuilder) Validate() *internal.AppError {
	return v.Errors().ToAppError()
}
