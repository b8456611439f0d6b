// Package validator checks struct fields against `validate` tags.
//
// Supported rules, separated by "|":
//
//	required    string must not be blank
//	maxlen:N    string must be at most N characters
//	regexp:RE   whole string must match RE
//	nested      validate the struct field recursively
//
// A nil pointer field is treated as not supplied and skips all its rules.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	tagNameValidate = "validate"
	tagValueNested  = "nested"
	tagValueReq     = "required"
	tagValueMaxLen  = "maxlen"
	tagValueRegexp  = "regexp"
)

var (
	ErrValidateRequired       = errors.New("value is required")
	ErrValidateTooLong        = errors.New("value is too long")
	ErrValidateNotMatchRegexp = errors.New("does not match regexp")
	ErrIncorrectTagValue      = errors.New("incorrect tag value")
	ErrIncorrectTag           = errors.New("incorrect tag")
	ErrIncorrectStruct        = errors.New("incorrect struct")
)

type ValidationError struct {
	Field string
	Err   error
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Err)
}

func (v ValidationError) Unwrap() error {
	return v.Err
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	sort.Slice(v, func(i, j int) bool {
		if v[i].Field == v[j].Field {
			return v[i].Err.Error() < v[j].Err.Error()
		}
		return v[i].Field < v[j].Field
	})
	parts := make([]string, 0, len(v))
	for _, validationError := range v {
		parts = append(parts, validationError.Error())
	}
	return strings.Join(parts, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(v))
	for _, e := range v {
		errs = append(errs, e)
	}
	return errs
}

type rule struct {
	name  string
	value string
}

// Validate returns ValidationErrors when field values break their rules and
// a plain error when the tags themselves are malformed.
func Validate(v interface{}) error {
	if v == nil {
		return ErrIncorrectStruct
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return ErrIncorrectStruct
	}
	t := rv.Type()

	var validatorErrors ValidationErrors
	for i := 0; i < rv.NumField(); i++ {
		rules, err := parseValidateTag(t.Field(i).Tag)
		if err != nil {
			return fmt.Errorf("field %s: %w", t.Field(i).Name, err)
		}
		if len(rules) == 0 {
			continue
		}

		field := rv.Field(i)
		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				continue
			}
			field = field.Elem()
		}

		if rules[0].name == tagValueNested {
			err = Validate(field.Interface())
			var vErrors ValidationErrors
			if errors.As(err, &vErrors) {
				validatorErrors = append(validatorErrors, vErrors...)
				continue
			}
			if err != nil {
				return err
			}
			continue
		}

		if field.Kind() != reflect.String {
			return fmt.Errorf("field %s: %w", t.Field(i).Name, ErrIncorrectTag)
		}
		validatorErrors, err = validateString(t.Field(i).Name, field.String(), rules, validatorErrors)
		if err != nil {
			return err
		}
	}

	if len(validatorErrors) == 0 {
		return nil
	}
	return validatorErrors
}

func validateString(fieldName, val string, rules []rule, errs ValidationErrors) (ValidationErrors, error) {
	for _, r := range rules {
		switch r.name {
		case tagValueReq:
			if strings.TrimSpace(val) == "" {
				errs = append(errs, ValidationError{Field: fieldName, Err: ErrValidateRequired})
			}
		case tagValueMaxLen:
			limit, err := strconv.Atoi(r.value)
			if err != nil {
				return nil, ErrIncorrectTagValue
			}
			if utf8.RuneCountInString(val) > limit {
				errs = append(errs, ValidationError{Field: fieldName, Err: ErrValidateTooLong})
			}
		case tagValueRegexp:
			re, err := regexp.Compile(r.value)
			if err != nil {
				return nil, ErrIncorrectTagValue
			}
			if match := re.FindString(val); len(match) != len(val) {
				errs = append(errs, ValidationError{Field: fieldName, Err: ErrValidateNotMatchRegexp})
			}
		}
	}
	return errs, nil
}

func parseValidateTag(tag reflect.StructTag) ([]rule, error) {
	val := tag.Get(tagNameValidate)
	if val == "" {
		return nil, nil
	}

	rules := make([]rule, 0)
	for _, validator := range strings.Split(val, "|") {
		parts := strings.SplitN(validator, ":", 2)
		switch parts[0] {
		case tagValueNested:
			// Ignore other validators if nested
			return []rule{{name: tagValueNested}}, nil
		case tagValueReq:
			rules = append(rules, rule{name: tagValueReq})
		case tagValueMaxLen, tagValueRegexp:
			if len(parts) != 2 {
				return nil, ErrIncorrectTag
			}
			rules = append(rules, rule{name: parts[0], value: parts[1]})
		default:
			return nil, ErrIncorrectTag
		}
	}
	return rules, nil
}
