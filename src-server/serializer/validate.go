package serializer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	msgRequired     = "This field is required."
	msgBlank        = "This field may not be blank."
	msgNull         = "This field may not be null."
	msgInvalidEmail = "Enter a valid email address."
	msgInvalidDate  = "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]."
)

// Field name -> messages, rendered as the 400 body.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(fe[field], " "))
	}
	return strings.Join(parts, "; ")
}

// Returned by Decode when the body isn't a JSON object.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "JSON parse error - " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}
	return v
}

// Decodes a JSON object body into dst. An empty body decodes as {}.
func Decode(r io.Reader, dst interface{}) error {
	body, err := io.ReadAll(r)
	if err != nil {
		return &ParseError{Err: err}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &ParseError{Err: err}
	}
	return nil
}

// Runs the struct tags. For partial input only the fields that were sent
// (non-nil pointers and raw messages) are checked.
func validateStruct(in interface{}, partial bool) FieldErrors {
	var err error
	if partial {
		present := presentFields(in)
		err = validate.StructFiltered(in, func(ns []byte) bool {
			name := ns[bytes.LastIndexByte(ns, '.')+1:]
			_, ok := present[string(name)]
			return !ok
		})
	} else {
		err = validate.Struct(in)
	}

	fieldErrors := make(FieldErrors)
	var validationErrors validator.ValidationErrors
	switch {
	case err == nil:
	case errors.As(err, &validationErrors):
		for _, fe := range validationErrors {
			fieldErrors.Add(fe.Field(), message(fe))
		}
	default:
		fieldErrors.Add("non_field_errors", err.Error())
	}
	return fieldErrors
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "notblank":
		return msgBlank
	case "email":
		return msgInvalidEmail
	case "oneof":
		value := fe.Value()
		if p, ok := value.(*string); ok && p != nil {
			value = *p
		}
		return fmt.Sprintf("\"%v\" is not a valid choice.", value)
	}
	return fmt.Sprintf("Failed on the '%s' rule.", fe.Tag())
}

func presentFields(in interface{}) map[string]struct{} {
	present := make(map[string]struct{})
	v := reflect.Indirect(reflect.ValueOf(in))
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if !t.Field(i).IsExported() {
			continue
		}
		f := v.Field(i)
		switch f.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
			if !f.IsNil() {
				present[t.Field(i).Name] = struct{}{}
			}
		}
	}
	return present
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
