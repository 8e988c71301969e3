package ingestion

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of a 422 response's details.errors list.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// validationDetails turns a gin binding error into {"errors": [...]}. Field
// names are the wire names from the json or form tag of obj, which must be a
// pointer to the struct that was bound.
func validationDetails(err error, obj interface{}, source string) map[string]interface{} {
	var fieldErrs []FieldError

	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			fieldErrs = append(fieldErrs, FieldError{
				Field:   wireName(obj, fe.StructField()),
				Message: ruleMessage(fe),
				Type:    fe.Tag(),
			})
		}
	case errors.As(err, &typeErr):
		fieldErrs = append(fieldErrs, FieldError{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			Type:    "type_error",
		})
	case errors.As(err, &syntaxErr):
		fieldErrs = append(fieldErrs, FieldError{
			Field:   source,
			Message: fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset),
			Type:    "json_invalid",
		})
	default:
		fieldErrs = append(fieldErrs, FieldError{
			Field:   source,
			Message: "could not be parsed",
			Type:    "parse_error",
		})
	}

	return map[string]interface{}{"errors": fieldErrs}
}

func wireName(obj interface{}, structField string) string {
	t := reflect.TypeOf(obj)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return structField
	}
	f, ok := t.FieldByName(structField)
	if !ok {
		return structField
	}
	for _, key := range []string{"json", "form"} {
		if name, _, _ := strings.Cut(f.Tag.Get(key), ","); name != "" && name != "-" {
			return name
		}
	}
	return structField
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lt":
		return "must be less than " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
