package binding

import (
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// QueryParser binds URL query values to flat structs. Field names come
// from the "query" tag, falling back to the "json" tag, then the
// lowercased field name. A "default" tag supplies values for absent
// parameters. Slices accept repeated parameters or one comma-joined
// value.
type QueryParser struct {
	tagName    string
	defaultTag string
}

func NewQueryParser() *QueryParser {
	return &QueryParser{
		tagName:    "query",
		defaultTag: "default",
	}
}

// Bind parses r's query string into v and validates the result.
func (qp *QueryParser) Bind(r *http.Request, v any) error {
	if err := qp.Parse(r.URL.Query(), v); err != nil {
		return err
	}
	return validateStruct(v)
}

// Parse fills v from already-parsed values, without validation.
func (qp *QueryParser) Parse(values url.Values, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return &BindError{
			Type:    "bind_error",
			Message: "v must be a non-nil pointer",
		}
	}

	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return &BindError{
			Type:    "bind_error",
			Message: "v must be a pointer to struct",
		}
	}

	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		fieldType := rt.Field(i)

		if !field.CanSet() {
			continue
		}

		queryName := qp.queryName(fieldType)
		if queryName == "-" {
			continue
		}

		queryValues, exists := values[queryName]
		if !exists || len(queryValues) == 0 {
			if def := fieldType.Tag.Get(qp.defaultTag); def != "" {
				queryValues = []string{def}
			} else {
				continue
			}
		}

		if err := qp.setField(field, queryValues, fieldType.Name); err != nil {
			return err
		}
	}

	return nil
}

func (qp *QueryParser) queryName(fieldType reflect.StructField) string {
	for _, tag := range []string{qp.tagName, "json"} {
		if tagValue := fieldType.Tag.Get(tag); tagValue != "" {
			return strings.Split(tagValue, ",")[0]
		}
	}
	return strings.ToLower(fieldType.Name)
}

func (qp *QueryParser) setField(field reflect.Value, values []string, fieldName string) error {
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return qp.setField(field.Elem(), values, fieldName)
	}

	first := values[0]

	switch field.Kind() {
	case reflect.String:
		field.SetString(first)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intVal, err := strconv.ParseInt(first, 10, 64)
		if err != nil {
			return &BindError{
				Type:    "bind_error",
				Field:   fieldName,
				Message: "invalid integer value: " + err.Error(),
			}
		}
		field.SetInt(intVal)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		uintVal, err := strconv.ParseUint(first, 10, 64)
		if err != nil {
			return &BindError{
				Type:    "bind_error",
				Field:   fieldName,
				Message: "invalid unsigned integer value: " + err.Error(),
			}
		}
		field.SetUint(uintVal)

	case reflect.Float32, reflect.Float64:
		floatVal, err := strconv.ParseFloat(first, 64)
		if err != nil {
			return &BindError{
				Type:    "bind_error",
				Field:   fieldName,
				Message: "invalid float value: " + err.Error(),
			}
		}
		field.SetFloat(floatVal)

	case reflect.Bool:
		boolVal, err := strconv.ParseBool(first)
		if err != nil {
			return &BindError{
				Type:    "bind_error",
				Field:   fieldName,
				Message: "invalid boolean value: " + err.Error(),
			}
		}
		field.SetBool(boolVal)

	case reflect.Slice:
		return qp.setSliceField(field, values, fieldName)

	default:
		return &BindError{
			Type:    "bind_error",
			Field:   fieldName,
			Message: "unsupported field type: " + field.Kind().String(),
		}
	}

	return nil
}

func (qp *QueryParser) setSliceField(field reflect.Value, values []string, fieldName string) error {
	// One comma-joined value expands; repeated parameters pass through.
	if len(values) == 1 && strings.Contains(values[0], ",") {
		values = strings.Split(values[0], ",")
	}

	slice := reflect.MakeSlice(field.Type(), len(values), len(values))
	for i, val := range values {
		if err := qp.setField(slice.Index(i), []string{strings.TrimSpace(val)}, fieldName); err != nil {
			return err
		}
	}

	field.Set(slice)
	return nil
}
