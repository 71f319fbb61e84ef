package fetcher

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// structValidator enforces `validate` struct tags on decoded values. It caches struct metadata
// and is safe for concurrent use, so one instance serves every transcoder.
var structValidator = validator.New(validator.WithRequiredStructEnabled())

var unmarshalerType = reflect.TypeFor[json.Unmarshaler]()

// conform checks that a decoded value matches its payload exactly. The JSON decoder alone fills
// absent fields with zero values and turns null into a zero value, so both are checked against
// the raw document here: a non-omitempty field must be present, and null is accepted only where T
// can hold it (pointers and interfaces) or where the field is optional. After that the `validate`
// tags of every struct reachable from the value are enforced.
func conform[T any](src []byte, entry *T) error {
	var doc any
	if err := json.Unmarshal(src, &doc); err != nil {
		return err
	}

	if err := checkShape(reflect.TypeFor[T](), doc, "$"); err != nil {
		return err
	}

	return validateTags(reflect.ValueOf(entry).Elem())
}

// checkShape walks the raw document alongside typ and reports the first absent field or misplaced null.
func checkShape(typ reflect.Type, doc any, path string) error {
	if doc == nil {
		if typ.Kind() == reflect.Pointer || typ.Kind() == reflect.Interface {
			return nil
		}

		return fmt.Errorf("%w at %s", ErrNullValue, path)
	}

	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}

	// Types that decode themselves define their own shape.
	if reflect.PointerTo(typ).Implements(unmarshalerType) {
		return nil
	}

	switch typ.Kind() {
	case reflect.Struct:
		obj, ok := doc.(map[string]any)
		if !ok {
			return nil
		}

		return checkFields(typ, obj, path)
	case reflect.Slice, reflect.Array:
		items, ok := doc.([]any)
		if !ok {
			return nil
		}

		for i, item := range items {
			if err := checkShape(typ.Elem(), item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	case reflect.Map:
		obj, ok := doc.(map[string]any)
		if !ok {
			return nil
		}

		for key, item := range obj {
			if err := checkShape(typ.Elem(), item, path+"."+key); err != nil {
				return err
			}
		}
	}

	return nil
}

func checkFields(typ reflect.Type, obj map[string]any, path string) error {
	for i := range typ.NumField() {
		field := typ.Field(i)
		name, optional, skip := jsonField(field)
		if skip {
			continue
		}

		// Untagged embedded structs are flattened into the parent object.
		if field.Anonymous && name == "" {
			embedded := field.Type
			if embedded.Kind() == reflect.Pointer {
				embedded = embedded.Elem()
			}

			if embedded.Kind() == reflect.Struct {
				if err := checkFields(embedded, obj, path); err != nil {
					return err
				}
				continue
			}
		}

		if !field.IsExported() {
			continue
		}

		if name == "" {
			name = field.Name
		}

		value, present := obj[name]
		if !present {
			if optional {
				continue
			}

			return fmt.Errorf("%w: %s.%s", ErrMissingField, path, name)
		}

		if value == nil && optional {
			continue
		}

		if err := checkShape(field.Type, value, path+"."+name); err != nil {
			return err
		}
	}

	return nil
}

// jsonField reads the json tag of a field. skip is set for unexported and "-" fields.
func jsonField(field reflect.StructField) (name string, optional, skip bool) {
	if !field.IsExported() && !field.Anonymous {
		return "", false, true
	}

	tag := field.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}

	name, opts, _ := strings.Cut(tag, ",")
	for _, opt := range strings.Split(opts, ",") {
		if opt == "omitempty" || opt == "omitzero" {
			optional = true
		}
	}

	return name, optional, false
}

// validateTags runs the struct validator on every struct reachable through pointers, slices and maps.
func validateTags(v reflect.Value) error {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}

		return validateTags(v.Elem())
	case reflect.Struct:
		if !v.CanInterface() {
			return nil
		}

		return structValidator.Struct(v.Interface())
	case reflect.Slice, reflect.Array:
		for i := range v.Len() {
			if err := validateTags(v.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			if err := validateTags(iter.Value()); err != nil {
				return err
			}
		}
	}

	return nil
}
