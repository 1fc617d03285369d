package pkg

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultCodeDebounce is the quiet period before an identification code is
// checked for uniqueness.
const DefaultCodeDebounce = 500 * time.Millisecond

// jsonNames caches struct field name -> JSON name per struct type.
var jsonNames sync.Map // reflect.Type -> map[string]string

// FieldErrors flattens validator errors into field -> rule ("required",
// "email", "min=2"). Fields are named by the JSON tag of obj when given,
// otherwise by their lower-cased Go name. Other errors yield nil.
func FieldErrors(err error, obj any) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}

	names := fieldJSONNames(obj)
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		name, ok := names[fe.StructField()]
		if !ok {
			name = strings.ToLower(fe.Field())
		}
		rule := fe.Tag()
		if p := fe.Param(); p != "" {
			rule += "=" + p
		}
		out[name] = rule
	}
	return out
}

func fieldJSONNames(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	if cached, ok := jsonNames.Load(t); ok {
		return cached.(map[string]string)
	}

	names := make(map[string]string, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name != "" && name != "-" {
			names[f.Name] = name
		}
	}
	jsonNames.Store(t, names)
	return names
}
