package middleware

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// QueryBinder fills structs from URL query parameters and validates them
// with their validate tags. Fields are bound by their `query` tag and must be
// strings or string-kinded types.
type QueryBinder struct {
	validator *validator.Validate
}

// NewQueryBinder creates a binder that reports fields by their query names.
func NewQueryBinder() *QueryBinder {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &QueryBinder{validator: v}
}

// Bind copies the query parameters of r into dst, a pointer to a struct, and
// validates it. Validation failures are returned as validator.ValidationErrors.
func (b *QueryBinder) Bind(r *http.Request, dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind target must be a struct pointer, got %T", dst)
	}
	rv = rv.Elem()
	rt := rv.Type()

	query := r.URL.Query()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		name := strings.SplitN(field.Tag.Get("query"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		if field.Type.Kind() != reflect.String {
			return fmt.Errorf("query field %s must be string-kinded", field.Name)
		}
		if value := strings.TrimSpace(query.Get(name)); value != "" {
			rv.Field(i).SetString(value)
		}
	}

	return b.validator.Struct(dst)
}
