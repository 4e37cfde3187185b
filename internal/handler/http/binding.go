package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"eshop-api/internal/apperror"

	"github.com/go-playground/validator/v10"
)

const maxFormMemory = 32 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// bind decodes the request body into dst, from JSON or from form fields
// depending on the content type, and then validates it.
func bind(r *http.Request, dst any) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		if r.MultipartForm == nil {
			if err := r.ParseMultipartForm(maxFormMemory); err != nil {
				return apperror.Validation("Invalid multipart form")
			}
		}
		if err := bindForm(r.MultipartForm.Value, dst); err != nil {
			return err
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return apperror.Validation("Invalid form body")
		}
		if err := bindForm(r.PostForm, dst); err != nil {
			return err
		}
	default:
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return apperror.Validation("Invalid request body")
		}
	}

	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.Validation("Invalid request body")
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return apperror.Validation(fe.Field() + " is required")
	case "email":
		return apperror.Validation(fe.Field() + " must be a valid email")
	case "min", "gte":
		return apperror.Validation(fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
	case "max", "lte":
		return apperror.Validation(fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
	default:
		return apperror.Validation("Invalid " + fe.Field())
	}
}

// bindForm copies form values into the json-tagged fields of the struct
// dst points to. Scalars, slices of scalars and pointers to either are
// supported; a slice takes every repeated value of its key.
func bindForm(values map[string][]string, dst any) error {
	v := reflect.ValueOf(dst).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		key := strings.Split(t.Field(i).Tag.Get("json"), ",")[0]
		raw, ok := values[key]
		if key == "" || key == "-" || !ok || len(raw) == 0 {
			continue
		}

		field := v.Field(i)
		if field.Kind() == reflect.Pointer {
			field.Set(reflect.New(field.Type().Elem()))
			field = field.Elem()
		}
		if field.Kind() == reflect.Slice {
			if err := setSlice(field, raw); err != nil {
				return apperror.Validation("Invalid " + key)
			}
			continue
		}
		if err := setScalar(field, raw[0]); err != nil {
			return apperror.Validation("Invalid " + key)
		}
	}
	return nil
}

func setSlice(field reflect.Value, raw []string) error {
	out := reflect.MakeSlice(field.Type(), len(raw), len(raw))
	for i, s := range raw {
		if err := setScalar(out.Index(i), s); err != nil {
			return err
		}
	}
	field.Set(out)
	return nil
}

func setScalar(field reflect.Value, s string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	default:
		return fmt.Errorf("unsupported form field kind %s", field.Kind())
	}
	return nil
}
