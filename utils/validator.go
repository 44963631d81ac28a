package utils

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their JSON names so errors line up with the request body.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("privatekey", isPrivateKeyPEM)
}

// ValidateStruct: hàm validate struct
func ValidateStruct(obj interface{}) error {
	return validate.Struct(obj)
}

// ValidationFields returns the JSON paths of the fields that failed validation,
// e.g. "connection.hostname" or "expected_files[0].filename".
// Returns nil when err is not a validation error.
func ValidationFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make([]string, 0, len(verrs))
	seen := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		// Drop the root struct name.
		if i := strings.Index(ns, "."); i >= 0 {
			ns = ns[i+1:]
		}
		if seen[ns] {
			continue
		}
		seen[ns] = true
		fields = append(fields, ns)
	}
	return fields
}

// isPrivateKeyPEM accepts anything that looks like a PEM private key block,
// with real or escaped newlines. Actual parsing happens at connect time.
func isPrivateKeyPEM(fl validator.FieldLevel) bool {
	key := fl.Field().String()
	return strings.Contains(key, "BEGIN") && strings.Contains(key, "PRIVATE KEY")
}
