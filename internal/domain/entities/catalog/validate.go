package catalog

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/AtRiskMedia/storefront-go/internal/domain/apperr"
	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator. It reads the same `binding` tags
// gin uses for request binding.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.SetTagName("binding")
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateDraft checks the required draft fields after normalization.
func ValidateDraft(d ProductDraft) error {
	d.Normalize()
	return structErr(Validator().Struct(d), "title and category are required")
}

// ValidateProduct rejects a patched product whose required fields became blank.
func ValidateProduct(p *Product) error {
	fields := map[string]string{}
	if strings.TrimSpace(p.Title) == "" {
		fields["title"] = "required"
	}
	if strings.TrimSpace(p.Category) == "" {
		fields["category"] = "required"
	}
	if len(fields) > 0 {
		return apperr.InvalidErr("title and category are required", fields)
	}
	return nil
}

func structErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Wrap(err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return apperr.InvalidErr(msg, fields)
}
