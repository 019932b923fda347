package helpers

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateStruct returns a single flat message for the first failing rule,
// suitable for the JSON error envelope.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		fe := errs[0]
		return fmt.Errorf("%s failed on '%s'", strings.ToLower(fe.Field()), fe.Tag())
	}
	return err
}
