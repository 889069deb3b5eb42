package capture

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hpungsan/shotcap/internal/errors"
)

// validate is the shared validator for capture records.
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report json field names instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := validate.RegisterValidation("capture_kind", validateKind); err != nil {
		panic(fmt.Sprintf("failed to register capture_kind validator: %v", err))
	}
}

func validateKind(fl validator.FieldLevel) bool {
	return Kind(fl.Field().String()).Valid()
}

// Validate checks the record invariants: known kind, non-empty source, title and body,
// and a set creation time.
func Validate(it Item) error {
	var fields []string
	if err := validate.Struct(it); err != nil {
		var verrs validator.ValidationErrors
		if !stderrors.As(err, &verrs) {
			return errors.NewInternal(err)
		}
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
	}
	if it.CreatedAt.IsZero() {
		fields = append(fields, "created_at")
	}
	if len(fields) > 0 {
		return errors.NewInvalidItem(fields)
	}
	return nil
}
