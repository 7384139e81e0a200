package shared

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/edumanage/edumanage-core/pkg/timeutil"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the process-wide validator with the domain tags registered.
//
// Registered tags:
//   - clock: "HH:mm" string inside the school day (08:00-23:00)
//   - isodate: "YYYY-MM-DD" string
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			m, err := timeutil.ParseClock(fl.Field().String())
			return err == nil && timeutil.WithinSchoolDay(m)
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := timeutil.ParseISODate(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

// ValidateStruct runs struct validation and wraps failures into a DomainError.
func ValidateStruct(domain, op string, s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field()+" ("+fe.Tag()+")")
		}
		return WrapError(domain, op, ErrValidation, "invalid "+strings.Join(fields, ", "), err)
	}
	return WrapError(domain, op, ErrValidation, "invalid input", err)
}
