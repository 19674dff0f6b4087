package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/liefhq/injury-api/internal/service/report"
)

// RegisterValidators installs the request-body validators used by the JSON
// binding layer: validation errors name fields by their json tag, and the
// "reporttime" tag checks that a submitted timestamp is parseable.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("reporttime", validReportTime); err != nil {
		panic(err)
	}
}

func validReportTime(fl validator.FieldLevel) bool {
	_, err := report.ParseSubmittedTime(fl.Field().String())
	return err == nil
}
