package validator

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/dtapi/booking-coordinator/internal/store/model"
	"github.com/go-playground/validator/v10"
)

var languagePairRegex = regexp.MustCompile(`^[a-z]{2,3}-[a-z]{2,3}$`)

// jsonFieldName makes error messages use the names clients send.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func languagePairValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}

	source, target, found := strings.Cut(val, "-")
	if !found || source == target {
		return false
	}
	return languagePairRegex.MatchString(val)
}

func jobStatusValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return model.JobStatus(val).IsValid()
}

func futureValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return val.After(time.Now())
}
