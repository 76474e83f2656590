package validator

import "github.com/go-playground/validator/v10"

func registerFn(tag string, fn func(fl validator.FieldLevel) bool) func(v *validator.Validate) {
	return func(v *validator.Validate) {
		_ = v.RegisterValidation(tag, fn)
	}
}

func NewJobValidationRules() []ValidationRule {
	return []ValidationRule{
		{
			Rule: registerFn("language_pair", languagePairValidator),
		},
		{
			Rule: registerFn("job_status", jobStatusValidator),
		},
		{
			Rule: registerFn("future", futureValidator),
		},
	}
}
