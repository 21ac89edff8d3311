package middleware

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/inventa/backend/internal/interfaces/http/dto"
)

var validatorOnce sync.Once

// SetupValidator configures gin's validator to name fields the way clients
// send them (json tag, then form tag). Safe to call more than once.
func SetupValidator() {
	validatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(wireName)
	})
}

func wireName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		switch name {
		case "-":
			return ""
		case "":
			continue
		default:
			return name
		}
	}
	return ""
}

// ValidationDetails converts validator failures into response details,
// worded like the domain's own field errors.
// ok is false when err did not come from the validator.
func ValidationDetails(err error) (details []dto.ValidationDetail, ok bool) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, false
	}
	details = make([]dto.ValidationDetail, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return details, true
}

var tagMessages = map[string]func(fe validator.FieldError) string{
	"required": func(validator.FieldError) string { return "is required" },
	"email":    func(validator.FieldError) string { return "must be a valid email address" },
	"min": func(fe validator.FieldError) string {
		return "must be at least " + fe.Param() + lengthUnit(fe)
	},
	"max": func(fe validator.FieldError) string {
		return "cannot exceed " + fe.Param() + lengthUnit(fe)
	},
	"gte": func(fe validator.FieldError) string { return "must be " + fe.Param() + " or more" },
	"lte": func(fe validator.FieldError) string { return "must be " + fe.Param() + " or less" },
	"eqfield": func(fe validator.FieldError) string {
		return "does not match " + strings.ToLower(fe.Param())
	},
	"oneof": func(fe validator.FieldError) string {
		return "must be one of " + strings.Join(strings.Fields(fe.Param()), ", ")
	},
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := tagMessages[fe.Tag()]; ok {
		return msg(fe)
	}
	return "is invalid"
}

// lengthUnit qualifies min/max on strings, where the bound is a length
func lengthUnit(fe validator.FieldError) string {
	if fe.Kind() == reflect.String {
		return " characters"
	}
	return ""
}
