package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ValidationErrorDetail describes one rejected field.
type ValidationErrorDetail struct {
	Field    string      `json:"field"`
	Message  string      `json:"message"`
	Expected string      `json:"expected,omitempty"`
	Received interface{} `json:"received,omitempty"`
}

// ValidationErrorData is the data of a 400 validation response.
type ValidationErrorData struct {
	Errors        []ValidationErrorDetail `json:"errors"`
	Documentation string                  `json:"documentation"`
}

const DocumentationLink = "/swagger/index.html"

// BindAndValidate binds the JSON body into obj. On failure it writes a 400
// with one detail per rejected field and returns false.
func BindAndValidate(c *gin.Context, obj interface{}) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}
	respondInvalid(c, describeBindError(err))
	return false
}

func describeBindError(err error) []ValidationErrorDetail {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make([]ValidationErrorDetail, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, fieldErrorDetail(fe))
		}
		return details
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []ValidationErrorDetail{{
			Field:    typeErr.Field,
			Message:  fmt.Sprintf("Field '%s' has invalid type", typeErr.Field),
			Expected: typeErr.Type.String(),
			Received: typeErr.Value,
		}}
	}

	return []ValidationErrorDetail{{
		Field:    "body",
		Message:  "Malformed JSON or invalid request body",
		Expected: "valid JSON",
	}}
}

func fieldErrorDetail(fe validator.FieldError) ValidationErrorDetail {
	field := fieldPath(fe)
	detail := ValidationErrorDetail{
		Field:    field,
		Message:  fmt.Sprintf("Field '%s' failed on the '%s' rule", field, fe.Tag()),
		Expected: fe.Tag(),
		Received: fe.Value(),
	}

	switch fe.Tag() {
	case "required":
		detail.Message = fmt.Sprintf("Field '%s' is required", field)
		detail.Expected = "not empty"
		detail.Received = nil
	case "oneof":
		detail.Message = fmt.Sprintf("Field '%s' must be one of [%s]", field, fe.Param())
		detail.Expected = fe.Param()
	case "min":
		detail.Message = fmt.Sprintf("Field '%s' must be at least %s characters long", field, fe.Param())
		detail.Expected = "min length " + fe.Param()
	case "max":
		detail.Message = fmt.Sprintf("Field '%s' must be at most %s characters long", field, fe.Param())
		detail.Expected = "max length " + fe.Param()
	}
	return detail
}

// fieldPath drops the root struct from the namespace, so nested failures
// read like "parameters[0].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

// UseJSONFieldNames makes validation errors report JSON field names
// instead of Go struct field names.
func UseJSONFieldNames() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
	}
}

// RespondValidationErrors writes a field to message map in the shape
// BindAndValidate uses, ordered by field.
func RespondValidationErrors(c *gin.Context, fields map[string]string) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	details := make([]ValidationErrorDetail, 0, len(keys))
	for _, k := range keys {
		details = append(details, ValidationErrorDetail{Field: k, Message: fields[k]})
	}
	respondInvalid(c, details)
}

func respondInvalid(c *gin.Context, details []ValidationErrorDetail) {
	c.JSON(http.StatusBadRequest, NewResponse(http.StatusBadRequest, "Invalid request parameters", ValidationErrorData{
		Errors:        details,
		Documentation: DocumentationLink,
	}))
}
