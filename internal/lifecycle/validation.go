package lifecycle

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"promptops-backend/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	MaxVersionNumberLength = 50
	MaxParameterNameLength = 100
)

var versionNumberPattern = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z._-]*$`)

// VersionInput is the user supplied part of a version.
type VersionInput struct {
	VersionNumber string                   `json:"versionNumber"`
	Content       string                   `json:"content"`
	Parameters    []models.PromptParameter `json:"parameters"`
}

// ValidateVersion checks the version fields and all of its parameters.
func ValidateVersion(in VersionInput) error {
	verr := &ValidationError{}

	err := validation.ValidateStruct(&in,
		validation.Field(&in.VersionNumber,
			validation.Required,
			validation.Length(1, MaxVersionNumberLength),
			validation.Match(versionNumberPattern).Error("must start with a letter or digit and contain only letters, digits, '.', '-' or '_'"),
		),
		validation.Field(&in.Content, validation.Required.Error("prompt content is required")),
	)
	if err := collect(verr, "", err); err != nil {
		return err
	}
	if err := collectParameters(verr, in.Parameters); err != nil {
		return err
	}
	return verr.orNil()
}

// ValidateParameters checks parameter definitions: unique names, known
// types, compilable patterns, and defaults that parse as the declared type.
// A required parameter that is not BOOLEAN must carry a default value.
func ValidateParameters(params []models.PromptParameter) error {
	verr := &ValidationError{}
	if err := collectParameters(verr, params); err != nil {
		return err
	}
	return verr.orNil()
}

func collectParameters(verr *ValidationError, params []models.PromptParameter) error {
	seen := make(map[string]int, len(params))
	for i := range params {
		p := params[i]
		prefix := fmt.Sprintf("parameters[%d].", i)

		if first, dup := seen[p.Name]; dup && p.Name != "" {
			verr.add(prefix+"name", fmt.Sprintf("duplicate parameter name %q (also at parameters[%d])", p.Name, first))
		} else {
			seen[p.Name] = i
		}

		err := validation.ValidateStruct(&p,
			validation.Field(&p.Name, validation.Required, validation.Length(1, MaxParameterNameLength)),
			validation.Field(&p.ParameterType, validation.Required, validation.In(parameterTypeValues()...).Error("must be one of STRING, NUMBER, BOOLEAN, ARRAY, OBJECT")),
			validation.Field(&p.ValidationPattern, validation.By(compiles)),
			validation.Field(&p.DefaultValue, validation.By(func(interface{}) error { return checkDefault(p) })),
		)
		if err := collect(verr, prefix, err); err != nil {
			return err
		}
	}
	return nil
}

// collect copies ozzo field errors into verr and passes internal errors through.
func collect(verr *ValidationError, prefix string, err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	for field, ferr := range fieldErrs {
		verr.add(prefix+field, ferr.Error())
	}
	return nil
}

func parameterTypeValues() []interface{} {
	values := make([]interface{}, len(models.ParameterTypes))
	for i, t := range models.ParameterTypes {
		values[i] = t
	}
	return values
}

func compiles(value interface{}) error {
	pattern, _ := value.(string)
	if pattern == "" {
		return nil
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return errors.New("is not a valid regular expression")
	}
	return nil
}

func checkDefault(p models.PromptParameter) error {
	if p.DefaultValue == nil || *p.DefaultValue == "" {
		if p.Required && p.ParameterType != models.ParameterTypeBoolean {
			return errors.New("is required for a required parameter")
		}
		return nil
	}

	value := *p.DefaultValue
	switch p.ParameterType {
	case models.ParameterTypeNumber:
		if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
			return errors.New("must be a number")
		}
	case models.ParameterTypeBoolean:
		if _, err := strconv.ParseBool(strings.TrimSpace(value)); err != nil {
			return errors.New("must be true or false")
		}
	case models.ParameterTypeArray:
		var arr []interface{}
		if err := json.Unmarshal([]byte(value), &arr); err != nil {
			return errors.New("must be a JSON array")
		}
	case models.ParameterTypeObject:
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(value), &obj); err != nil || obj == nil {
			return errors.New("must be a JSON object")
		}
	}

	if p.ValidationPattern != "" {
		re, err := regexp.Compile(p.ValidationPattern)
		if err == nil && !re.MatchString(value) {
			return fmt.Errorf("does not match pattern %s", p.ValidationPattern)
		}
	}
	return nil
}
