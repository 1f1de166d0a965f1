package types

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Validater interface {
	Validate() map[string]string
}

type GenerateParams struct {
	Prompt string `json:"prompt" validate:"required,max=4000"`
}

func Validate(v Validater) map[string]string {
	return v.Validate()
}

func (params *GenerateParams) Validate() map[string]string {
	errors := fieldErrors(validate.Struct(params))
	if strings.TrimSpace(params.Prompt) == "" {
		if errors == nil {
			errors = make(map[string]string)
		}
		errors["prompt"] = "failed on 'required' tag"
	}
	return errors
}

// CheckRow reports whether a record scanned from storage has the expected shape.
func CheckRow(row any) error {
	return validate.Struct(row)
}

func fieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}
	errors := make(map[string]string)
	for _, e := range errs {
		errors[strings.ToLower(e.Field())] = fmt.Sprintf("failed on '%s' tag", e.Tag())
	}
	return errors
}
