package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/veranemoloko/task-workflow/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("task_status", validateTaskStatus)
	_ = validate.RegisterValidation("notblank", validateNotBlank)
	validate.RegisterTagNameFunc(jsonFieldName)
}

// Struct validates a request body and flattens the field errors into one message.
func Struct(s any) error {
	if err := validate.Struct(s); err != nil {
		return describe(err)
	}
	return nil
}

// ValidateStatus checks a raw status string, e.g. a query parameter.
func ValidateStatus(raw string) error {
	if err := validate.Var(raw, "required,task_status"); err != nil {
		return fmt.Errorf("status must be one of %s", statusList())
	}
	return nil
}

func validateTaskStatus(fl validator.FieldLevel) bool {
	return domain.TaskStatus(fl.Field().String()).Valid()
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "notblank":
			msgs = append(msgs, fmt.Sprintf("%s must not be blank", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "task_status":
			msgs = append(msgs, fmt.Sprintf("%s must be one of %s", fe.Field(), statusList()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func statusList() string {
	statuses := domain.AllStatuses()
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, s.String())
	}
	return strings.Join(names, ", ")
}
