// Package inputval validates request DTOs with go-playground/validator
// struct tags and turns failures into French, user-facing messages.
//
// Tags used across the API:
//
//	validate:"required,email"          standard rules
//	validate:"omitempty,role"          one of the five admin roles
//	validate:"hhmm"                    a 24h "HH:MM" time
//	validate:"dive,weekday"            lowercase English weekday names
//	validate:"httpurl"                 absolute http(s) URL
//	validate:"objectid"                24-hex document id
//	label:"Nom"                        human label used in messages
package inputval

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/samaquete/admin/internal/app/system/apperr"
	"github.com/samaquete/admin/internal/domain/models"
)

var (
	once     sync.Once
	validate *validator.Validate

	hhmmRe     = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	objectIDRe = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return models.IsValidRole(fl.Field().String())
		})
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			return hhmmRe.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
			return IsWeekday(fl.Field().String())
		})
		_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
			return IsValidHTTPURL(fl.Field().String())
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return IsValidObjectID(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// FieldError is one failed rule.
type FieldError struct {
	Field   string // json name
	Message string
}

// Result collects the failures of one Validate call.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Err returns the first failure as *apperr.ValidationError, or nil.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return &apperr.ValidationError{Field: r.Errors[0].Field, Message: r.Errors[0].Message}
}

// Validate runs the struct's validate tags.
func Validate(s any) *Result {
	res := &Result{}
	err := instance().Struct(s)
	if err == nil {
		return res
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}

	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	for _, fe := range verrs {
		label := fe.Field()
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if l := sf.Tag.Get("label"); l != "" {
				label = l
			}
		}
		res.Errors = append(res.Errors, FieldError{Field: fe.Field(), Message: message(label, fe)})
	}
	return res
}

// Check is Validate(s).Err().
func Check(s any) error {
	return Validate(s).Err()
}

func message(label string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_without":
		return fmt.Sprintf("%s est requis.", label)
	case "email":
		return "Une adresse email valide est requise."
	case "max":
		return fmt.Sprintf("%s doit contenir au plus %s caractères.", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s doit contenir au moins %s caractères.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s doit être l'une des valeurs : %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt", "gte":
		return fmt.Sprintf("%s doit être supérieur à %s.", label, fe.Param())
	case "role":
		return fmt.Sprintf("%s : rôle invalide.", label)
	case "hhmm":
		return fmt.Sprintf("%s doit être au format HH:MM.", label)
	case "weekday":
		return fmt.Sprintf("%s contient un jour invalide.", label)
	case "httpurl":
		return fmt.Sprintf("%s doit être une URL http(s) valide.", label)
	case "objectid":
		return fmt.Sprintf("%s : identifiant invalide.", label)
	}
	return fmt.Sprintf("%s est invalide.", label)
}

// IsValidEmail accepts a bare address (no display name).
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s && a.Name == ""
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsValidObjectID reports whether s is 24 hex characters.
func IsValidObjectID(s string) bool {
	return objectIDRe.MatchString(strings.TrimSpace(s))
}

// IsWeekday reports whether s is one of models.Weekdays.
func IsWeekday(s string) bool {
	for _, d := range models.Weekdays {
		if d == s {
			return true
		}
	}
	return false
}

// IsValidTime reports whether s is a 24h "HH:MM" time.
func IsValidTime(s string) bool {
	return hhmmRe.MatchString(s)
}
