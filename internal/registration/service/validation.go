package service

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/constants"
)

var (
	usernameRule = fmt.Sprintf("required,maxbytes=%d", constants.UsernameMaxBytes)
	passwordRule = fmt.Sprintf("required,maxbytes=%d", constants.PasswordMaxBytes)
)

// The built-in max rule counts runes; the stored limit is in bytes.
func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

type credentialValidator struct {
	v *validator.Validate
}

func newCredentialValidator() *credentialValidator {
	v := validator.New()
	if err := v.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return &credentialValidator{v: v}
}

func (c *credentialValidator) Validate(username, password string) error {
	if err := c.check("username", username, usernameRule); err != nil {
		return err
	}
	return c.check("password", password, passwordRule)
}

func (c *credentialValidator) check(field, value, rule string) error {
	err := c.v.Var(value, rule)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Tag() {
		case "required":
			return fmt.Errorf("%s is required", field)
		case "maxbytes":
			return fmt.Errorf("%s exceeds %s bytes", field, verrs[0].Param())
		}
	}
	return fmt.Errorf("%s is invalid: %w", field, err)
}
