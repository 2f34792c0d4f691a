package cli

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// minPasswordLen is the shortest password, in characters, the register
// form accepts.
const minPasswordLen = 6

// registerForm is what the register command collects before calling the
// directory. The directory itself only checks username uniqueness.
type registerForm struct {
	Username string `validate:"required"`
	Password []byte
	Confirm  []byte
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// min on a []byte counts bytes and eqfield compares slice lengths only,
	// so both password rules are checked here
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		f := sl.Current().Interface().(registerForm)
		if !bytes.Equal(f.Password, f.Confirm) {
			sl.ReportError(f.Confirm, "Confirm", "Confirm", "eqfield", "Password")
			return
		}
		if utf8.RuneCount(f.Password) < minPasswordLen {
			sl.ReportError(f.Password, "Password", "Password", "min", strconv.Itoa(minPasswordLen))
		}
	}, registerForm{})
	return v
}

// rules in the order the form reports them
var validationOrder = []string{"Username.required", "Confirm.eqfield", "Password.min"}

// validationMessage reports the highest ranked failed rule.
func validationMessage(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return "Invalid input"
	}

	failed := make(map[string]bool, len(errs))
	for _, fe := range errs {
		failed[fe.Field()+"."+fe.Tag()] = true
	}

	for _, rule := range validationOrder {
		if !failed[rule] {
			continue
		}
		switch rule {
		case "Username.required":
			return "Username is required"
		case "Confirm.eqfield":
			return "Passwords do not match"
		case "Password.min":
			return fmt.Sprintf("Password must be at least %d characters", minPasswordLen)
		}
	}
	return "Invalid " + errs[0].Field()
}
