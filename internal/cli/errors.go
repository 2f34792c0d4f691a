package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophdesk/internal/common"
	"github.com/go-playground/validator/v10"
)

var (
	errNotSignedIn   = errors.New("not signed in")
	errAdminOnly     = errors.New("administrator access required")
	errAlreadySigned = errors.New("already signed in")
)

// userMessage turns an error from a command into the text shown in the
// terminal. ok is false for errors that are not a normal user-facing
// outcome; those get a generic message and their detail goes to the log.
func userMessage(err error) (msg string, ok bool) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return validationMessage(verrs), true
	case errors.Is(err, common.ErrInvalidCredentials):
		return "Invalid username or password", true
	case errors.Is(err, common.ErrAccountInactive):
		return "Your account is deactivated. Contact an administrator.", true
	case errors.Is(err, common.ErrDuplicateUsername):
		return "Username already exists", true
	case errors.Is(err, common.ErrSelfDeletionForbidden):
		return "You cannot delete your own account", true
	case errors.Is(err, common.ErrorNotFound):
		return "Account not found", true
	case errors.Is(err, errNotSignedIn):
		return "Please log in first", true
	case errors.Is(err, errAdminOnly):
		return "Administrator access required", true
	case errors.Is(err, errAlreadySigned):
		return "You are already signed in. Log out first.", true
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Request cancelled", true
	default:
		return "Something went wrong, please try again", false
	}
}
