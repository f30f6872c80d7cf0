package registry

import "fmt"

// Error is a typed domain failure. Every orchestrator operation reports
// failures as one of the sentinel values below; callers branch on the
// code via errors.Is. Status is a transport-agnostic HTTP hint consumed
// by the api layer.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error carrying the same code, so
// errors.Is(err, ErrNotFound) works on messages customized with
// WithMessage.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) WithMessage(format string, args ...any) *Error {
	return &Error{
		Code:    e.Code,
		Message: fmt.Sprintf(format, args...),
		Status:  e.Status,
	}
}

var (
	ErrNotFound = &Error{
		Code:    "NOT_FOUND",
		Message: "not found",
		Status:  404,
	}

	ErrAlreadyExists = &Error{
		Code:    "ALREADY_EXISTS",
		Message: "already exists",
		Status:  409,
	}

	ErrAlreadyMember = &Error{
		Code:    "ALREADY_MEMBER",
		Message: "user is already a participant",
		Status:  409,
	}

	ErrNotAMember = &Error{
		Code:    "NOT_A_MEMBER",
		Message: "user is not a participant",
		Status:  409,
	}

	ErrAlreadyAdmin = &Error{
		Code:    "ALREADY_ADMIN",
		Message: "user is already an admin",
		Status:  409,
	}

	ErrNotAnAdmin = &Error{
		Code:    "NOT_AN_ADMIN",
		Message: "user is not an admin",
		Status:  409,
	}

	ErrPermissionDenied = &Error{
		Code:    "PERMISSION_DENIED",
		Message: "insufficient permissions",
		Status:  403,
	}

	ErrProtectedEntity = &Error{
		Code:    "PROTECTED_ENTITY",
		Message: "the group creator cannot be removed or demoted",
		Status:  403,
	}

	ErrInvalidArgument = &Error{
		Code:    "INVALID_ARGUMENT",
		Message: "invalid argument",
		Status:  400,
	}

	ErrIllegalState = &Error{
		Code:    "ILLEGAL_STATE",
		Message: "membership index update failed",
		Status:  500,
	}
)
