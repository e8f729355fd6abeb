package cameraroll

const (
	CodeAuthRestricted = "E_PHOTO_LIBRARY_AUTH_RESTRICTED"
	CodeAuthDenied     = "E_PHOTO_LIBRARY_AUTH_DENIED"
	CodeUnableToLoad   = "E_UNABLE_TO_LOAD"
	CodeUnableToSave   = "E_UNABLE_TO_SAVE"
	CodeUnableToFetch  = "E_UNABLE_TO_FETCH"
	CodeDeleteFailed   = "Couldn't delete"
)

// Error is the failure payload of every operation. Native carries the
// underlying library or loader error when there is one.
type Error struct {
	Code    string
	Message string
	Native  error
}

func (e *Error) Error() string {
	if e.Native != nil {
		return e.Message + ": " + e.Native.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Native
}

// Is matches any *Error with the same code, so the sentinels below work with
// errors.Is regardless of the attached cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrAuthRestricted = &Error{Code: CodeAuthRestricted, Message: "Access to photo library is restricted"}
	ErrAuthDenied     = &Error{Code: CodeAuthDenied, Message: "Access to photo library was denied"}
	ErrUnableToLoad   = &Error{Code: CodeUnableToLoad, Message: "Unable to load image"}
	ErrUnableToSave   = &Error{Code: CodeUnableToSave, Message: "Unable to save to camera roll"}
	ErrUnableToFetch  = &Error{Code: CodeUnableToFetch, Message: "Unable to fetch photos"}
	ErrDeleteFailed   = &Error{Code: CodeDeleteFailed, Message: "Couldn't delete assets"}
)

func wrap(sentinel *Error, native error) *Error {
	return &Error{Code: sentinel.Code, Message: sentinel.Message, Native: native}
}
