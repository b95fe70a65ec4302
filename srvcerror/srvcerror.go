package srvcerror

import "net/http"

type Error struct {
	errorCode  string
	msgToUser  string // public
	dbgInfoErr error  // private, for debugging

	httpStatus  int               // optional, for HTTP responses
	httpHeaders map[string]string // optional, e.g. Retry-After on 429
}

func (e *Error) Error() string {
	return e.msgToUser
}

func (e *Error) ErrorCode() string {
	return e.errorCode
}

func (e *Error) DebugInfo() error {
	return e.dbgInfoErr
}

func (e *Error) SetDebug(err error) *Error {
	e.dbgInfoErr = err
	return e
}

func (e *Error) HttpStatusCode() int {
	if e.httpStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.httpStatus
}

func (e *Error) SetHttpStatusCode(code int) *Error {
	e.httpStatus = code
	return e
}

func (e *Error) SetHttpHeader(key, value string) *Error {
	if e.httpHeaders == nil {
		e.httpHeaders = map[string]string{}
	}
	e.httpHeaders[key] = value
	return e
}

func (e *Error) HttpHeaders() map[string]string {
	return e.httpHeaders
}

func New(errorCode string, msgToUser string) *Error {
	return &Error{
		errorCode: errorCode,
		msgToUser: msgToUser,
	}
}

const ErrCodeInternalServerError = "internal_server_error"

func ErrInternalSE() *Error {
	return New(
		ErrCodeInternalServerError,
		"internal server error",
	).SetHttpStatusCode(http.StatusInternalServerError)
}

const ErrCodeUnhandled = "UNHANDLED"

// ErrUnhandled is returned from the outermost boundary when a panic or an
// unclassified failure escapes the pipeline. The message is deliberately
// generic; details go to the audit sink only.
func ErrUnhandled() *Error {
	return New(
		ErrCodeUnhandled,
		"internal server error",
	).SetHttpStatusCode(http.StatusInternalServerError)
}
