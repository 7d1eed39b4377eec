package structex

import (
	"errors"
	"fmt"
)

// Application error codes. These map the failure taxonomy of the extraction
// pipeline onto machine-readable codes that callers can branch on.
const (
	EBADRESPONSE = "bad_response" // completion could not be parsed or repaired
	ECONTEXT     = "context_too_large"
	EINTERNAL    = "internal"
	EINVALID     = "invalid"
	ENOTFOUND    = "not_found" // e.g. scope selector matched nothing
	EPARTIAL     = "partial"   // list mode finished with failed chunks
	ERATELIMITED = "rate_limited"
	ETIMEOUT     = "timeout"
	ETOOLARGE    = "too_many_tokens"
	EUNAVAILABLE = "unavailable"
)

// Error represents an application-specific error. Application errors can be
// unwrapped by the caller to extract out the code and message.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable message.
	Message string
}

// Error implements the error interface. Not used by the application otherwise.
func (e *Error) Error() string {
	return fmt.Sprintf("structex error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code. Non-application
// errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	var c interface{ ErrorCode() string }
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	} else if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	var c interface{ ErrorCode() string }
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	} else if errors.As(err, &c) {
		return err.Error()
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// TokenLimitError indicates that reduced content exceeds the usable token
// limit and no splitting strategy applies. It carries the estimate and the
// limit so callers can act on the numbers.
type TokenLimitError struct {
	Estimate int
	Limit    int
}

func (e *TokenLimitError) Error() string {
	return fmt.Sprintf("structex error: code=%s estimate=%d limit=%d", ETOOLARGE, e.Estimate, e.Limit)
}

// ErrorCode marks the error as ETOOLARGE for ErrorCode.
func (e *TokenLimitError) ErrorCode() string { return ETOOLARGE }

// ResponseError indicates a completion that could not be parsed or repaired.
// Raw keeps the response text for diagnostics.
type ResponseError struct {
	Raw    string
	Reason string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("structex error: code=%s message=%s", EBADRESPONSE, e.Reason)
}

// ErrorCode marks the error as EBADRESPONSE for ErrorCode.
func (e *ResponseError) ErrorCode() string { return EBADRESPONSE }

// ChunkFailure records one failed chunk in list mode.
type ChunkFailure struct {
	Index int
	Err   error
}

// PartialError is the terminal status of a list-mode extraction where at
// least one chunk failed. The successful results are still returned to the
// caller alongside this error; it is an accounting of what failed and why,
// not a total failure.
type PartialError struct {
	Failed []ChunkFailure
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("structex error: code=%s failed_chunks=%d", EPARTIAL, len(e.Failed))
}

// ErrorCode marks the error as EPARTIAL for ErrorCode.
func (e *PartialError) ErrorCode() string { return EPARTIAL }

// Indices returns the failed chunk indices in ascending order.
func (e *PartialError) Indices() []int {
	out := make([]int, 0, len(e.Failed))
	for _, f := range e.Failed {
		out = append(out, f.Index)
	}
	return out
}
