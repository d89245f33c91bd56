package domain

import "errors"

// Failure classes. Every error surfaced by the explorer wraps exactly one.
var (
	// ErrTransport covers connection failures and non-2xx responses.
	ErrTransport = errors.New("transport error")
	// ErrDecode means the response body was not valid JSON.
	ErrDecode = errors.New("decode error")
	// ErrUnknown is anything the client could not classify.
	ErrUnknown = errors.New("unknown error")
	// ErrInputValidation rejects caller input before any request is made.
	ErrInputValidation = errors.New("invalid input")
	// ErrEmptyResult means a well-formed response produced no usable records.
	ErrEmptyResult = errors.New("empty result")
)

// Error kinds as reported to callers.
const (
	KindTransport       = "transport"
	KindDecode          = "decode"
	KindUnknown         = "unknown"
	KindInputValidation = "input_validation"
	KindEmptyResult     = "empty_result"
)

// KindOf maps err to its stable kind string. A nil error has no kind and
// unclassified errors report KindUnknown.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInputValidation):
		return KindInputValidation
	case errors.Is(err, ErrEmptyResult):
		return KindEmptyResult
	case errors.Is(err, ErrTransport):
		return KindTransport
	case errors.Is(err, ErrDecode):
		return KindDecode
	default:
		return KindUnknown
	}
}
