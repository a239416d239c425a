package transcriber

import "fmt"

// Kind is the closed set of transcription failure classes.
type Kind int

const (
	KindInvalidCredential Kind = iota
	KindRateLimited
	KindServerError
	KindNetworkUnreachable
	KindTimeout
	KindMalformedResponse
	KindPayloadTooLarge
)

// Throttle categories. A timeout and a connectivity failure share a bucket;
// rate limiting gets its own.
const (
	CategoryCredential = "credential"
	CategoryNetwork    = "network"
	CategoryRateLimit  = "rate_limit"
	CategoryGeneral    = "general"
)

// Error is an immutable classified transcription failure.
type Error struct {
	Kind  Kind
	Code  int   // HTTP status for KindServerError
	Size  int64 // payload size for KindPayloadTooLarge
	Limit int64
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidCredential:
		return "The API key is invalid. Please check your key at console.groq.com"
	case KindRateLimited:
		return "Rate limit exceeded. Please wait a few minutes and try again."
	case KindServerError:
		return fmt.Sprintf("Server error (%d). Please try again later.", e.Code)
	case KindNetworkUnreachable:
		return "Unable to connect to the transcription API. Please check your internet connection."
	case KindTimeout:
		return "Request timed out. Please check your internet connection and try again."
	case KindMalformedResponse:
		return "Unexpected response from API. Please try again."
	case KindPayloadTooLarge:
		return fmt.Sprintf("Recording is too large to upload (%d bytes, limit %d).", e.Size, e.Limit)
	default:
		return "Transcription failed."
	}
}

// Title is the short notification headline for this failure class.
func (e *Error) Title() string {
	switch e.Kind {
	case KindInvalidCredential:
		return "API Key Invalid"
	case KindRateLimited:
		return "Rate Limit Exceeded"
	case KindNetworkUnreachable:
		return "Network Error"
	case KindTimeout:
		return "Request Timed Out"
	case KindPayloadTooLarge:
		return "Recording Too Large"
	default:
		return "Transcription Failed"
	}
}

// Category maps the error kind onto its notification throttle bucket.
func (e *Error) Category() string {
	switch e.Kind {
	case KindInvalidCredential:
		return CategoryCredential
	case KindNetworkUnreachable, KindTimeout:
		return CategoryNetwork
	case KindRateLimited:
		return CategoryRateLimit
	default:
		return CategoryGeneral
	}
}

func errInvalidCredential() *Error { return &Error{Kind: KindInvalidCredential} }
func errRateLimited() *Error { return &Error{Kind: KindRateLimited} }
func errServer(code int) *Error { return &Error{Kind: KindServerError, Code: code} }
func errNetwork() *Error { return &Error{Kind: KindNetworkUnreachable} }
func errTimeout() *Error { return &Error{Kind: KindTimeout} }
func errMalformed() *Error { return &Error{Kind: KindMalformedResponse} }

func errPayloadTooLarge(size, limit int64) *Error {
	return &Error{Kind: KindPayloadTooLarge, Size: size, Limit: limit}
}
