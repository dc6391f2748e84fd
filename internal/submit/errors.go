package submit

import (
	"errors"
	"fmt"

	"github.com/csheth/whatif/internal/api"
)

// Kind classifies why a submission failed.
type Kind int

const (
	// EmptyInput is a guard failure; the request never reaches the network.
	EmptyInput Kind = iota + 1
	// NetworkError means no response was obtained at all.
	NetworkError
	// RateLimited means the service rejected the request for rate reasons.
	RateLimited
	// ServerError covers every other non-success status.
	ServerError
	// InvalidPayload is a success response without a text field.
	InvalidPayload
)

func (k Kind) String() string {
	switch k {
	case EmptyInput:
		return "empty_input"
	case NetworkError:
		return "network_error"
	case RateLimited:
		return "rate_limited"
	case ServerError:
		return "server_error"
	case InvalidPayload:
		return "invalid_payload"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Message is the user-facing text for the failure.
func (k Kind) Message() string {
	switch k {
	case EmptyInput:
		return "Please enter a question first."
	case NetworkError:
		return "Could not reach the server. Check your connection and try again."
	case RateLimited:
		return "Too many questions in a short time. Wait a moment, then try again."
	case ServerError:
		return "The server had trouble answering. Please try again."
	case InvalidPayload:
		return "The server sent an answer we could not read. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}

// Error is the failure carried by a Failed state.
type Error struct {
	Kind   Kind
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrBusy is returned by Submit while another submission is outstanding.
var ErrBusy = errors.New("a submission is already in flight")

// classify maps a transport error onto the failure taxonomy.
func classify(err error) *Error {
	if errors.Is(err, api.ErrInvalidPayload) {
		return &Error{Kind: InvalidPayload, Err: err}
	}
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		if statusErr.RateLimited() {
			return &Error{Kind: RateLimited, Status: statusErr.Code, Err: err}
		}
		return &Error{Kind: ServerError, Status: statusErr.Code, Err: err}
	}
	return &Error{Kind: NetworkError, Err: err}
}

// KindOf returns the failure kind wrapped in err, or 0 when err is not a
// submission failure.
func KindOf(err error) Kind {
	var subErr *Error
	if errors.As(err, &subErr) {
		return subErr.Kind
	}
	return 0
}
