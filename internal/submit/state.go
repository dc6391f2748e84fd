package submit

import "github.com/csheth/whatif/internal/response"

// Phase is the lifecycle position of the controller.
type Phase int

const (
	Idle Phase = iota
	Submitting
	Displaying
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Displaying:
		return "displaying"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the single authoritative lifecycle value. Result and Raw are set
// only while Displaying; Err only while Failed.
type State struct {
	Phase    Phase
	Question string
	Result   response.Parsed
	Raw      string
	Err      *Error
}

// AcceptsInput reports whether a new submission may start from this state.
func (s State) AcceptsInput() bool {
	return s.Phase != Submitting
}

func (s State) clone() State {
	if s.Result.Consequences != nil {
		s.Result.Consequences = append([]string{}, s.Result.Consequences...)
	}
	return s
}
