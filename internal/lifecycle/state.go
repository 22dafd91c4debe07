package lifecycle

import "github.com/five82/insight/internal/insight"

// Status names the active variant of a State.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// State is the phase of the current analysis attempt. Exactly four types
// implement it: Idle, Loading, Success and Failure.
type State interface {
	Status() Status
	sealed()
}

// Idle means no attempt has been made yet.
type Idle struct{}

// Loading means one attempt is outstanding.
type Loading struct{}

// Success holds a validated analysis result.
type Success struct {
	Data insight.AnalyzeResponse
}

// Failure holds the error an attempt ended with. StatusCode 0 marks a
// transport failure; anything else was reported by the service.
type Failure struct {
	Err insight.ErrorResponse
}

func (Idle) Status() Status    { return StatusIdle }
func (Loading) Status() Status { return StatusLoading }
func (Success) Status() Status { return StatusSuccess }
func (Failure) Status() Status { return StatusError }

func (Idle) sealed()    {}
func (Loading) sealed() {}
func (Success) sealed() {}
func (Failure) sealed() {}
