// Package lifecycle owns the state of one page analysis attempt.
//
// The state is a closed sum type with four variants:
//
//	Idle ──submit──> Loading ──resolve──> Success(data)
//	                    │
//	                    └────resolve────> Failure(err)
//
// Success and Failure accept a new submission, which starts another cycle.
// There is no terminal state.
//
// # Concurrency Model
//
// Controller serializes every read and write of the state cell with a
// mutex. Submit refuses to start a second attempt while one is Loading, so
// at most one transport call is ever outstanding. The call itself is not
// made under the lock: Submit hands back a Pending, the caller runs
// Pending.Wait off the UI goroutine (as a Bubble Tea command, or a plain
// goroutine) and passes the Outcome back to Resolve. Each attempt has an id;
// Resolve drops outcomes whose id does not match the outstanding attempt.
//
// # Rejections
//
// Blank input (ErrBlankURL) and submissions while Loading (ErrInFlight) are
// returned as errors and never change state. Remote failures are not
// errors from Submit; they arrive through Resolve and become Failure.
package lifecycle
