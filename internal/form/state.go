// internal/form/state.go
//
// Forms subsystem: per-instance submission state.
//
// Context
//   Every rendered form is one *instance* with its own ID.  An instance
//   moves through
//
//      Idle → Submitting → Success
//                        ↘ Failed
//
//   Idle and Failed are both editable.  Failed keeps the user's values and
//   carries the message to show.  Reset drops values and messages and
//   returns to Idle.  Invalid input never leaves Idle.
//
//------------------------------------------------------------------------------

package form

// Status is the lifecycle position of a form instance.
type Status int

const (
	Idle Status = iota
	Submitting
	Success
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is what a template needs to draw one form instance.
type State struct {
	Form    string // FormDef ID, e.g. "auth/login"
	ID      string // instance ID, stable across re-renders
	CSRF    string
	Status  Status
	Values  map[string]string
	Hidden  map[string]string // extra hidden inputs (edit shadows)
	Errors  FieldErrors
	Message string // form-level error
}

// Editable reports whether inputs should accept changes.
func (s *State) Editable() bool { return s.Status == Idle || s.Status == Failed }

// Value returns the current value of field name.
func (s *State) Value(name string) string { return s.Values[name] }

// Begin moves the state to Submitting.  Concurrent submissions of one
// instance are collapsed by Submit, not here: every request parses its own
// State.
func (s *State) Begin() {
	s.Status = Submitting
	s.Errors = nil
	s.Message = ""
}

// Succeed marks the submission done.
func (s *State) Succeed() { s.Status = Success }

// Fail records msg and keeps the values for the next attempt.
func (s *State) Fail(msg string) {
	s.Status = Failed
	s.Message = msg
}

// Invalid records field errors; the instance stays Idle.
func (s *State) Invalid(errs FieldErrors) {
	s.Status = Idle
	s.Errors = errs
}

// Reset clears all values and messages.
func (s *State) Reset() {
	s.Status = Idle
	s.Values = map[string]string{}
	s.Errors = nil
	s.Message = ""
}
