package model

import "encoding/json"

type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusError   Status = "error"
)

type Operation string

const (
	OperationTransition Operation = "transition"
	OperationComment    Operation = "comment"
	OperationPRComment  Operation = "pr_comment"
)

// TransitionRequest asks the tracker to move a ticket to a named status.
type TransitionRequest struct {
	TicketKey    string `json:"ticket_key"`
	TargetStatus string `json:"target_status"`
}

// Action is the outcome of one attempted tracker or pull request operation.
type Action struct {
	Operation   Operation `json:"operation"`
	TicketKey   string    `json:"ticket_key,omitempty"`
	Target      string    `json:"target,omitempty"`
	Success     bool      `json:"success"`
	Description string    `json:"description"`
}

// Result describes what processing one event did. Actions holds exactly the
// operations that were attempted, successful or not.
type Result struct {
	Status     Status         `json:"status"`
	Message    string         `json:"message"`
	TicketKeys []string       `json:"ticket_keys"`
	Actions    []Action       `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
}

// NewResult returns a success result with no actions yet.
func NewResult(message string, keys []string) *Result {
	if keys == nil {
		keys = []string{}
	}
	return &Result{
		Status:     StatusSuccess,
		Message:    message,
		TicketKeys: keys,
		Actions:    []Action{},
		Details:    map[string]any{},
	}
}

// ErrorResult is the result for an event that could not be processed at all.
func ErrorResult(message string) *Result {
	r := NewResult(message, nil)
	r.Status = StatusError
	return r
}

// Record appends an action and recomputes the status.
func (r *Result) Record(a Action) {
	r.Actions = append(r.Actions, a)
	r.Status = StatusFor(r.Actions)
}

// Detail sets a supplementary fact on the result.
func (r *Result) Detail(key string, value any) *Result {
	if r.Details == nil {
		r.Details = map[string]any{}
	}
	r.Details[key] = value
	return r
}

// Descriptions returns the human readable outcome of every action, in order.
func (r *Result) Descriptions() []string {
	out := make([]string, 0, len(r.Actions))
	for _, a := range r.Actions {
		out = append(out, a.Description)
	}
	return out
}

// Failed counts the actions that did not succeed.
func (r *Result) Failed() int {
	n := 0
	for _, a := range r.Actions {
		if !a.Success {
			n++
		}
	}
	return n
}

// StatusFor derives a result status from attempted actions: error only when
// every attempt failed, partial when some did, success otherwise (including
// when nothing was attempted).
func StatusFor(actions []Action) Status {
	failed := 0
	for _, a := range actions {
		if !a.Success {
			failed++
		}
	}
	switch {
	case failed == 0:
		return StatusSuccess
	case failed == len(actions):
		return StatusError
	default:
		return StatusPartial
	}
}

type resultJSON struct {
	Status     Status         `json:"status"`
	Message    string         `json:"message"`
	TicketKeys []string       `json:"ticket_keys"`
	Actions    []string       `json:"actions"`
	Operations []Action       `json:"operations"`
	Details    map[string]any `json:"details,omitempty"`
}

// MarshalJSON renders actions as human readable strings, with the structured
// form under "operations".
func (r Result) MarshalJSON() ([]byte, error) {
	keys := r.TicketKeys
	if keys == nil {
		keys = []string{}
	}
	ops := r.Actions
	if ops == nil {
		ops = []Action{}
	}
	return json.Marshal(resultJSON{
		Status:     r.Status,
		Message:    r.Message,
		TicketKeys: keys,
		Actions:    r.Descriptions(),
		Operations: ops,
		Details:    r.Details,
	})
}

// UnmarshalJSON restores a result written by MarshalJSON.
func (r *Result) UnmarshalJSON(data []byte) error {
	var raw resultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Result{
		Status:     raw.Status,
		Message:    raw.Message,
		TicketKeys: raw.TicketKeys,
		Actions:    raw.Operations,
		Details:    raw.Details,
	}
	if r.Actions == nil {
		r.Actions = []Action{}
	}
	return nil
}
