// Package validate implements the per-field validation rules of the Spark
// task form. A rule is a pure function of the trigger and the candidate
// value, closing over whatever live state it needs; failures are returned as
// Outcome values and never raised.
package validate

import "errors"

// Code classifies a failed Outcome.
type Code string

const (
	CodeRequired  Code = "required"
	CodeFormat    Code = "format"
	CodeDuplicate Code = "duplicate"
)

// Trigger names the renderer event that caused a validation.
type Trigger string

const (
	TriggerInput Trigger = "input"
	TriggerBlur  Trigger = "blur"
)

// DefaultTriggers are the events every rule in this form listens to.
var DefaultTriggers = []Trigger{TriggerInput, TriggerBlur}

// Outcome is the result of one validation. The zero value means no error.
type Outcome struct {
	Code    Code   `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// OK returns the passing Outcome.
func OK() Outcome { return Outcome{} }

// Fail returns a failing Outcome.
func Fail(code Code, message string) Outcome {
	return Outcome{Code: code, Message: message}
}

// Failed reports whether the Outcome carries an error.
func (o Outcome) Failed() bool { return o.Code != "" }

// Err converts the Outcome into an error for callers that want one; nil
// when the Outcome passed.
func (o Outcome) Err() error {
	if !o.Failed() {
		return nil
	}
	return errors.New(o.Message)
}

// Rule validates a candidate value.
type Rule func(trigger Trigger, value any) Outcome
