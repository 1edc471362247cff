package entities

import (
	"fmt"
	"strings"
)

// ErrorDetail is the flattened form of a binding failure, suitable for
// logging or for crossing a process boundary as JSON.
//
// Type is one of decode, encode, uninitialized, poisoned, panic,
// correlation, version, export or internal. Code names the method or
// guest the failure is attached to, when there is one.
type ErrorDetail struct {
	Type    string         `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Stack   []byte         `json:"stack,omitempty"`
}

// Error renders "type: message [code]". The internal type is left out
// since it adds nothing to the message.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	if e.Type != "" && e.Type != "internal" {
		fmt.Fprintf(&b, "%s: ", e.Type)
	}
	b.WriteString(e.Message)
	if e.Code != "" {
		fmt.Fprintf(&b, " [%s]", e.Code)
	}
	return b.String()
}
