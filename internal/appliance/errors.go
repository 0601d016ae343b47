package appliance

import (
	"fmt"
	"strings"
)

// MissingFieldsMessage is the user-facing warning for incomplete submissions.
const MissingFieldsMessage = "Please fill in all the required fields before diagnosing."

// ValidationError rejects a submission before any generation call is made.
type ValidationError struct {
	Missing []string
	Reason  string
}

func (e *ValidationError) Error() string {
	switch {
	case len(e.Missing) > 0 && e.Reason != "":
		return fmt.Sprintf("invalid request: missing %s: %s", strings.Join(e.Missing, ", "), e.Reason)
	case len(e.Missing) > 0:
		return fmt.Sprintf("invalid request: missing %s", strings.Join(e.Missing, ", "))
	case e.Reason != "":
		return "invalid request: " + e.Reason
	default:
		return "invalid request"
	}
}

// UserMessage is the text shown to the person who submitted the request.
func (e *ValidationError) UserMessage() string {
	if len(e.Missing) > 0 {
		return MissingFieldsMessage
	}
	if e.Reason != "" {
		return e.Reason
	}
	return MissingFieldsMessage
}
