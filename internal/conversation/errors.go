package conversation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/pretty"
)

// ErrInvalidInput is returned when a turn would carry no text.
var ErrInvalidInput = errors.New("invalid input")

// TransportError means the provider could not be reached or answered with a
// non-200 status. RequestJSON and ResponseBody hold exactly what was sent and
// received so the failure can be inspected.
type TransportError struct {
	Status       int
	RequestJSON  string
	ResponseBody string
	Err          error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport failure: %v", e.Err)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Detail renders the full error context: sent request and received body.
func (e *TransportError) Detail() string {
	var b strings.Builder
	b.WriteString(e.Error())
	b.WriteString("\nRequest JSON sent:\n")
	b.WriteString(e.RequestJSON)
	if e.ResponseBody != "" {
		b.WriteString("\nResponse JSON received:\n")
		b.WriteString(prettyBody(e.ResponseBody))
	}
	return b.String()
}

// MalformedResponseError means the exchange succeeded at the HTTP level but
// the body carried no usable reply, typically because content was blocked.
type MalformedResponseError struct {
	Reason string
	Body   string
}

func (e *MalformedResponseError) Error() string {
	return "malformed response: " + e.Reason
}

func (e *MalformedResponseError) Detail() string {
	return e.Error() + "\nResponse JSON received:\n" + prettyBody(e.Body)
}

func prettyBody(body string) string {
	if !jsonValid(body) {
		return body
	}
	return strings.TrimRight(string(pretty.Pretty([]byte(body))), "\n")
}
