package session

import (
	"errors"

	"persona-chatter/internal/conversation"
)

var (
	ErrEmptyMessage   = errors.New("message text is empty")
	ErrPersonaLocked  = errors.New("persona cannot change once the conversation has started")
	ErrUnknownPersona = errors.New("unknown persona")
)

// ErrorReply replaces the model's reply after a failed submission.
const ErrorReply = "ERROR: see the message above."

type Kind int

const (
	KindValidation Kind = iota
	KindTransport
	KindMalformed
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	case KindMalformed:
		return "malformed_response"
	default:
		return "internal"
	}
}

// Notice is the user-facing form of a failed submission.
type Notice struct {
	Kind    Kind
	Summary string
	Detail  string
	Err     error
}

func (n *Notice) Error() string {
	return n.Summary + ": " + n.Err.Error()
}

func (n *Notice) Unwrap() error { return n.Err }

func noticeFor(err error) *Notice {
	var (
		tErr *conversation.TransportError
		mErr *conversation.MalformedResponseError
	)
	switch {
	case errors.Is(err, ErrEmptyMessage), errors.Is(err, conversation.ErrInvalidInput):
		return &Notice{
			Kind:    KindValidation,
			Summary: "Empty message",
			Detail:  "The message text is missing.",
			Err:     err,
		}
	case errors.As(err, &tErr):
		return &Notice{
			Kind:    KindTransport,
			Summary: "Problem connecting to the LLM API",
			Detail:  "Problem connecting to the LLM API: " + tErr.Error(),
			Err:     err,
		}
	case errors.As(err, &mErr):
		return &Notice{
			Kind:    KindMalformed,
			Summary: "The model returned no usable reply",
			Detail:  "The model returned no usable reply: " + mErr.Reason,
			Err:     err,
		}
	default:
		return &Notice{
			Kind:    KindInternal,
			Summary: "Unexpected error",
			Detail:  "Unexpected error: " + err.Error(),
			Err:     err,
		}
	}
}

// debugDetail is what the debug response field shows after a failure.
func debugDetail(err error) string {
	var (
		tErr *conversation.TransportError
		mErr *conversation.MalformedResponseError
	)
	switch {
	case errors.As(err, &tErr):
		return "Error: " + tErr.Detail()
	case errors.As(err, &mErr):
		return "Error: " + mErr.Detail()
	default:
		return "Error: " + err.Error()
	}
}
