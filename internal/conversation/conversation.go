package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"persona-chatter/internal/llm"
)

// Interaction is the outcome of one successful round trip.
type Interaction struct {
	RequestJSON  string
	ResponseJSON string
	Reply        string
}

// Conversation drives round trips for a single session. It is not safe for
// concurrent use; the owning session serializes calls.
type Conversation struct {
	transport   llm.Transport
	logger      *slog.Logger
	system      string
	doc         Document
	lastRequest string
}

func New(transport llm.Transport, logger *slog.Logger) *Conversation {
	if logger == nil {
		logger = slog.Default()
	}
	return &Conversation{transport: transport, logger: logger}
}

// SetSystemInstruction sets the instruction sent with the first turn. It has
// no effect once a turn has been committed.
func (c *Conversation) SetSystemInstruction(text string) {
	if !c.doc.IsEmpty() {
		return
	}
	c.system = text
}

// Document returns the committed document.
func (c *Conversation) Document() Document { return c.doc }

// LastRequest returns the rendered request of the most recent attempt,
// successful or not.
func (c *Conversation) LastRequest() string { return c.lastRequest }

// Send appends text as a user turn, posts the whole conversation and, on
// success, commits the user turn and the model's turn together. On any error
// the committed document is left as it was.
func (c *Conversation) Send(ctx context.Context, text string) (Interaction, error) {
	var (
		candidate Document
		err       error
	)
	if c.doc.IsEmpty() {
		candidate, err = Start(c.system, text)
	} else {
		candidate, err = c.doc.AppendUser(text)
	}
	if err != nil {
		return Interaction{}, err
	}

	body, err := candidate.Bytes()
	if err != nil {
		return Interaction{}, fmt.Errorf("encode request: %w", err)
	}
	c.lastRequest = candidate.Render()

	c.logger.Debug("sending generateContent request", "turns", candidate.Len(), "bytes", len(body))
	resp, err := c.transport.Post(ctx, body)
	if err != nil {
		return Interaction{}, &TransportError{Status: resp.Status, RequestJSON: c.lastRequest, ResponseBody: string(resp.Body), Err: err}
	}
	if resp.Status != http.StatusOK {
		c.logger.Warn("generateContent rejected", "status", resp.Status)
		return Interaction{}, &TransportError{Status: resp.Status, RequestJSON: c.lastRequest, ResponseBody: string(resp.Body)}
	}

	turn, reply, err := ExtractReply(resp.Body)
	if err != nil {
		return Interaction{}, err
	}

	c.doc = candidate.AppendModel(turn)
	return Interaction{
		RequestJSON:  c.lastRequest,
		ResponseJSON: string(resp.Body),
		Reply:        reply,
	}, nil
}
