// Package session implements one user's chat: persona selection, the
// transcript, debug texts and the conversation sent to the model.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"persona-chatter/internal/conversation"
	"persona-chatter/internal/llm"
	"persona-chatter/internal/persona"
	"persona-chatter/internal/storage"
)

type State string

const (
	StateFresh  State = "fresh"
	StateActive State = "active"
)

// Deps are shared by every session of a process.
type Deps struct {
	Personas  *persona.Store
	Transport llm.Transport
	Recorder  storage.Recorder
	Logger    *slog.Logger
	Clock     func() time.Time
	// Debug is the debug flag of a new session.
	Debug bool
}

func (d Deps) withDefaults() Deps {
	if d.Personas == nil {
		d.Personas = persona.NewStore()
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	return d
}

// View is a snapshot of what a presentation layer displays.
type View struct {
	ID                string       `json:"id"`
	State             State        `json:"state"`
	Persona           persona.Code `json:"persona"`
	PersonaName       string       `json:"persona_name"`
	PersonaChangeable bool         `json:"persona_changeable"`
	Transcript        string       `json:"transcript"`
	LastReply         string       `json:"last_reply,omitempty"`
	LastRequestJSON   string       `json:"last_request_json,omitempty"`
	LastResponseJSON  string       `json:"last_response_json,omitempty"`
	Debug             bool         `json:"debug"`
	Turns             int          `json:"turns"`
}

// Session serializes submissions: one is fully processed before the next
// starts.
type Session struct {
	id   string
	deps Deps

	mu           sync.Mutex
	persona      persona.Code
	changeable   bool
	conv         *conversation.Conversation
	transcript   strings.Builder
	lastReply    string
	lastRequest  string
	lastResponse string
	debug        bool

	lastActive atomic.Int64
}

func New(id string, deps Deps) *Session {
	s := &Session{id: id, deps: deps.withDefaults(), debug: deps.Debug}
	s.reset()
	s.touch()
	return s
}

func (s *Session) ID() string { return s.id }

// Submit sends text to the model and returns its reply. Failures come back
// as *Notice; they never end the session and the user may simply retry.
func (s *Session) Submit(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	defer s.touch()

	if strings.TrimSpace(text) == "" {
		return "", noticeFor(ErrEmptyMessage)
	}

	p := s.deps.Personas.Lookup(s.persona)
	first := s.conv.Document().IsEmpty()
	if first {
		s.conv.SetSystemInstruction(p.Instruction)
	}

	sent := Annotate(text, s.deps.Clock())
	in, err := s.conv.Send(ctx, sent)
	if err != nil {
		n := noticeFor(err)
		s.lastReply = ErrorReply
		s.lastRequest = s.conv.LastRequest()
		s.lastResponse = debugDetail(err)
		s.deps.Logger.Warn("submission failed", "session", s.id, "kind", n.Kind.String(), "error", err)
		return "", n
	}

	s.changeable = false
	if first {
		s.transcript.WriteString("== Persona: ")
		s.transcript.WriteString(p.DisplayName)
		s.transcript.WriteString("\n")
		s.transcript.WriteString(p.Instruction)
		s.transcript.WriteString("\n\n")
	}
	s.transcript.WriteString("== User:\n")
	s.transcript.WriteString(text)
	s.transcript.WriteString("\n\n== Assistant:\n")
	s.transcript.WriteString(in.Reply)
	s.transcript.WriteString("\n\n")

	s.lastReply = in.Reply
	s.lastRequest = in.RequestJSON
	s.lastResponse = in.ResponseJSON

	if s.deps.Recorder != nil {
		ev := storage.Event{
			Timestamp:         s.deps.Clock().UTC(),
			SessionID:         s.id,
			Persona:           string(p.Code),
			UserMessage:       text,
			SentMessage:       sent,
			AssistantResponse: in.Reply,
			RequestJSON:       in.RequestJSON,
			ResponseJSON:      in.ResponseJSON,
		}
		if err := s.deps.Recorder.AppendInteraction(ev); err != nil {
			s.deps.Logger.Warn("failed to record interaction", "session", s.id, "error", err)
		}
	}

	s.deps.Logger.Info("exchange completed", "session", s.id, "persona", p.Code, "turns", s.conv.Document().Len())
	return in.Reply, nil
}

// NewChat discards the conversation and returns the session to its initial
// state. The debug flag is a display preference and survives.
func (s *Session) NewChat() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	s.touch()
}

func (s *Session) reset() {
	s.persona = persona.Default
	s.changeable = true
	s.conv = conversation.New(s.deps.Transport, s.deps.Logger)
	s.transcript.Reset()
	s.lastReply = ""
	s.lastRequest = ""
	s.lastResponse = ""
}

// SelectPersona changes the persona while no exchange has succeeded yet.
func (s *Session) SelectPersona(code string) error {
	c, ok := persona.Parse(code)
	if !ok {
		return ErrUnknownPersona
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.changeable {
		return ErrPersonaLocked
	}
	s.persona = c
	s.touch()
	return nil
}

func (s *Session) ToggleDebug() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debug = !s.debug
	return s.debug
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := StateFresh
	if !s.changeable {
		state = StateActive
	}
	return View{
		ID:                s.id,
		State:             state,
		Persona:           s.persona,
		PersonaName:       s.deps.Personas.Lookup(s.persona).DisplayName,
		PersonaChangeable: s.changeable,
		Transcript:        s.transcript.String(),
		LastReply:         s.lastReply,
		LastRequestJSON:   s.lastRequest,
		LastResponseJSON:  s.lastResponse,
		Debug:             s.debug,
		Turns:             s.conv.Document().Len(),
	}
}

// Document returns the committed conversation document.
func (s *Session) Document() conversation.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Document()
}

// LastActive does not block on an in-flight submission.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

func (s *Session) touch() {
	s.lastActive.Store(s.deps.Clock().UnixNano())
}
