// Package conversation owns the generateContent request document: the
// one-time system instruction followed by every user and model turn of a
// session, replayed in full on each call because the provider keeps no
// conversation state of its own.
package conversation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Part struct {
	Text string `json:"text"`
}

type Content struct {
	Role  Role   `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Turn is one entry of "contents". Model turns keep the provider's content
// object as received so the next request replays what was returned.
type Turn struct {
	Role Role
	Text string
	raw  json.RawMessage
}

func newUserTurn(text string) Turn {
	raw, _ := encode(Content{Role: RoleUser, Parts: []Part{{Text: text}}}, false)
	return Turn{Role: RoleUser, Text: text, raw: raw}
}

func (t Turn) MarshalJSON() ([]byte, error) {
	if len(t.raw) == 0 {
		return encode(Content{Role: t.Role, Parts: []Part{{Text: t.Text}}}, false)
	}
	return t.raw, nil
}

func (t *Turn) UnmarshalJSON(b []byte) error {
	var c Content
	if err := json.Unmarshal(b, &c); err != nil {
		return err
	}
	t.Role = c.Role
	t.Text = ""
	if len(c.Parts) > 0 {
		t.Text = c.Parts[0].Text
	}
	t.raw = append(json.RawMessage(nil), b...)
	return nil
}

// Raw returns a copy of the turn's JSON object.
func (t Turn) Raw() json.RawMessage {
	b, _ := t.MarshalJSON()
	return append(json.RawMessage(nil), b...)
}

// Document is the whole request body. Values are never modified in place:
// every append returns a new Document sharing nothing mutable with the old one.
type Document struct {
	SystemInstruction *Content `json:"systemInstruction,omitempty"`
	Contents          []Turn   `json:"contents"`
}

// Start builds the first request of a conversation. The system instruction
// is attached only when it holds non-blank text.
func Start(systemInstruction, firstUserText string) (Document, error) {
	if isBlank(firstUserText) {
		return Document{}, fmt.Errorf("%w: first user message is empty", ErrInvalidInput)
	}
	var doc Document
	if !isBlank(systemInstruction) {
		doc.SystemInstruction = &Content{Parts: []Part{{Text: systemInstruction}}}
	}
	doc.Contents = []Turn{newUserTurn(firstUserText)}
	return doc, nil
}

// AppendUser returns a copy of d with a user turn appended to contents.
func (d Document) AppendUser(text string) (Document, error) {
	if isBlank(text) {
		return d, fmt.Errorf("%w: user message is empty", ErrInvalidInput)
	}
	return d.with(newUserTurn(text)), nil
}

// AppendModel returns a copy of d with the provider's turn appended verbatim.
func (d Document) AppendModel(turn Turn) Document {
	return d.with(turn)
}

func (d Document) with(turn Turn) Document {
	contents := make([]Turn, len(d.Contents), len(d.Contents)+1)
	copy(contents, d.Contents)
	d.Contents = append(contents, turn)
	return d
}

// IsEmpty reports whether no turn has been recorded yet.
func (d Document) IsEmpty() bool { return len(d.Contents) == 0 }

func (d Document) Len() int { return len(d.Contents) }

// Bytes returns the compact wire form sent to the provider.
func (d Document) Bytes() ([]byte, error) {
	return encode(d, false)
}

// Render returns the document as indented JSON for debug display. The
// zero document renders as "{}".
func (d Document) Render() string {
	if d.IsEmpty() && d.SystemInstruction == nil {
		return "{}"
	}
	b, err := encode(d, true)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ParseDocument reads a compact or rendered document.
func ParseDocument(b []byte) (Document, error) {
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// encode marshals v without HTML escaping so user and model text stay
// readable in the request and its debug rendering.
func encode(v any, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
