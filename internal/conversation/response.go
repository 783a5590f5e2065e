package conversation

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

func jsonValid(s string) bool { return gjson.Valid(s) }

// ExtractReply reads the first candidate's content object from a
// generateContent response and returns it as a model turn together with the
// text of its first part.
func ExtractReply(body []byte) (Turn, string, error) {
	raw := string(body)
	if !gjson.ValidBytes(body) {
		return Turn{}, "", &MalformedResponseError{Reason: "response is not valid JSON", Body: raw}
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return Turn{}, "", &MalformedResponseError{Reason: "response is not a JSON object", Body: raw}
	}

	candidates := root.Get("candidates")
	if !candidates.IsArray() || len(candidates.Array()) == 0 {
		reason := "no candidates returned, content blocked or empty"
		if block := root.Get("promptFeedback.blockReason"); block.Exists() {
			reason = fmt.Sprintf("no candidates returned, prompt blocked: %s", block.String())
		}
		return Turn{}, "", &MalformedResponseError{Reason: reason, Body: raw}
	}

	first := candidates.Array()[0]
	content := first.Get("content")
	if !content.IsObject() {
		reason := "first candidate has no content"
		if fr := first.Get("finishReason"); fr.Exists() {
			reason = fmt.Sprintf("first candidate has no content, finish reason: %s", fr.String())
		}
		return Turn{}, "", &MalformedResponseError{Reason: reason, Body: raw}
	}
	text := content.Get("parts.0.text")
	if text.Type != gjson.String {
		return Turn{}, "", &MalformedResponseError{Reason: "first candidate has no text part", Body: raw}
	}

	var turn Turn
	if err := json.Unmarshal([]byte(content.Raw), &turn); err != nil {
		return Turn{}, "", &MalformedResponseError{Reason: fmt.Sprintf("decode content: %v", err), Body: raw}
	}
	if turn.Role == "" {
		turn.Role = RoleModel
	}
	return turn, text.String(), nil
}
