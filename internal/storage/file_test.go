package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileRecorder_AppendAndLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nested", "log.jsonl")
	rec, err := NewFileRecorder(p)
	if err != nil {
		t.Fatalf("init recorder: %v", err)
	}

	ev1 := Event{Timestamp: time.Unix(1, 0).UTC(), SessionID: "a", Persona: "POET", UserMessage: "hi", AssistantResponse: "hello"}
	ev2 := Event{Timestamp: time.Unix(2, 0).UTC(), SessionID: "b", Persona: "GUIDE", UserMessage: "Paris", AssistantResponse: "Louvre", RequestJSON: "{\n  \"contents\": []\n}"}
	if err := rec.AppendInteraction(ev1); err != nil {
		t.Fatalf("append1: %v", err)
	}
	if err := rec.AppendInteraction(ev2); err != nil {
		t.Fatalf("append2: %v", err)
	}

	events, err := rec.LoadInteractions()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("want 2, got %d", len(events))
	}
	if events[0].SessionID != "a" || events[1].SessionID != "b" {
		t.Fatalf("order mismatch: %+v", events)
	}
	if events[1].RequestJSON != ev2.RequestJSON {
		t.Fatalf("multi-line request JSON not preserved: %q", events[1].RequestJSON)
	}

	st, err := os.Stat(p)
	if err != nil || st.Size() == 0 {
		t.Fatalf("file not written")
	}
}

func TestFileRecorder_SkipsCorruptLines(t *testing.T) {
	p := filepath.Join(t.TempDir(), "log.jsonl")
	if err := os.WriteFile(p, []byte("not json\n\n{\"session_id\":\"x\"}\n"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	rec, err := NewFileRecorder(p)
	if err != nil {
		t.Fatalf("init recorder: %v", err)
	}
	events, err := rec.LoadInteractions()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(events) != 1 || events[0].SessionID != "x" {
		t.Fatalf("unexpected events: %+v", events)
	}
}
