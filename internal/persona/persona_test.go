package persona

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	cases := map[string]Code{"poet": Poet, " Guide ": Guide, "ASSISTANT": Assistant, "translator": Translator}
	for in, want := range cases {
		got, ok := Parse(in)
		if !ok || got != want {
			t.Fatalf("Parse(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := Parse("PIRATE"); ok {
		t.Fatalf("unknown code accepted")
	}
}

func TestLookup_FallbackForUnknown(t *testing.T) {
	s := NewStore()
	p := s.Lookup(Code("PIRATE"))
	if p.Code != Fallback {
		t.Fatalf("expected fallback %s, got %s", Fallback, p.Code)
	}
	if s.Lookup(Poet).Code != Poet {
		t.Fatalf("known code not resolved")
	}
}

func TestAll_OrderAndContent(t *testing.T) {
	all := NewStore().All()
	if len(all) != 4 {
		t.Fatalf("expected 4 personas, got %d", len(all))
	}
	want := []Code{Assistant, Translator, Guide, Poet}
	for i, p := range all {
		if p.Code != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], p.Code)
		}
		if p.DisplayName == "" || strings.TrimSpace(p.Instruction) == "" {
			t.Fatalf("persona %s incomplete", p.Code)
		}
	}
	if !Default.Valid() || !Fallback.Valid() {
		t.Fatalf("default and fallback must be known codes")
	}
}

func TestLoadStore_Overrides(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "GUIDE.txt"), []byte("You guide hikers.\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "POET.txt"), []byte("   \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s, err := LoadStore(dir, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := s.Lookup(Guide).Instruction; got != "You guide hikers.\n" {
		t.Fatalf("override not applied: %q", got)
	}
	if s.Lookup(Poet).Instruction != builtin[Poet].Instruction {
		t.Fatalf("empty override should keep builtin")
	}
	if builtin[Guide].Instruction == "You guide hikers.\n" {
		t.Fatalf("override leaked into builtin table")
	}
}

func TestLoadStore_EmptyDir(t *testing.T) {
	s, err := LoadStore("", nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Lookup(Assistant).Instruction != builtin[Assistant].Instruction {
		t.Fatalf("builtin text expected")
	}
}
