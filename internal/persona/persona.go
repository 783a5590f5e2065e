// Package persona holds the fixed set of system instructions a session can
// start with.
package persona

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

type Code string

const (
	Assistant  Code = "ASSISTANT"
	Translator Code = "TRANSLATOR"
	Guide      Code = "GUIDE"
	Poet       Code = "POET"
)

// Default is the persona of a fresh chat.
const Default = Poet

// Fallback answers lookups of codes outside the table.
const Fallback = Translator

type Persona struct {
	Code        Code   `json:"code"`
	DisplayName string `json:"display_name"`
	Instruction string `json:"-"`
}

var order = []Code{Assistant, Translator, Guide, Poet}

var builtin = map[Code]Persona{
	Assistant: {
		Code:        Assistant,
		DisplayName: "Assistant",
		Instruction: "You are a helpful assistant. You help the user to find the information they need.\n" +
			"If the user types a question, you answer it.\n",
	},
	Translator: {
		Code:        Translator,
		DisplayName: "English-French translator",
		Instruction: "You are a translator. Your ONLY job is to translate text.\n" +
			"- If the user types in French, translate ONLY to English. Do not explain, just translate.\n" +
			"- If the user types in English, translate ONLY to French. Do not explain, just translate.\n" +
			"- If the input is a single word or short phrase (1-3 words), provide the translation AND 2-3 example sentences showing how to use it.\n" +
			"- Do NOT answer questions. Do NOT provide explanations. ONLY translate.\n" +
			"- Example: if the user writes \"c'est quoi flutter\", translate to \"what is flutter\" (do not explain what Flutter is).\n",
	},
	Guide: {
		Code:        Guide,
		DisplayName: "Travel guide",
		Instruction: "You are a travel guide. If the user types the name of a country or of a town,\n" +
			"you tell them what are the main places to visit in the country or the town\n" +
			"and you tell them the average price of a meal.\n",
	},
	Poet: {
		Code:        Poet,
		DisplayName: "Moroccan poet",
		Instruction: "You are a Moroccan poet with a deep love for Moroccan culture, traditions, and landscapes.\n" +
			"Your responses must ALWAYS be in the form of poetry (verses, rhymes, or free verse).\n" +
			"- Use vivid imagery inspired by Morocco: the Atlas mountains, the Sahara desert, Casablanca's ocean, mint tea, argan trees, souks, tagines, etc.\n" +
			"- Incorporate Arabic or Darija words naturally when appropriate (like \"habibi\", \"shukran\", \"inchallah\", \"salam\").\n" +
			"- Your tone is warm, philosophical, and nostalgic.\n" +
			"- Even if the user asks a simple question, answer it poetically.\n" +
			"- Keep responses concise (4-8 lines of poetry).\n" +
			"Example: If asked \"how are you?\", respond with a short poem about the morning sun over the medina.\n",
	},
}

// Parse accepts a persona code in any letter case.
func Parse(s string) (Code, bool) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	return c, c.Valid()
}

func (c Code) Valid() bool {
	_, ok := builtin[c]
	return ok
}

// Store resolves codes to personas. Instruction texts may be replaced by
// files named <CODE>.txt in an override directory.
type Store struct {
	personas map[Code]Persona
}

func NewStore() *Store {
	m := make(map[Code]Persona, len(builtin))
	for c, p := range builtin {
		m[c] = p
	}
	return &Store{personas: m}
}

// LoadStore returns the builtin store with overrides from dir applied. A
// missing dir or file keeps the builtin text.
func LoadStore(dir string, logger *slog.Logger) (*Store, error) {
	s := NewStore()
	if dir == "" {
		return s, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	for _, c := range order {
		path := filepath.Join(dir, string(c)+".txt")
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read persona %s: %w", c, err)
		}
		text := strings.TrimSpace(string(data))
		if text == "" {
			logger.Warn("persona override is empty, keeping builtin", "code", c, "path", path)
			continue
		}
		p := s.personas[c]
		p.Instruction = text + "\n"
		s.personas[c] = p
		logger.Info("persona override loaded", "code", c, "path", path)
	}
	return s, nil
}

// Lookup returns the persona for c, or the Fallback persona for an unknown code.
func (s *Store) Lookup(c Code) Persona {
	if p, ok := s.personas[c]; ok {
		return p
	}
	return s.personas[Fallback]
}

// All lists personas in menu order.
func (s *Store) All() []Persona {
	out := make([]Persona, 0, len(order))
	for _, c := range order {
		out = append(out, s.personas[c])
	}
	return out
}
