package pipeline

import (
	"context"
	"fmt"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/provider"
)

// Persona ids.
const (
	PersonaPragmatist   = "pragmatist"
	PersonaSkeptic      = "skeptic"
	PersonaNovice       = "novice"
	PersonaRelationship = "relationship"
	PersonaStructured   = "structured"
)

// Persona is a simulated reader with a fixed point of view.
type Persona struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Emoji  string `json:"emoji"`
	prompt string
}

var personas = []Persona{
	{
		ID: PersonaPragmatist, Name: "Der Pragmatiker", Role: "Praxisorientierte Lehrkraft", Emoji: "🛠️",
		prompt: `Du bist "Der Pragmatiker", eine erfahrene Lehrkraft, die nur an direkter Umsetzbarkeit interessiert ist.
Dein Tonfall: direkt, lösungsorientiert, bei Theorie manchmal ungeduldig.
Deine Brille: "Kann ich das morgen früh um 8 Uhr im Unterricht nutzen?"
Prüfe: Ist es sofort anwendbar? Fehlen Materialien oder konkrete Schritte? Ist es zu theoretisch?`,
	},
	{
		ID: PersonaSkeptic, Name: "Der Skeptiker", Role: "Kritische Lehrkraft", Emoji: "🤨",
		prompt: skepticPrompt,
	},
	{
		ID: PersonaNovice, Name: "Der Neuling", Role: "Berufseinsteiger", Emoji: "🌱",
		prompt: `Du bist "Der Neuling", eine junge Lehrkraft im Referendariat, die Sicherheit und Struktur sucht.
Dein Tonfall: unsicher, dankbar für Klarheit, verwirrt bei Fachjargon.
Deine Brille: "Ich verstehe das nicht ganz. Wie genau fange ich an?"
Prüfe: Sind Fachbegriffe erklärt? Ist der rote Faden klar? Fühle ich mich sicher genug, es auszuprobieren?`,
	},
	{
		ID: PersonaRelationship, Name: "Der Beziehungsmensch", Role: "Empathische Lehrkraft", Emoji: "❤️",
		prompt: `Du bist "Der Beziehungsmensch", eine Lehrkraft, für die das Wohl der Schüler an erster Stelle steht.
Dein Tonfall: warmherzig, emotional, schülerzentriert.
Deine Brille: "Wie fühlen sich die Schüler dabei? Wo bleibt der Mensch?"
Prüfe: Wird auf Emotionen und Beziehungen eingegangen? Ist es zu viel Leistungsdruck? Wo bleibt die Freude am Lernen?`,
	},
	{
		ID: PersonaStructured, Name: "Der Strukturierte", Role: "Ordnungsliebende Lehrkraft", Emoji: "📏",
		prompt: `Du bist "Der Strukturierte", eine Lehrkraft, die klare Regeln, Fairness und Ordnung liebt.
Dein Tonfall: sachlich, präzise, fordert Eindeutigkeit.
Deine Brille: "Ist das gerecht bewertbar? Sind die Vorgaben klar?"
Prüfe: Sind Aufgabenstellungen eindeutig? Gibt es klare Bewertungskriterien? Ist der Ablauf logisch und lückenlos?`,
	},
}

// Personas returns the available personas in display order.
func Personas() []Persona {
	out := make([]Persona, len(personas))
	copy(out, personas)
	return out
}

// LookupPersona returns the persona with id.
func LookupPersona(id string) (Persona, bool) {
	for _, p := range personas {
		if p.ID == id {
			return p, true
		}
	}
	return Persona{}, false
}

// PersonaFeedback is a persona's four-part reaction.
type PersonaFeedback struct {
	Reaction   string `json:"reaction"`
	Critique   string `json:"critique"`
	Praise     string `json:"praise"`
	Suggestion string `json:"suggestion"`
}

// PersonaResult pairs the persona with its reaction.
type PersonaResult struct {
	Persona  Persona         `json:"persona"`
	Feedback PersonaFeedback `json:"feedback"`
}

// PersonaFeedback lets the persona with personaID react to content. The skeptic
// checks facts through the search provider; every other persona uses the
// reasoning provider.
func (o *Orchestrator) PersonaFeedback(ctx context.Context, personaID, content string) (*PersonaResult, error) {
	p, ok := LookupPersona(personaID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown persona %q", apperr.ErrInvalidInput, personaID)
	}

	target := o.reasoner
	system := p.prompt + "\n\n" + personaFormat
	req := provider.Request{Temperature: provider.Temperature(0.7)}
	if p.ID == PersonaSkeptic {
		target = o.searcher
		system = p.prompt
		req = provider.Request{}
	}

	fb, err := askJSON[PersonaFeedback](ctx, o, target, "persona."+p.ID, system, truncate(content, budgetPersona), req)
	if err != nil {
		return nil, fmt.Errorf("persona feedback: %w", err)
	}
	return &PersonaResult{Persona: p, Feedback: fb}, nil
}
