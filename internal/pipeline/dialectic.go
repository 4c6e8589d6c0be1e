package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/provider"
)

// reflectionQuestions is the number of questions every dialectic result carries.
const reflectionQuestions = 3

// fallbackQuestions fill up a reply with fewer than three usable questions.
var fallbackQuestions = []string{
	"Welche Annahme der These hältst du nach der Antithese noch für tragfähig?",
	"Wo begegnet dir die Spannung zwischen These und Antithese in deinem eigenen Alltag?",
	"Was müsste geschehen, damit die Synthese für dich praktisch wird?",
}

// DialecticResult combines thesis, antithesis and synthesis.
type DialecticResult struct {
	Thesis              string   `json:"thesis"`
	Antithesis          string   `json:"antithesis"`
	Synthesis           string   `json:"synthesis"`
	ReflectionQuestions []string `json:"reflection_questions"`
}

// Dialectic asks the search provider for a sourced antithesis to thesis, then
// the reasoning provider for a synthesis and reflection questions.
func (o *Orchestrator) Dialectic(ctx context.Context, thesis string) (*DialecticResult, error) {
	anti, err := o.ask(ctx, o.searcher, "dialectic.antithesis", fmt.Sprintf(antithesisPrompt, thesis), thesis, provider.Request{})
	if err != nil {
		return nil, &StageError{Stage: StageAntithesis, Err: err}
	}

	syn, err := askJSON[struct {
		Synthesis           string            `json:"synthesis"`
		ReflectionQuestions models.StringList `json:"reflection_questions"`
	}](ctx, o, o.reasoner, "dialectic.synthesis", fmt.Sprintf(synthesisPrompt, thesis, anti.Content), "Synthetisiere dies.", provider.Request{})
	if err != nil {
		return nil, &StageError{Stage: StageSynthesis, Err: err}
	}

	questions := make([]string, 0, reflectionQuestions)
	for _, q := range syn.ReflectionQuestions {
		if q = strings.TrimSpace(q); q != "" && len(questions) < reflectionQuestions {
			questions = append(questions, q)
		}
	}
	for _, q := range fallbackQuestions {
		if len(questions) == reflectionQuestions {
			break
		}
		if !slices.Contains(questions, q) {
			questions = append(questions, q)
		}
	}
	return &DialecticResult{
		Thesis:              thesis,
		Antithesis:          anti.Content,
		Synthesis:           syn.Synthesis,
		ReflectionQuestions: questions,
	}, nil
}
