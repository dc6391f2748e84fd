package llm

import (
	"context"
	"fmt"
	"strings"
)

// Mock answers without calling a model, for local runs and tests.
type Mock struct{}

func (Mock) Name() string { return "mock" }

func (Mock) Generate(_ context.Context, question string) (string, error) {
	prompt, err := buildPrompt(question)
	if err != nil {
		return "", err
	}
	subject := strings.TrimSuffix(strings.TrimPrefix(prompt.User, "What if "), " happened?")
	var sb strings.Builder
	fmt.Fprintf(&sb, "Scenario: Imagine a world where %s.\n\n", subject)
	sb.WriteString("Consequences:\n")
	sb.WriteString("- Daily routines adapt to the new normal.\n")
	sb.WriteString("- Institutions scramble to rewrite their rules.\n")
	sb.WriteString("- Storytellers find a fresh source of material.\n\n")
	sb.WriteString("Analysis: Small changes ripple outward; the interesting part is which habits survive.")
	return sb.String(), nil
}
