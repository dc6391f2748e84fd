package llm

import (
	"fmt"
	"regexp"
	"strings"
)

const systemPrompt = "You are an AI assistant with expertise in physics, philosophy, and science fiction. " +
	"Your task is to help users explore the implications of hypothetical scenarios. " +
	"Describe the consequences, paradoxes, and ethical considerations of each specific scenario in a friendly, engaging, conversational tone, and don't be too wordy.\n\n" +
	"Always answer in exactly three plain-text sections separated by one blank line, with no markdown:\n" +
	"Scenario: <one paragraph setting the scene>\n\n" +
	"Consequences:\n- <consequence>\n- <consequence>\n- <consequence>\n\n" +
	"Analysis: <one paragraph of reflection>"

// Prompt is the message pair sent to a chat model.
type Prompt struct {
	System string
	User   string
}

var (
	whatIfPrefix   = regexp.MustCompile(`(?i)^what\s+if\s+`)
	happenedSuffix = regexp.MustCompile(`(?i)\s+happened$`)
)

// FrameQuestion turns raw user input into the "What if ... happened?" form
// the model is prompted with and the question log stores.
func FrameQuestion(question string) string {
	q := strings.TrimSpace(question)
	q = strings.TrimRight(q, ".?! \t\n")
	q = whatIfPrefix.ReplaceAllString(q, "")
	q = happenedSuffix.ReplaceAllString(q, "")
	return fmt.Sprintf("What if %s happened?", q)
}

func buildPrompt(question string) (Prompt, error) {
	question = clipText(question, maxQuestionChars)
	if question == "" {
		return Prompt{}, fmt.Errorf("question cannot be empty")
	}
	return Prompt{System: systemPrompt, User: FrameQuestion(question)}, nil
}

func clipText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

var (
	headingLabel  = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]*(?:\*\*|__)?(Scenario|Consequences|Analysis)(?:\*\*|__)?[ \t]*:?[ \t]*$`)
	emphasisLabel = regexp.MustCompile(`(?m)^[ \t]*(?:\*\*|__)(Scenario|Consequences|Analysis)(?::(?:\*\*|__)|(?:\*\*|__)[ \t]*:)`)
	bareLabelGap  = regexp.MustCompile(`(?m)^(Scenario|Analysis):\n(?:[ \t]*\n)+`)
	listGap       = regexp.MustCompile(`(?m)^(Consequences:)\n(?:[ \t]*\n)+`)
	bulletMarker  = regexp.MustCompile(`(?m)^[ \t]*[*•+][ \t]+`)
	trailingSpace = regexp.MustCompile(`(?m)[ \t]+$`)
)

// Normalize rewrites the markdown decorations models like to add around the
// section labels into the plain labels clients parse.
func Normalize(raw string) string {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	text = headingLabel.ReplaceAllString(text, "$1:")
	text = emphasisLabel.ReplaceAllString(text, "$1:")
	text = bulletMarker.ReplaceAllString(text, "- ")
	text = trailingSpace.ReplaceAllString(text, "")
	text = bareLabelGap.ReplaceAllString(text, "$1:\n")
	text = listGap.ReplaceAllString(text, "$1\n")
	return strings.TrimSpace(text)
}
