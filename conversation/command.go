package conversation

import "strings"

// Command is a conversational control word recognized in free-text input
// before it is treated as an answer.
type Command string

const (
	CommandSkip     Command = "skip"
	CommandQuestion Command = "question"
	CommandNone     Command = "none"
)

// StaticCommandParser recognizes control input by keyword. Anything starting
// with a question prefix is routed to the knowledge assistant instead of
// being recorded as an answer.
type StaticCommandParser struct {
	SkipKeywords     []string
	QuestionPrefixes []string
}

func NewStaticCommandParser() *StaticCommandParser {
	return &StaticCommandParser{
		SkipKeywords:     []string{"skip", "pass", "next"},
		QuestionPrefixes: []string{"?", "help:"},
	}
}

func (p *StaticCommandParser) ParseCommand(input string) (Command, string) {
	normalized := strings.ToLower(strings.TrimSpace(input))

	for _, keyword := range p.SkipKeywords {
		if normalized == keyword {
			return CommandSkip, ""
		}
	}

	trimmed := strings.TrimSpace(input)
	for _, prefix := range p.QuestionPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			question := strings.TrimSpace(trimmed[len(prefix):])
			if question != "" {
				return CommandQuestion, question
			}
		}
	}

	return CommandNone, ""
}
