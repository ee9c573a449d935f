package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/adk"
	"github.com/cloudwego/eino/schema"

	callvu "github.com/doronro/call-vu-management-studio"
	"github.com/doronro/call-vu-management-studio/format"
)

var _ adk.Agent = (*Agent)(nil)

// Agent exposes a Stepper as an adk.Agent so a form conversation can run
// under an adk.Runner next to other agents. Each Run consumes the latest
// user turn and replies with every bot message the turn produced.
type Agent struct {
	name            string
	description     string
	stepper         *Stepper
	parser          *StaticCommandParser
	interpret       func(callvu.Field, string) (any, bool)
	interpretSource Source
}

type AgentOption func(*Agent)

// WithInputInterpreter maps raw user text to a typed answer before it is
// submitted, tagging matched turns with the given source. Voice deployments
// pass the spoken-answer interpreter here; unmatched input falls through as
// manual text.
func WithInputInterpreter(fn func(callvu.Field, string) (any, bool), source Source) AgentOption {
	return func(a *Agent) {
		a.interpret = fn
		a.interpretSource = source
	}
}

func NewAgent(name, description string, stepper *Stepper, opts ...AgentOption) *Agent {
	a := &Agent{
		name:        name,
		description: description,
		stepper:     stepper,
		parser:      NewStaticCommandParser(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

func (a *Agent) Name(ctx context.Context) string {
	return a.name
}

func (a *Agent) Description(ctx context.Context) string {
	return a.description
}

func (a *Agent) Run(ctx context.Context, input *adk.AgentInput, options ...adk.AgentRunOption) *adk.AsyncIterator[*adk.AgentEvent] {
	iter, gen := adk.NewAsyncIteratorPair[*adk.AgentEvent]()
	go func() {
		defer func() {
			e := recover()
			if e != nil {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("recover from panic: %v", e),
				})
			}
			gen.Close()
		}()

		before := len(a.stepper.Messages())

		if !a.stepper.Started() {
			a.stepper.Start(ctx)
		} else {
			if len(input.Messages) == 0 {
				gen.Send(&adk.AgentEvent{
					Err: fmt.Errorf("no messages in input"),
				})
				return
			}
			userInput := input.Messages[len(input.Messages)-1].Content
			if err := a.consume(ctx, userInput); err != nil {
				gen.Send(&adk.AgentEvent{
					Output: &adk.AgentOutput{
						MessageOutput: &adk.MessageVariant{
							Message: schema.AssistantMessage(err.Error(), nil),
							Role:    schema.Assistant,
						},
					},
				})
				return
			}
		}

		reply := a.reply(before)
		gen.Send(&adk.AgentEvent{
			Output: &adk.AgentOutput{
				MessageOutput: &adk.MessageVariant{
					IsStreaming: false,
					Message:     schema.AssistantMessage(reply, nil),
					Role:        schema.Assistant,
				},
			},
		})
	}()
	return iter
}

func (a *Agent) consume(ctx context.Context, userInput string) error {
	cmd, _ := a.parser.ParseCommand(userInput)
	if cmd == CommandSkip {
		return a.stepper.Skip(ctx)
	}
	if a.interpret != nil {
		if field, ok := a.stepper.CurrentField(); ok {
			if value, matched := a.interpret(field, userInput); matched {
				return a.stepper.SubmitAnswer(ctx, value, a.interpretSource)
			}
		}
	}
	return a.stepper.SubmitAnswer(ctx, userInput, SourceManual)
}

// reply joins every bot message emitted since the turn began, rendering the
// summary as the sectioned markdown table.
func (a *Agent) reply(since int) string {
	var parts []string
	for _, msg := range a.stepper.Messages()[since:] {
		if msg.Sender != SenderBot {
			continue
		}
		switch msg.Kind {
		case KindSummary:
			if table := format.RenderSummaryTable(msg.Summary); table != "" {
				parts = append(parts, table)
			}
		default:
			parts = append(parts, msg.Text)
		}
	}
	return strings.Join(parts, "\n")
}
