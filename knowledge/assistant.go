// Package knowledge answers off-script questions users ask mid-form ("why do
// you need my account number?") without disturbing the stepper's state. It is
// entirely optional: deployments without a chat model simply never construct
// an Assistant.
package knowledge

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// DefaultSystemPromptTemplate frames the model as a side-channel helper: it
// must answer the user's question and send them back to the form, never
// collect answers itself. The "%s" placeholder is the reply language.
const DefaultSystemPromptTemplate = `You are a helpful assistant embedded in a guided form-filling conversation. The user paused the form to ask a question.

- Answer the question briefly and accurately using the form context provided.
- If the question is about a form field, explain what the field is for and what kind of answer is expected.
- Never ask the user for form answers yourself; the form assistant handles that.
- If you don't know, say so plainly.
- Reply in %s.
`

// Answer is the structured reply the model is forced to produce.
type Answer struct {
	Answer       string `json:"answer" jsonschema:"required,description=Concise answer to the user's question"`
	RelatedField string `json:"related_field,omitempty" jsonschema:"description=Identifier of the form field the question was about, if any"`
}

// Request carries the conversation context the assistant may draw on.
type Request struct {
	FormTitle       string
	CurrentQuestion string
	Question        string
}

type Assistant struct {
	lang         string
	systemPrompt string
	chain        *chain[*Request, Answer]
}

type assistantOptions struct {
	lang         string
	systemPrompt string
}

type Option func(*assistantOptions)

// WithLang sets the language used by the default system prompt template.
func WithLang(lang string) Option {
	return func(o *assistantOptions) {
		o.lang = lang
	}
}

// WithSystemPrompt overrides the system prompt entirely.
func WithSystemPrompt(prompt string) Option {
	return func(o *assistantOptions) {
		o.systemPrompt = prompt
	}
}

func NewAssistant(chatModel model.ToolCallingChatModel, opts ...Option) (*Assistant, error) {
	options := assistantOptions{lang: "English"}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	systemPrompt := options.systemPrompt
	if systemPrompt == "" {
		systemPrompt = fmt.Sprintf(DefaultSystemPromptTemplate, options.lang)
	}

	a := &Assistant{
		lang:         options.lang,
		systemPrompt: systemPrompt,
	}
	c, err := newChain[*Request, Answer](
		chatModel,
		a.buildPrompt,
		"answer_user_question",
		"Answer the user's off-script question about the form being filled",
	)
	if err != nil {
		return nil, err
	}
	a.chain = c
	return a, nil
}

// Ask answers one question. Errors surface to the caller, which typically
// tells the user the assistant is unavailable and returns to the form.
func (a *Assistant) Ask(ctx context.Context, req *Request) (*Answer, error) {
	if req == nil || strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("empty question")
	}
	return a.chain.Invoke(ctx, req)
}

func (a *Assistant) buildPrompt(ctx context.Context, req *Request) ([]*schema.Message, error) {
	sections := []string{
		fmt.Sprintf("# Form:\n%s", req.FormTitle),
	}
	if req.CurrentQuestion != "" {
		sections = append(sections, fmt.Sprintf("# Question the form is currently asking:\n%s", req.CurrentQuestion))
	}
	sections = append(sections, fmt.Sprintf("# User question:\n%s", req.Question))

	return []*schema.Message{
		schema.SystemMessage(a.systemPrompt),
		schema.UserMessage(strings.Join(sections, "\n\n")),
	}, nil
}
