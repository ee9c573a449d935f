package knowledge

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

type promptBuilder[TInput any] func(ctx context.Context, input TInput) ([]*schema.Message, error)

// chain forces the chat model through a single tool call and decodes the
// arguments into TOutput, so the model's answer always arrives structured.
type chain[TInput, TOutput any] struct {
	prompt    promptBuilder[TInput]
	chatModel model.ToolCallingChatModel
	toolInfo  *schema.ToolInfo
}

func newChain[TInput, TOutput any](
	chatModel model.ToolCallingChatModel,
	prompt promptBuilder[TInput],
	toolName string,
	toolDesc string,
) (*chain[TInput, TOutput], error) {
	toolInfo, err := utils.GoStruct2ToolInfo[TOutput](toolName, toolDesc)
	if err != nil {
		return nil, fmt.Errorf("convert tool info failed: %w", err)
	}
	return &chain[TInput, TOutput]{
		prompt:    prompt,
		chatModel: chatModel,
		toolInfo:  toolInfo,
	}, nil
}

func (s *chain[TInput, TOutput]) Invoke(ctx context.Context, input TInput) (*TOutput, error) {
	messages, err := s.prompt(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("build prompt failed: %w", err)
	}

	response, err := s.chatModel.Generate(ctx, messages,
		model.WithTools([]*schema.ToolInfo{s.toolInfo}),
		model.WithToolChoice(schema.ToolChoiceForced, s.toolInfo.Name),
	)
	if err != nil {
		return nil, fmt.Errorf("call model failed: %w", err)
	}
	if len(response.ToolCalls) == 0 {
		return nil, fmt.Errorf("no ToolCall found in model response: %s", response.Content)
	}

	var result TOutput
	if err := sonic.UnmarshalString(response.ToolCalls[0].Function.Arguments, &result); err != nil {
		return nil, fmt.Errorf("parse ToolCall arguments failed: %w", err)
	}

	return &result, nil
}
