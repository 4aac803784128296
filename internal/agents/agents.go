// Package agents provides the model capability client used by the
// underwriting pipeline: single-shot completions, tool-calling plans, and
// credential preflight.
package agents

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/coverline/coverline/internal/config"
)

// maxPlanTurns bounds tool-calling round trips within a single plan.
const maxPlanTurns = 24

// Tool describes one function the planner may call.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Dispatcher executes a named tool call and returns its textual result.
type Dispatcher func(ctx context.Context, name string, args json.RawMessage) (string, error)

// System is the model capability surface.
type System interface {
	// Complete runs a single system+user completion and returns the
	// response text. Failures are returned as *CallError.
	Complete(ctx context.Context, system, user string) (string, error)
	// RunTools drives a tool-calling conversation: the model chooses
	// tools, dispatch executes them, and the final non-tool response is
	// returned. Failures are returned as *CallError.
	RunTools(ctx context.Context, instructions, input string, tools []Tool, dispatch Dispatcher) (string, error)
	// Verify checks that the capability is usable before any stage runs.
	Verify(ctx context.Context) error
}

type client struct {
	api       openai.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	hasKey    bool
	logger    *slog.Logger
}

// New creates the capability client from configuration. The provider is not
// contacted until the first call.
func New(cfg *config.AgentConfig, logger *slog.Logger) System {
	opts := []option.RequestOption{}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &client{
		api:       openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.TimeoutDuration(),
		hasKey:    cfg.APIKey != "",
		logger:    logger.With("system", "agents"),
	}
}

func (c *client) Verify(ctx context.Context) error {
	if !c.hasKey {
		return ErrNoCredentials
	}
	return nil
}

func (c *client) Complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.model),
		MaxTokens: openai.Int(c.maxTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", NewCallError(err)
	}

	content := responseText(resp)
	if content == "" {
		return "", NewCallError(ErrEmptyResponse)
	}

	return content, nil
}

func (c *client) RunTools(ctx context.Context, instructions, input string, tools []Tool, dispatch Dispatcher) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.model),
		MaxTokens: openai.Int(c.maxTokens),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instructions),
			openai.UserMessage(input),
		},
		Tools: buildToolParams(tools),
	}

	for range maxPlanTurns {
		resp, err := c.call(ctx, params)
		if err != nil {
			return "", NewCallError(err)
		}

		if len(resp.Choices) == 0 {
			return "", NewCallError(ErrEmptyResponse)
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			if strings.TrimSpace(msg.Content) == "" {
				return "", NewCallError(ErrEmptyResponse)
			}
			return msg.Content, nil
		}

		params.Messages = append(params.Messages, msg.ToParam())

		for _, call := range msg.ToolCalls {
			c.logger.Debug("dispatching tool call", "tool", call.Function.Name)

			output, err := dispatch(ctx, call.Function.Name, json.RawMessage(call.Function.Arguments))
			if err != nil {
				output = "tool error: " + err.Error()
			}

			params.Messages = append(params.Messages, openai.ToolMessage(output, call.ID))
		}
	}

	return "", &CallError{Kind: KindTransient, Err: ErrPlanIncomplete}
}

func (c *client) call(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	ctx, cancel := c.callContext(ctx)
	defer cancel()

	return c.api.Chat.Completions.New(ctx, params)
}

func (c *client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func buildToolParams(tools []Tool) []openai.ChatCompletionToolParam {
	params := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		params = append(params, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  openai.FunctionParameters(t.Parameters),
			},
		})
	}
	return params
}

func responseText(resp *openai.ChatCompletion) string {
	if resp == nil || len(resp.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content)
}
