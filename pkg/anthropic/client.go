// Package anthropic wraps the official SDK behind the single agentic
// operation the curator needs: generate text, resolving any tool calls the
// model makes along the way.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Sentinel errors for the failure modes callers handle distinctly. Everything
// else surfaces as a plain wrapped error.
var (
	// ErrServerUnavailable covers 5xx responses, including 529 overloads.
	ErrServerUnavailable = errors.New("anthropic: server unavailable")
	// ErrQuotaExhausted covers 429 rate-limit responses.
	ErrQuotaExhausted = errors.New("anthropic: quota exhausted")
)

// maxToolTurns bounds the request/tool-result loop of one Generate call.
const maxToolTurns = 10

// Client defines the generation operation used by the curator.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Tool is a capability handed to the model. Invoke runs when the model calls
// the tool; its return value (or error text) is fed back as the tool result.
type Tool struct {
	Name        string
	Description string
	// Properties is the JSON-schema properties object of the tool input.
	Properties map[string]any
	Required   []string
	Invoke     func(ctx context.Context, input json.RawMessage) (string, error)
}

// GenerateRequest describes one generation call.
type GenerateRequest struct {
	Model       string
	MaxTokens   int64
	System      string
	Prompt      string
	Temperature *float64
	Tools       []Tool
}

// GenerateResponse is the final assistant turn after all tool calls resolved.
type GenerateResponse struct {
	Text       string
	StopReason string
	ToolCalls  int
	Usage      TokenUsage
}

// TokenUsage accumulates token consumption across the turns of one call.
type TokenUsage struct {
	InputTokens              int64
	OutputTokens             int64
	CacheCreationInputTokens int64
	CacheReadInputTokens     int64
}

func (u *TokenUsage) add(su sdk.Usage) {
	u.InputTokens += su.InputTokens
	u.OutputTokens += su.OutputTokens
	u.CacheCreationInputTokens += su.CacheCreationInputTokens
	u.CacheReadInputTokens += su.CacheReadInputTokens
}

// modelPricing holds per-million-token pricing for known models.
var modelPricing = map[string][2]float64{
	// model → {input $/MTok, output $/MTok}
	"claude-haiku-4-5-20251001":  {0.80, 4.00},
	"claude-sonnet-4-5-20250929": {3.00, 15.00},
}

// EstimateCost computes an estimated cost in USD for a model. Returns 0 for
// unknown models.
func (u TokenUsage) EstimateCost(model string) float64 {
	pricing, ok := modelPricing[model]
	if !ok {
		return 0
	}
	inCost := (float64(u.InputTokens) / 1e6) * pricing[0]
	outCost := (float64(u.OutputTokens) / 1e6) * pricing[1]
	cacheWriteCost := (float64(u.CacheCreationInputTokens) / 1e6) * pricing[0] * 1.25
	cacheReadCost := (float64(u.CacheReadInputTokens) / 1e6) * pricing[0] * 0.1
	return inCost + outCost + cacheWriteCost + cacheReadCost
}

// LogCost logs token usage and estimated cost with structured fields.
func (u TokenUsage) LogCost(model, phase string) {
	zap.L().Info("cost attribution",
		zap.String("model", model),
		zap.String("phase", phase),
		zap.Int64("input_tokens", u.InputTokens),
		zap.Int64("output_tokens", u.OutputTokens),
		zap.Float64("estimated_cost_usd", u.EstimateCost(model)),
	)
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client sdk.Client
}

// NewClient creates an Anthropic client backed by the SDK. Extra options are
// passed through, which tests use to point at a local server.
func NewClient(apiKey string, opts ...option.RequestOption) Client {
	return &sdkClient{
		client: sdk.NewClient(append([]option.RequestOption{
			option.WithAPIKey(apiKey),
		}, opts...)...),
	}
}

func (c *sdkClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(req.Model),
		MaxTokens: req.MaxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature != nil {
		params.Temperature = sdk.Float(*req.Temperature)
	}
	if len(req.Tools) > 0 {
		params.Tools = toSDKTools(req.Tools)
	}

	tools := make(map[string]Tool, len(req.Tools))
	for _, t := range req.Tools {
		tools[t.Name] = t
	}

	out := &GenerateResponse{}
	for turn := 0; turn < maxToolTurns; turn++ {
		msg, err := c.client.Messages.New(ctx, params)
		if err != nil {
			return nil, classify(err)
		}
		out.Usage.add(msg.Usage)
		out.StopReason = string(msg.StopReason)

		if msg.StopReason != "tool_use" {
			out.Text = collectText(msg)
			return out, nil
		}

		params.Messages = append(params.Messages, msg.ToParam())
		results, err := runTools(ctx, msg, tools)
		if err != nil {
			return nil, err
		}
		out.ToolCalls += len(results)
		params.Messages = append(params.Messages, sdk.NewUserMessage(results...))
	}

	return nil, eris.Errorf("anthropic: tool loop did not settle within %d turns", maxToolTurns)
}

// runTools executes every tool call in msg and returns the result blocks in
// call order. An Invoke error becomes an is_error result, not a hard failure,
// so the model can recover or explain.
func runTools(ctx context.Context, msg *sdk.Message, tools map[string]Tool) ([]sdk.ContentBlockParamUnion, error) {
	var results []sdk.ContentBlockParamUnion
	for _, block := range msg.Content {
		call, ok := block.AsAny().(sdk.ToolUseBlock)
		if !ok {
			continue
		}

		tool, ok := tools[call.Name]
		if !ok {
			return nil, eris.Errorf("anthropic: model called unknown tool %q", call.Name)
		}

		zap.L().Debug("tool call", zap.String("tool", call.Name))
		output, err := tool.Invoke(ctx, json.RawMessage(call.JSON.Input.Raw()))
		if err != nil {
			results = append(results, sdk.NewToolResultBlock(call.ID, err.Error(), true))
			continue
		}
		results = append(results, sdk.NewToolResultBlock(call.ID, output, false))
	}
	return results, nil
}

func collectText(msg *sdk.Message) string {
	var text string
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(sdk.TextBlock); ok {
			text += tb.Text
		}
	}
	return text
}

func toSDKTools(tools []Tool) []sdk.ToolUnionParam {
	out := make([]sdk.ToolUnionParam, len(tools))
	for i, t := range tools {
		out[i] = sdk.ToolUnionParam{
			OfTool: &sdk.ToolParam{
				Name:        t.Name,
				Description: sdk.String(t.Description),
				InputSchema: sdk.ToolInputSchemaParam{
					Properties: t.Properties,
					Required:   t.Required,
				},
			},
		}
	}
	return out
}

// classify maps SDK errors onto the package sentinels so callers can branch
// on overload vs quota without knowing the SDK's error shape.
func classify(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == 429:
			return fmt.Errorf("%w: %v", ErrQuotaExhausted, err)
		case apiErr.StatusCode >= 500:
			return fmt.Errorf("%w: %v", ErrServerUnavailable, err)
		}
	}
	return eris.Wrap(err, "anthropic: create message")
}
