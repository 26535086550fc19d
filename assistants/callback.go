package assistants

import (
	"context"
	"fmt"
	"io"

	"github.com/effective-security/agentdemo/pkg/llms"
	"github.com/effective-security/agentdemo/tools"
	"github.com/effective-security/xlog"
)

// NoopCallback does nothing.
type NoopCallback struct{}

func NewNoopCallback() *NoopCallback {
	return &NoopCallback{}
}

var _ Callback = (*NoopCallback)(nil)

func (l *NoopCallback) OnAssistantStart(ctx context.Context, assistant IAssistant, input string) {}
func (l *NoopCallback) OnAssistantEnd(ctx context.Context, assistant IAssistant, input string, resp *llms.ContentResponse, messages []llms.Message) {
}
func (l *NoopCallback) OnAssistantError(ctx context.Context, assistant IAssistant, input string, err error, messages []llms.Message) {
}
func (l *NoopCallback) OnAssistantLLMCallStart(ctx context.Context, assistant IAssistant, llm llms.Model, messages []llms.Message) {
}
func (l *NoopCallback) OnAssistantLLMCallEnd(ctx context.Context, assistant IAssistant, llm llms.Model, resp *llms.ContentResponse) {
}
func (l *NoopCallback) OnAssistantLLMParseError(ctx context.Context, assistant IAssistant, input string, response string, err error) {
}
func (l *NoopCallback) OnToolStart(ctx context.Context, tool tools.ITool, assistant string, input string) {
}
func (l *NoopCallback) OnToolEnd(ctx context.Context, tool tools.ITool, assistant string, input string, output string) {
}
func (l *NoopCallback) OnToolError(ctx context.Context, tool tools.ITool, assistant string, input string, err error) {
}
func (l *NoopCallback) OnToolNotFound(ctx context.Context, assistant IAssistant, tool string) {}

// PrinterCallback is a callback handler that prints run progress to the Writer.
type PrinterCallback struct {
	Out io.Writer
}

func NewPrinterCallback(out io.Writer) *PrinterCallback {
	return &PrinterCallback{Out: out}
}

var _ Callback = (*PrinterCallback)(nil)

func (l *PrinterCallback) OnAssistantStart(ctx context.Context, assistant IAssistant, input string) {
	fmt.Fprintf(l.Out, "Assistant Start: %s\n", assistant.Name())
	fmt.Fprintf(l.Out, "Input: %s\n", input)
}

func (l *PrinterCallback) OnAssistantEnd(ctx context.Context, assistant IAssistant, input string, resp *llms.ContentResponse, messages []llms.Message) {
	fmt.Fprintf(l.Out, "Assistant End: %s\n", assistant.Name())
	for _, choice := range resp.Choices {
		if choice.Content != "" {
			fmt.Fprintln(l.Out, choice.Content)
		}
	}
}

func (l *PrinterCallback) OnAssistantError(ctx context.Context, assistant IAssistant, input string, err error, messages []llms.Message) {
	fmt.Fprintf(l.Out, "Assistant Error: %s: %s\n", assistant.Name(), err.Error())
}

func (l *PrinterCallback) OnAssistantLLMCallStart(ctx context.Context, assistant IAssistant, llm llms.Model, messages []llms.Message) {
	fmt.Fprintf(l.Out, "LLM Call: %s: %s: %d messages\n", assistant.Name(), llm.GetName(), len(messages))
}

func (l *PrinterCallback) OnAssistantLLMCallEnd(ctx context.Context, assistant IAssistant, llm llms.Model, resp *llms.ContentResponse) {
	fmt.Fprintf(l.Out, "LLM Response: %s: %d choices\n", assistant.Name(), len(resp.Choices))
}

func (l *PrinterCallback) OnAssistantLLMParseError(ctx context.Context, assistant IAssistant, input string, response string, err error) {
	fmt.Fprintf(l.Out, "Parse Error: %s: %s\n", assistant.Name(), err.Error())
}

func (l *PrinterCallback) OnToolStart(ctx context.Context, tool tools.ITool, assistant string, input string) {
	fmt.Fprintf(l.Out, "Tool Start: %s\n", tool.Name())
	fmt.Fprintf(l.Out, "Input: %s\n", input)
}

func (l *PrinterCallback) OnToolEnd(ctx context.Context, tool tools.ITool, assistant string, input string, output string) {
	fmt.Fprintf(l.Out, "Tool End: %s\n", tool.Name())
	fmt.Fprintf(l.Out, "Output: %s\n", output)
}

func (l *PrinterCallback) OnToolError(ctx context.Context, tool tools.ITool, assistant string, input string, err error) {
	fmt.Fprintf(l.Out, "Tool Error: %s: %s\n", tool.Name(), err.Error())
}

func (l *PrinterCallback) OnToolNotFound(ctx context.Context, assistant IAssistant, tool string) {
	fmt.Fprintf(l.Out, "Tool Not Found: %s\n", tool)
}

// PackageLoggerCallback is a callback handler that prints to the logger.
type PackageLoggerCallback struct {
	logger *xlog.PackageLogger
}

func NewPackageLoggerCallback(logger *xlog.PackageLogger) *PackageLoggerCallback {
	return &PackageLoggerCallback{logger: logger}
}

var _ Callback = (*PackageLoggerCallback)(nil)

func (l *PackageLoggerCallback) OnAssistantStart(ctx context.Context, assistant IAssistant, input string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "assistant_start",
		"assistant", assistant.Name(),
		"input", input,
	)
}

func (l *PackageLoggerCallback) OnAssistantEnd(ctx context.Context, assistant IAssistant, input string, resp *llms.ContentResponse, messages []llms.Message) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "assistant_end",
		"assistant", assistant.Name())
	for _, choice := range resp.Choices {
		if choice.Content != "" {
			l.logger.ContextKV(ctx, xlog.DEBUG, "result", choice.Content)
		}
	}
}

func (l *PackageLoggerCallback) OnAssistantError(ctx context.Context, assistant IAssistant, input string, err error, messages []llms.Message) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "assistant_error",
		"assistant", assistant.Name(),
		"err", err.Error(),
	)
}

func (l *PackageLoggerCallback) OnAssistantLLMCallStart(ctx context.Context, assistant IAssistant, llm llms.Model, messages []llms.Message) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "llm_call_start",
		"assistant", assistant.Name(),
		"model", llm.GetName(),
		"messages", len(messages),
	)
}

func (l *PackageLoggerCallback) OnAssistantLLMCallEnd(ctx context.Context, assistant IAssistant, llm llms.Model, resp *llms.ContentResponse) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "llm_call_end",
		"assistant", assistant.Name(),
		"model", llm.GetName(),
		"choices", len(resp.Choices),
	)
}

func (l *PackageLoggerCallback) OnAssistantLLMParseError(ctx context.Context, assistant IAssistant, input string, response string, err error) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "llm_parse_error",
		"assistant", assistant.Name(),
		"err", err.Error(),
	)
}

func (l *PackageLoggerCallback) OnToolStart(ctx context.Context, tool tools.ITool, assistant string, input string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_start",
		"tool", tool.Name(),
		"input", input,
	)
}

func (l *PackageLoggerCallback) OnToolEnd(ctx context.Context, tool tools.ITool, assistant string, input string, output string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_end",
		"tool", tool.Name(),
		"output", output,
	)
}

func (l *PackageLoggerCallback) OnToolError(ctx context.Context, tool tools.ITool, assistant string, input string, err error) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "tool_error",
		"tool", tool.Name(),
		"err", err.Error(),
	)
}

func (l *PackageLoggerCallback) OnToolNotFound(ctx context.Context, assistant IAssistant, tool string) {
	l.logger.ContextKV(ctx, xlog.WARNING,
		"event", "tool_not_found",
		"assistant", assistant.Name(),
		"tool", tool,
	)
}

// FanoutCallback dispatches each notification to all registered callbacks.
type FanoutCallback struct {
	callbacks []Callback
}

func NewFanoutCallback(callbacks ...Callback) *FanoutCallback {
	return &FanoutCallback{callbacks: callbacks}
}

var _ Callback = (*FanoutCallback)(nil)

func (l *FanoutCallback) OnAssistantStart(ctx context.Context, assistant IAssistant, input string) {
	for _, cb := range l.callbacks {
		cb.OnAssistantStart(ctx, assistant, input)
	}
}

func (l *FanoutCallback) OnAssistantEnd(ctx context.Context, assistant IAssistant, input string, resp *llms.ContentResponse, messages []llms.Message) {
	for _, cb := range l.callbacks {
		cb.OnAssistantEnd(ctx, assistant, input, resp, messages)
	}
}

func (l *FanoutCallback) OnAssistantError(ctx context.Context, assistant IAssistant, input string, err error, messages []llms.Message) {
	for _, cb := range l.callbacks {
		cb.OnAssistantError(ctx, assistant, input, err, messages)
	}
}

func (l *FanoutCallback) OnAssistantLLMCallStart(ctx context.Context, assistant IAssistant, llm llms.Model, messages []llms.Message) {
	for _, cb := range l.callbacks {
		cb.OnAssistantLLMCallStart(ctx, assistant, llm, messages)
	}
}

func (l *FanoutCallback) OnAssistantLLMCallEnd(ctx context.Context, assistant IAssistant, llm llms.Model, resp *llms.ContentResponse) {
	for _, cb := range l.callbacks {
		cb.OnAssistantLLMCallEnd(ctx, assistant, llm, resp)
	}
}

func (l *FanoutCallback) OnAssistantLLMParseError(ctx context.Context, assistant IAssistant, input string, response string, err error) {
	for _, cb := range l.callbacks {
		cb.OnAssistantLLMParseError(ctx, assistant, input, response, err)
	}
}

func (l *FanoutCallback) OnToolStart(ctx context.Context, tool tools.ITool, assistant string, input string) {
	for _, cb := range l.callbacks {
		cb.OnToolStart(ctx, tool, assistant, input)
	}
}

func (l *FanoutCallback) OnToolEnd(ctx context.Context, tool tools.ITool, assistant string, input string, output string) {
	for _, cb := range l.callbacks {
		cb.OnToolEnd(ctx, tool, assistant, input, output)
	}
}

func (l *FanoutCallback) OnToolError(ctx context.Context, tool tools.ITool, assistant string, input string, err error) {
	for _, cb := range l.callbacks {
		cb.OnToolError(ctx, tool, assistant, input, err)
	}
}

func (l *FanoutCallback) OnToolNotFound(ctx context.Context, assistant IAssistant, tool string) {
	for _, cb := range l.callbacks {
		cb.OnToolNotFound(ctx, assistant, tool)
	}
}
