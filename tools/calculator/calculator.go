// Package calculator provides a restricted arithmetic evaluation tool.
// Expressions are limited to numbers, + - * /, decimal points,
// parentheses and spaces; nothing else is evaluated.
package calculator

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentdemo/chatmodel"
	"github.com/effective-security/agentdemo/pkg/llmutils"
	"github.com/effective-security/agentdemo/pkg/schema"
	"github.com/effective-security/agentdemo/tools"
)

const ToolName = "Calculate"

// CalculateRequest represents the tool input.
type CalculateRequest struct {
	Expression string `json:"expression" yaml:"expression" jsonschema:"title=Expression,description=The arithmetic expression to evaluate, e.g. (1000 * 0.85) + 150."`
}

// CalculateResult represents the evaluation result.
type CalculateResult struct {
	Expression string  `json:"expression" yaml:"expression" jsonschema:"title=Expression,description=The evaluated expression."`
	Result     float64 `json:"result" yaml:"result" jsonschema:"title=Result,description=The numeric result."`
}

var _ chatmodel.ContentProvider = (*CalculateResult)(nil)

func (r *CalculateResult) GetContent() string {
	return llmutils.ToJSON(r)
}

func (r *CalculateResult) String() string {
	return fmt.Sprintf("%s = %s", r.Expression, strconv.FormatFloat(r.Result, 'f', -1, 64))
}

// Tool evaluates restricted arithmetic expressions.
type Tool struct {
	name        string
	description string
	funcParams  any
}

var _ tools.Tool[CalculateRequest, CalculateResult] = (*Tool)(nil)

func New() (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(CalculateRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	tool := &Tool{
		name:        ToolName,
		description: "Evaluates an arithmetic expression. Only numbers and the + - * / operators with parentheses are allowed.",
		funcParams:  sc.Parameters,
	}
	return tool, nil
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Parameters() any {
	return t.funcParams
}

func (t *Tool) Run(_ context.Context, req *CalculateRequest) (*CalculateResult, error) {
	expr := strings.TrimSpace(req.Expression)
	if expr == "" {
		return nil, errors.New("invalid request: empty expression")
	}

	val, err := Evaluate(expr)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to evaluate %q", expr)
	}

	return &CalculateResult{
		Expression: expr,
		Result:     val,
	}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req CalculateRequest
	if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
		return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return llmutils.ToJSON(out), nil
}
