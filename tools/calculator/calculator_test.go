package calculator_test

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentdemo/chatmodel"
	"github.com/effective-security/agentdemo/pkg/llmutils"
	"github.com/effective-security/agentdemo/tools/calculator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Evaluate(t *testing.T) {
	tcases := []struct {
		expr string
		exp  float64
	}{
		{"2+2", 4},
		{"2+2*3", 8},
		{"(2+2)*3", 12},
		{"(1000 * 0.85) + 150", 1000},
		{"15 * 4 + 22 / 2", 71},
		{"-4 + 2", -2},
		{"-(3 + 1) * 2", -8},
		{"10 / 4", 2.5},
		{"  7  ", 7},
	}

	for _, tc := range tcases {
		t.Run(tc.expr, func(t *testing.T) {
			val, err := calculator.Evaluate(tc.expr)
			require.NoError(t, err)
			assert.InDelta(t, tc.exp, val, 0.0001)
		})
	}
}

func Test_Evaluate_Errors(t *testing.T) {
	tcases := []struct {
		expr string
		err  string
	}{
		{"2+a", `invalid character in expression: 'a'`},
		{"__import__", `invalid character in expression: '_'`},
		{"1/0", "division by zero"},
		{"(2+3", "missing closing parenthesis"},
		{"2+", "unexpected end of expression"},
		{"2 3", "unexpected character at position 2"},
		{"1..5", `invalid number "1..5"`},
	}

	for _, tc := range tcases {
		t.Run(tc.expr, func(t *testing.T) {
			_, err := calculator.Evaluate(tc.expr)
			assert.EqualError(t, err, tc.err)
		})
	}
}

func Test_Tool(t *testing.T) {
	ctx := context.Background()

	tool, err := calculator.New()
	require.NoError(t, err)

	assert.Equal(t, calculator.ToolName, tool.Name())
	assert.Contains(t, tool.Description(), "arithmetic")
	assert.NotNil(t, tool.Parameters())

	_, err = tool.Call(ctx, "plain string")
	assert.True(t, errors.Is(err, chatmodel.ErrFailedUnmarshalInput))

	input := &calculator.CalculateRequest{Expression: "(1000 * 0.85) + 150"}

	resp, err := tool.Run(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "(1000 * 0.85) + 150 = 1000", resp.String())

	out, err := tool.Call(ctx, llmutils.ToJSON(input))
	require.NoError(t, err)
	assert.Equal(t, `{"expression":"(1000 * 0.85) + 150","result":1000}`, out)

	_, err = tool.Run(ctx, &calculator.CalculateRequest{Expression: "1/0"})
	assert.ErrorContains(t, err, "division by zero")
}
