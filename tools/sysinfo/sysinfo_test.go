package sysinfo_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/effective-security/agentdemo/tools/sysinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Tool(t *testing.T) {
	ctx := context.Background()

	tool, err := sysinfo.New()
	require.NoError(t, err)

	assert.Equal(t, sysinfo.ToolName, tool.Name())
	assert.NotNil(t, tool.Parameters())

	resp, err := tool.Run(ctx, &sysinfo.InfoRequest{})
	require.NoError(t, err)
	assert.Equal(t, runtime.GOOS, resp.OS)
	assert.Equal(t, runtime.GOARCH, resp.Arch)
	assert.NotEmpty(t, resp.Time)
	assert.Contains(t, resp.String(), "System Information")
	assert.Contains(t, resp.String(), "- Time: "+resp.Time)

	out, err := tool.Call(ctx, "{}")
	require.NoError(t, err)
	assert.Contains(t, out, `"go_version"`)
	assert.Contains(t, out, `"time"`)
}
