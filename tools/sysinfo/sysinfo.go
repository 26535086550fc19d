// Package sysinfo provides a tool that reports basic information about
// the host the agent runs on.
package sysinfo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentdemo/chatmodel"
	"github.com/effective-security/agentdemo/pkg/llmutils"
	"github.com/effective-security/agentdemo/pkg/schema"
	"github.com/effective-security/agentdemo/tools"
)

const ToolName = "GetSystemInfo"

// InfoRequest represents the tool input. No arguments are required.
type InfoRequest struct{}

// InfoResult represents basic host information.
type InfoResult struct {
	OS        string `json:"os" yaml:"os" jsonschema:"title=OS,description=The operating system."`
	Arch      string `json:"arch" yaml:"arch" jsonschema:"title=Arch,description=The CPU architecture."`
	NumCPU    int    `json:"num_cpu" yaml:"num_cpu" jsonschema:"title=NumCPU,description=The number of logical CPUs."`
	Hostname  string `json:"hostname,omitempty" yaml:"hostname,omitempty" jsonschema:"title=Hostname,description=The host name."`
	GoVersion string `json:"go_version" yaml:"go_version" jsonschema:"title=Go Version,description=The Go runtime version."`
	Time      string `json:"time" yaml:"time" jsonschema:"title=Time,description=The current local time."`
}

var _ chatmodel.ContentProvider = (*InfoResult)(nil)

func (r *InfoResult) GetContent() string {
	return llmutils.ToJSON(r)
}

func (r *InfoResult) String() string {
	return fmt.Sprintf("System Information:\n- OS: %s\n- Arch: %s\n- CPUs: %d\n- Hostname: %s\n- Go: %s\n- Time: %s",
		r.OS, r.Arch, r.NumCPU, r.Hostname, r.GoVersion, r.Time)
}

// Tool reports host information.
type Tool struct {
	name        string
	description string
	funcParams  any
}

var _ tools.Tool[InfoRequest, InfoResult] = (*Tool)(nil)

func New() (*Tool, error) {
	sc, err := schema.New(reflect.TypeOf(InfoRequest{}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schema")
	}
	tool := &Tool{
		name:        ToolName,
		description: "Gets basic system information about the host: OS, architecture, CPU count, Go version and current time.",
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

func (t *Tool) Run(_ context.Context, _ *InfoRequest) (*InfoResult, error) {
	hostname, _ := os.Hostname()
	return &InfoResult{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		NumCPU:    runtime.NumCPU(),
		Hostname:  hostname,
		GoVersion: runtime.Version(),
		Time:      time.Now().Format(time.RFC1123),
	}, nil
}

func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	var req InfoRequest
	if input != "" {
		if err := json.Unmarshal(llmutils.CleanJSON([]byte(input)), &req); err != nil {
			return "", errors.WithStack(chatmodel.ErrFailedUnmarshalInput)
		}
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return llmutils.ToJSON(out), nil
}
