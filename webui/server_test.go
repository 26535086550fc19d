package webui_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/effective-security/agentdemo/assistants"
	"github.com/effective-security/agentdemo/chatmodel"
	"github.com/effective-security/agentdemo/pkg/llms"
	"github.com/effective-security/agentdemo/pkg/prompts"
	"github.com/effective-security/agentdemo/store"
	"github.com/effective-security/agentdemo/tools/calculator"
	"github.com/effective-security/agentdemo/tools/sysinfo"
	"github.com/effective-security/agentdemo/webui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct{}

func (m *fakeModel) GetProviderType() llms.ProviderType {
	return llms.ProviderOpenAI
}

func (m *fakeModel) GetName() string {
	return "fake-model"
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{Content: `{"content":"Hello from the agent."}`},
		},
	}, nil
}

func newTestServer(t *testing.T) *webui.Server {
	t.Helper()

	calcTool, err := calculator.New()
	require.NoError(t, err)
	infoTool, err := sysinfo.New()
	require.NoError(t, err)

	memstore := store.NewMemoryStore()
	sysprompt := prompts.NewPromptTemplate("You are a helpful assistant.\n", nil)
	agent := assistants.NewAssistant[chatmodel.OutputResult](&fakeModel{}, sysprompt,
		assistants.WithStore(memstore),
	).WithName("Demo Assistant").
		WithTools(calcTool, infoTool)

	return webui.NewServer(agent, memstore, "")
}

func Test_Index(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Agent Demo")
}

func Test_Chat(t *testing.T) {
	srv := newTestServer(t)

	body := `{"message":"What is 2+2?"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set(echoContentType, "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp webui.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ChatID)
	assert.Contains(t, resp.Reply, "Hello from the agent.")

	// continue the conversation with the returned chat ID
	body = `{"chat_id":"` + resp.ChatID + `","message":"and 3+3?"}`
	req = httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set(echoContentType, "application/json")
	rec = httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp2 webui.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp2))
	assert.Equal(t, resp.ChatID, resp2.ChatID)
}

// echoModel repeats the question so session mixing is detectable.
type echoModel struct{}

func (m *echoModel) GetProviderType() llms.ProviderType {
	return llms.ProviderOpenAI
}

func (m *echoModel) GetName() string {
	return "echo-model"
}

func (m *echoModel) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	question := messages[len(messages)-1].GetContent()
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{Content: `{"content":"echo: ` + question + `"}`},
		},
	}, nil
}

func Test_Chat_ConcurrentSessions(t *testing.T) {
	memstore := store.NewMemoryStore()
	sysprompt := prompts.NewPromptTemplate("You are a helpful assistant.\n", nil)
	agent := assistants.NewAssistant[chatmodel.OutputResult](&echoModel{}, sysprompt,
		assistants.WithStore(memstore),
	).WithName("Demo Assistant")
	srv := webui.NewServer(agent, memstore, "")

	const sessions = 8
	var wg sync.WaitGroup
	replies := make([]webui.ChatResponse, sessions)
	codes := make([]int, sessions)
	for i := 0; i < sessions; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(`{"chat_id":"chat-%d","message":"question-%d"}`, i, i)
			req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
			req.Header.Set(echoContentType, "application/json")
			rec := httptest.NewRecorder()
			srv.Engine().ServeHTTP(rec, req)
			codes[i] = rec.Code
			_ = json.Unmarshal(rec.Body.Bytes(), &replies[i])
		}(i)
	}
	wg.Wait()

	for i := 0; i < sessions; i++ {
		require.Equal(t, http.StatusOK, codes[i])
		assert.Equal(t, fmt.Sprintf("chat-%d", i), replies[i].ChatID)
		assert.Equal(t, fmt.Sprintf("echo: question-%d", i), replies[i].Reply)

		// each session's persisted history holds only its own exchange
		ctx, err := chatmodel.SetChatID(context.Background(), fmt.Sprintf("chat-%d", i))
		require.NoError(t, err)
		msgs := memstore.Messages(ctx)
		require.Equal(t, 2, len(msgs))
		assert.Equal(t, fmt.Sprintf("question-%d", i), msgs[0].GetContent())
	}
}

func Test_Chat_EmptyMessage(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":""}`))
	req.Header.Set(echoContentType, "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_Tools(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/tools", nil)
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var list []webui.ToolInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 2, len(list))
	assert.Equal(t, calculator.ToolName, list[0].Name)
	assert.Equal(t, sysinfo.ToolName, list[1].Name)
}

func Test_Reset(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/reset", strings.NewReader(`{"chat_id":"chat1"}`))
	req.Header.Set(echoContentType, "application/json")
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/reset", strings.NewReader(`{}`))
	req.Header.Set(echoContentType, "application/json")
	rec = httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

const echoContentType = "Content-Type"
