// Package webui serves a single-page chat UI and a JSON API in front of an
// assistant.
package webui

import (
	"context"
	_ "embed"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/agentdemo/assistants"
	"github.com/effective-security/agentdemo/chatmodel"
	"github.com/effective-security/agentdemo/store"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/agentdemo", "webui")

//go:embed index.html
var indexHTML []byte

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = ":7860"

// ChatRequest is the JSON API chat request.
type ChatRequest struct {
	// ChatID continues an existing conversation; empty starts a new one.
	ChatID  string `json:"chat_id"`
	Message string `json:"message"`
}

// ChatResponse is the JSON API chat response.
type ChatResponse struct {
	ChatID string `json:"chat_id"`
	Reply  string `json:"reply"`
}

// ToolInfo describes a registered tool for the tool listing endpoint.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Server hosts the chat UI for a single assistant.
type Server struct {
	engine    *echo.Echo
	assistant assistants.TypeableAssistant[chatmodel.OutputResult]
	store     store.MessageStore
	addr      string
}

func NewServer(assistant assistants.TypeableAssistant[chatmodel.OutputResult], msgStore store.MessageStore, addr string) *Server {
	if addr == "" {
		addr = DefaultAddr
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		engine:    e,
		assistant: assistant,
		store:     msgStore,
		addr:      addr,
	}

	e.GET("/", s.handleIndex)
	e.POST("/api/chat", s.handleChat)
	e.GET("/api/tools", s.handleTools)
	e.POST("/api/reset", s.handleReset)

	return s
}

// Engine returns the underlying echo instance, used in tests.
func (s *Server) Engine() *echo.Echo {
	return s.engine
}

// Start serves until the context is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.engine.Start(s.addr)
	}()

	logger.KV(xlog.INFO, "status", "listening", "addr", s.addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "failed to start server")
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.engine.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, indexHTML)
}

func (s *Server) handleChat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty message")
	}

	chatID := req.ChatID
	if chatID == "" {
		chatID = uuid.NewString()
	}

	ctx, err := chatmodel.SetChatID(c.Request().Context(), chatID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create chat context")
	}

	var out chatmodel.OutputResult
	_, err = s.assistant.Run(ctx, &assistants.CallInput{Input: req.Message}, &out)
	if err != nil {
		logger.ContextKV(ctx, xlog.ERROR,
			"status", "assistant_call_failed",
			"chat_id", chatID,
			"err", err.Error(),
		)
		return echo.NewHTTPError(http.StatusInternalServerError, "assistant call failed")
	}

	return c.JSON(http.StatusOK, &ChatResponse{
		ChatID: chatID,
		Reply:  out.GetContent(),
	})
}

func (s *Server) handleTools(c echo.Context) error {
	list := []ToolInfo{}
	for _, tool := range s.assistant.GetTools() {
		list = append(list, ToolInfo{
			Name:        tool.Name(),
			Description: tool.Description(),
		})
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) handleReset(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil || req.ChatID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request")
	}

	ctx, err := chatmodel.SetChatID(c.Request().Context(), req.ChatID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to create chat context")
	}
	if s.store != nil {
		if err := s.store.Reset(ctx); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to reset chat")
		}
	}
	return c.NoContent(http.StatusNoContent)
}
