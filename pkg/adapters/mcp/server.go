package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/gambit/internal/logging"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ScenarioList wraps list results so they have an object output schema.
type ScenarioList struct {
	Scenarios []domain.Scenario `json:"scenarios" jsonschema_description:"Scenarios matching the filter, newest first"`
}

// Server exposes a ports.Engine as MCP tools.
type Server struct {
	engine    ports.Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new MCP server for the engine.
func NewServer(engine ports.Engine, version string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("gambit-mcp", strings.TrimSpace(version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio serves on Stdin/Stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening (sse)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	userArg := mcp.WithString("user_id", mcp.Required(), mcp.Description("Identity the progress is stored under"))
	scenarioArg := mcp.WithString("scenario_id", mcp.Required(), mcp.Description("Scenario ID"))

	s.mcpServer.AddTool(mcp.NewTool("list_scenarios",
		mcp.WithDescription("List scenarios, newest first. Filters are optional."),
		mcp.WithString("difficulty", mcp.Description("easy, medium or hard")),
		mcp.WithString("role", mcp.Description("Exact role match")),
		mcp.WithString("search", mcp.Description("Case-insensitive search over title and description")),
		mcp.WithOutputSchema[ScenarioList](),
	), mcp.NewStructuredToolHandler(s.handleListScenarios))

	s.mcpServer.AddTool(mcp.NewTool("start_scenario",
		mcp.WithDescription("Start or restart a scenario. Any previous progress is discarded."),
		userArg, scenarioArg,
		mcp.WithOutputSchema[domain.StartResult](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("get_step",
		mcp.WithDescription("Show the current step of an in-progress scenario."),
		userArg, scenarioArg,
		mcp.WithString("step_id", mcp.Required(), mcp.Description("Current step ID")),
		mcp.WithOutputSchema[domain.StepResult](),
	), mcp.NewStructuredToolHandler(s.handleGetStep))

	s.mcpServer.AddTool(mcp.NewTool("submit_answer",
		mcp.WithDescription("Choose an option at the current step."),
		userArg, scenarioArg,
		mcp.WithString("step_id", mcp.Required(), mcp.Description("Current step ID")),
		mcp.WithString("option_id", mcp.Required(), mcp.Description("Chosen option ID")),
		mcp.WithOutputSchema[domain.AnswerResult](),
	), mcp.NewStructuredToolHandler(s.handleSubmit))

	s.mcpServer.AddTool(mcp.NewTool("get_progress",
		mcp.WithDescription("Report the phase, score and decisions of a traversal."),
		userArg, scenarioArg,
		mcp.WithOutputSchema[domain.ProgressView](),
	), mcp.NewStructuredToolHandler(s.handleProgress))

	s.mcpServer.AddTool(mcp.NewTool("get_summary",
		mcp.WithDescription("Summarise a finished traversal."),
		userArg, scenarioArg,
		mcp.WithOutputSchema[domain.Summary](),
	), mcp.NewStructuredToolHandler(s.handleSummary))
}

func (s *Server) handleListScenarios(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (ScenarioList, error) {
	filter := domain.ScenarioFilter{
		Difficulty: domain.Difficulty(stringArg(args, "difficulty")),
		Role:       stringArg(args, "role"),
		Search:     stringArg(args, "search"),
	}
	list, err := s.engine.ListScenarios(ctx, filter)
	if err != nil {
		return ScenarioList{}, s.toolError("list_scenarios", err)
	}
	return ScenarioList{Scenarios: list}, nil
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (domain.StartResult, error) {
	res, err := s.engine.Start(ctx, stringArg(args, "user_id"), stringArg(args, "scenario_id"))
	if err != nil {
		return domain.StartResult{}, s.toolError("start_scenario", err)
	}
	return *res, nil
}

func (s *Server) handleGetStep(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (domain.StepResult, error) {
	res, err := s.engine.GetStep(ctx, stringArg(args, "user_id"), stringArg(args, "scenario_id"), stringArg(args, "step_id"))
	if err != nil {
		return domain.StepResult{}, s.toolError("get_step", err)
	}
	return *res, nil
}

func (s *Server) handleSubmit(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (domain.AnswerResult, error) {
	res, err := s.engine.SubmitAnswer(ctx,
		stringArg(args, "user_id"), stringArg(args, "scenario_id"),
		stringArg(args, "step_id"), stringArg(args, "option_id"))
	if err != nil {
		return domain.AnswerResult{}, s.toolError("submit_answer", err)
	}
	return *res, nil
}

func (s *Server) handleProgress(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (domain.ProgressView, error) {
	res, err := s.engine.Progress(ctx, stringArg(args, "user_id"), stringArg(args, "scenario_id"))
	if err != nil {
		return domain.ProgressView{}, s.toolError("get_progress", err)
	}
	return *res, nil
}

func (s *Server) handleSummary(ctx context.Context, _ mcp.CallToolRequest, args map[string]interface{}) (domain.Summary, error) {
	res, err := s.engine.Summary(ctx, stringArg(args, "user_id"), stringArg(args, "scenario_id"))
	if err != nil {
		return domain.Summary{}, s.toolError("get_summary", err)
	}
	return *res, nil
}

func (s *Server) toolError(tool string, err error) error {
	s.logger.Debug("mcp tool failed", "tool", tool, "err", err)
	return fmt.Errorf("%s failed: %w", tool, err)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("gambit://scenarios", "Scenario catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := s.engine.ListScenarios(ctx, domain.ScenarioFilter{})
		if err != nil {
			return nil, fmt.Errorf("failed to list scenarios: %w", err)
		}
		b, err := json.Marshal(list)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "gambit://scenarios",
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	})
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return strings.TrimSpace(v)
}
