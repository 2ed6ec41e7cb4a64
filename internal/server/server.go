// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/ThinkInAIXYZ/go-mcp/server"
	"github.com/ThinkInAIXYZ/go-mcp/transport"

	"github.com/Watson-W722/cat-feeding-app/internal/ledger"
)

// Version is reported in the server info and by the CLI.
var Version = "1.0.0"

type Config struct {
	Host string
	Port int
	// PublicURL is the address MCP clients reach the server on. It prefixes
	// the message endpoint announced over SSE and defaults to Host:Port.
	PublicURL string
	// Location is the time zone used for default dates and times.
	Location *time.Location
	Logger   *slog.Logger
}

const (
	ssePath     = "/sse"
	messagePath = "/message"
)

type toolHandler func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

// FeedingLogServer exposes the feeding ledger as tools over HTTP. The same
// tools are served to MCP clients over SSE (GET /sse, POST /message) and as
// plain JSON tool calls (POST /). Carts are kept per session id in process
// memory and are lost on restart.
type FeedingLogServer struct {
	server     *server.Server
	httpServer *http.Server
	engine     *ledger.Engine
	tools      map[string]toolHandler
	logger     *slog.Logger
	loc        *time.Location
	now        func() time.Time

	mu    sync.Mutex
	carts map[string]*cartState
}

func NewFeedingLogServer(cfg *Config, engine *ledger.Engine) (*FeedingLogServer, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	feedingServer := &FeedingLogServer{
		engine: engine,
		logger: logger,
		loc:    loc,
		now:    time.Now,
		carts:  make(map[string]*cartState),
	}

	publicURL := strings.TrimRight(cfg.PublicURL, "/")
	if publicURL == "" {
		host := cfg.Host
		if host == "" || host == "0.0.0.0" {
			host = "localhost"
		}
		publicURL = fmt.Sprintf("http://%s:%d", host, cfg.Port)
	}

	sseTransport, sseHandler, err := transport.NewSSEServerTransportAndHandler(publicURL + messagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSE transport: %w", err)
	}
	mcpServer, err := server.NewServer(
		sseTransport,
		server.WithServerInfo(protocol.Implementation{
			Name:    "feeding-log",
			Version: Version,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create MCP server: %w", err)
	}
	feedingServer.server = mcpServer

	feedingServer.registerTools()

	mux := http.NewServeMux()
	mux.Handle(ssePath, sseHandler.HandleSSE())
	mux.Handle(messagePath, sseHandler.HandleMessage())
	mux.HandleFunc("/", feedingServer.handleHTTP)

	feedingServer.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return feedingServer, nil
}

// Handler returns the HTTP handler serving tool calls.
func (s *FeedingLogServer) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *FeedingLogServer) handleHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	handler, ok := s.tools[request.Name]
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	start := time.Now()
	result, err := handler(r.Context(), &request)
	if err != nil {
		status := statusFor(err)
		s.logger.WarnContext(r.Context(), "tool call failed",
			"tool", request.Name, "status", status, "duration_ms", time.Since(start).Milliseconds(), "error", err)
		http.Error(w, err.Error(), status)
		return
	}
	s.logger.DebugContext(r.Context(), "tool call", "tool", request.Name, "duration_ms", time.Since(start).Milliseconds())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		s.logger.ErrorContext(r.Context(), "failed to encode response", "tool", request.Name, "error", err)
	}
}

// errInvalidParams marks errors caused by malformed tool arguments.
var errInvalidParams = errors.New("invalid parameters")

// statusFor maps caller mistakes to 400 and everything else, store
// failures included, to 500.
func statusFor(err error) int {
	for _, target := range []error{
		errInvalidParams,
		ledger.ErrBelowBaseline,
		ledger.ErrInvalidReading,
		ledger.ErrInvalidWaste,
		ledger.ErrNoLeftoverSource,
		ledger.ErrUnknownItem,
		ledger.ErrEmptyCart,
		ledger.ErrCartIndex,
	} {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func (s *FeedingLogServer) Start(ctx context.Context) error {
	s.logger.InfoContext(ctx, "starting feeding log server", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop closes open SSE sessions first so that the HTTP server is not left
// waiting on their streams.
func (s *FeedingLogServer) Stop(ctx context.Context) error {
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down MCP server: %w", err)
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *FeedingLogServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
