// Package rpc serves the task orchestration tools over line-delimited
// JSON-RPC 2.0, one request and one response per line.
package rpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/pablasso/orca/internal/executor"
	"github.com/pablasso/orca/internal/logging"
	"github.com/tidwall/gjson"
)

// JSON-RPC error codes.
const (
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// ToolPrefix is prepended to endpoint names in tool names.
const ToolPrefix = "Task Orchestration"

const maxLineSize = 10 * 1024 * 1024

// Agent answers ad-hoc prompts.
type Agent interface {
	Ask(ctx context.Context, prompt, workDir string) (string, error)
}

// Error is a JSON-RPC error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Response is a JSON-RPC response. A nil ID encodes as null.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Tool describes an endpoint in list_tools.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// endpoint handles one tool call. Input problems are reported inside the
// result; a returned error becomes a JSON-RPC internal error.
type endpoint struct {
	description string
	schema      map[string]any
	handle      func(ctx context.Context, input gjson.Result) (any, error)
}

// Server dispatches requests to endpoints.
type Server struct {
	exec      *executor.Executor
	agent     Agent
	logger    *logging.Logger
	endpoints map[string]endpoint

	// background tracks executions started by execute_task.
	background sync.WaitGroup
}

// NewServer creates a server. agent may be nil, in which case claude_code
// reports that no agent is configured.
func NewServer(exec *executor.Executor, agent Agent, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.NopLogger()
	}
	s := &Server{exec: exec, agent: agent, logger: logger}
	s.endpoints = s.registerEndpoints()
	return s
}

// EndpointNames returns the registered endpoint names, sorted.
func (s *Server) EndpointNames() []string {
	names := make([]string, 0, len(s.endpoints))
	for name := range s.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Serve reads requests from r until EOF and writes responses to w. Before
// returning it waits for executions started during the session.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	s.logger.Info("server started", "endpoints", strings.Join(s.EndpointNames(), ","))

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var readErr error
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		resp := s.Handle(ctx, line)
		data, err := json.Marshal(resp)
		if err != nil {
			s.logger.Error("failed to encode response", "error", err)
			data, _ = json.Marshal(errorResponse(resp.ID, CodeInternalError, "Internal error: "+err.Error()))
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			readErr = fmt.Errorf("failed to write response: %w", err)
			break
		}
	}
	if readErr == nil {
		if err := scanner.Err(); err != nil {
			readErr = fmt.Errorf("failed to read request: %w", err)
		}
	}

	s.Wait()
	s.logger.Info("server stopped")
	return readErr
}

// Wait blocks until background executions have finished.
func (s *Server) Wait() {
	s.background.Wait()
}

// Handle processes one request line.
func (s *Server) Handle(ctx context.Context, line []byte) Response {
	if !gjson.ValidBytes(line) {
		s.logger.Warn("unparseable request", "line", string(line))
		return errorResponse(nil, CodeInternalError, "Internal error: invalid JSON")
	}
	req := gjson.ParseBytes(line)
	if !req.IsObject() {
		return errorResponse(nil, CodeInternalError, "Internal error: request must be an object")
	}

	var id json.RawMessage
	if v := req.Get("id"); v.Exists() {
		id = json.RawMessage(v.Raw)
	}

	if v := req.Get("jsonrpc"); v.Type != gjson.String || v.Str != "2.0" {
		return errorResponse(id, CodeInvalidRequest, `Invalid request: jsonrpc must be "2.0"`)
	}

	method := req.Get("method").String()
	params := req.Get("params")
	s.logger.Debug("request received", "method", method)

	switch method {
	case "list_tools":
		return Response{JSONRPC: "2.0", ID: id, Result: map[string]any{"tools": s.tools()}}
	case "call_tool":
		return s.callTool(ctx, id, params.Get("name").String(), params.Get("input"))
	default:
		return errorResponse(id, CodeMethodNotFound, "Method not found: "+method)
	}
}

func (s *Server) tools() []Tool {
	tools := make([]Tool, 0, len(s.endpoints))
	for _, name := range s.EndpointNames() {
		ep := s.endpoints[name]
		schema := ep.schema
		if schema == nil {
			schema = map[string]any{}
		}
		tools = append(tools, Tool{
			Name:        ToolPrefix + "__" + name,
			Description: ep.description,
			InputSchema: schema,
		})
	}
	return tools
}

func (s *Server) callTool(ctx context.Context, id json.RawMessage, name string, input gjson.Result) (resp Response) {
	_, epName, ok := strings.Cut(name, "__")
	if !ok {
		return errorResponse(id, CodeInvalidParams, "Invalid tool name: "+name)
	}
	ep, ok := s.endpoints[epName]
	if !ok {
		return errorResponse(id, CodeMethodNotFound, "Endpoint not found: "+epName)
	}

	defer func() {
		if v := recover(); v != nil {
			s.logger.Error("endpoint panicked", "endpoint", epName, "panic", fmt.Sprint(v))
			resp = errorResponse(id, CodeInternalError, fmt.Sprintf("Internal error: %v", v))
		}
	}()

	result, err := ep.handle(ctx, input)
	if err != nil {
		s.logger.Error("endpoint failed", "endpoint", epName, "error", err)
		return errorResponse(id, CodeInternalError, "Internal error: "+err.Error())
	}
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id json.RawMessage, code int, message string) Response {
	return Response{JSONRPC: "2.0", ID: id, Error: &Error{Code: code, Message: message}}
}
