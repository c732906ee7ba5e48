package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pablasso/orca/internal/ai"
	"github.com/pablasso/orca/internal/graph"
	"github.com/pablasso/orca/internal/markdown"
	"github.com/pablasso/orca/internal/task"
	"github.com/pablasso/orca/internal/util"
	"github.com/pablasso/orca/internal/version"
	"github.com/tidwall/gjson"
)

func (s *Server) registerEndpoints() map[string]endpoint {
	return map[string]endpoint{
		"health": {
			description: "Report server health and the available endpoints",
			handle:      s.health,
		},
		"convert_task_markdown": {
			description: "Convert a markdown task document to structured JSON",
			schema: objectSchema([]string{"markdownPath"}, map[string]any{
				"markdownPath": stringProp("Path to the markdown task document"),
				"outputPath":   stringProp("Optional path for the JSON output"),
			}),
			handle: s.convertTaskMarkdown,
		},
		"claude_code": {
			description: "Run a prompt through the agent CLI",
			schema: objectSchema([]string{"prompt"}, map[string]any{
				"prompt":          stringProp("The prompt to execute"),
				"workFolder":      stringProp("Working directory for the agent"),
				"taskDescription": stringProp("Short description of the task"),
				"parentTaskId":    stringProp("ID of the parent task"),
			}),
			handle: s.claudeCode,
		},
		"execute_task": {
			description: "Start executing a task in the background",
			schema: objectSchema([]string{"subtasks"}, map[string]any{
				"id":            stringProp("Task id; generated when empty"),
				"subtasks":      map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
				"executionMode": map[string]any{"type": "string", "enum": []string{"sequential", "parallel"}},
			}),
			handle: s.executeTask,
		},
		"task_status": {
			description: "Return the execution record of a task",
			schema: objectSchema([]string{"taskId"}, map[string]any{
				"taskId": stringProp("The task id"),
			}),
			handle: s.taskStatus,
		},
	}
}

func objectSchema(required []string, props map[string]any) map[string]any {
	return map[string]any{"type": "object", "required": required, "properties": props}
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

// errorResult is how endpoints report bad input.
func errorResult(err error) map[string]any {
	return map[string]any{"error": err.Error(), "status": "error"}
}

// nullable maps empty strings to JSON null.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *Server) health(ctx context.Context, input gjson.Result) (any, error) {
	return map[string]any{
		"status":    "healthy",
		"version":   version.Version,
		"endpoints": s.EndpointNames(),
	}, nil
}

func (s *Server) convertTaskMarkdown(ctx context.Context, input gjson.Result) (any, error) {
	path := input.Get("markdownPath").String()
	if path == "" {
		path = input.Get("markdown_path").String()
	}
	if path == "" {
		return errorResult(errors.New("markdownPath parameter is required")), nil
	}
	outputPath := input.Get("outputPath").String()

	doc, err := markdown.ConvertFile(path, outputPath)
	if err != nil {
		s.logger.Warn("task conversion failed", "path", path, "error", err)
		return errorResult(err), nil
	}
	s.logger.Info("task converted", "path", path, "subtasks", len(doc.Subtasks))

	return map[string]any{
		"task":       doc,
		"outputPath": nullable(outputPath),
		"status":     "success",
	}, nil
}

func (s *Server) claudeCode(ctx context.Context, input gjson.Result) (any, error) {
	prompt := input.Get("prompt").String()
	if prompt == "" {
		return errorResult(errors.New("prompt parameter is required")), nil
	}
	if s.agent == nil {
		return errorResult(errors.New("no agent is configured")), nil
	}

	shortID, err := util.GenerateShortID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate task id: %w", err)
	}
	taskID := "agent-" + shortID
	parentID := input.Get("parentTaskId").String()

	log := s.logger.WithTask(taskID)
	log.Info("agent request started", "parent_task_id", parentID)

	prompt = ai.BuildRequestPrompt(prompt, input.Get("taskDescription").String())
	out, err := s.agent.Ask(ctx, prompt, input.Get("workFolder").String())
	if err != nil {
		log.Warn("agent request failed", "error", err)
		return errorResult(err), nil
	}

	return map[string]any{
		"result":       out,
		"taskId":       taskID,
		"parentTaskId": nullable(parentID),
	}, nil
}

func (s *Server) executeTask(ctx context.Context, input gjson.Result) (any, error) {
	if !input.Get("subtasks").IsArray() {
		return errorResult(errors.New("subtasks parameter is required")), nil
	}

	var t task.Task
	if err := json.Unmarshal([]byte(input.Raw), &t); err != nil {
		return errorResult(fmt.Errorf("invalid task: %w", err)), nil
	}
	if t.ID == "" {
		t.ID = util.NewTaskID()
	}
	if t.ExecutionMode == "" {
		t.ExecutionMode = graph.ModeSequential
	}

	id, done, err := s.exec.Start(ctx, t)
	if err != nil {
		return errorResult(err), nil
	}
	s.background.Go(func() { <-done })

	return map[string]any{
		"success": true,
		"message": fmt.Sprintf("Task execution started in %s mode", t.ExecutionMode),
		"taskId":  id,
	}, nil
}

func (s *Server) taskStatus(ctx context.Context, input gjson.Result) (any, error) {
	id := input.Get("taskId").String()
	if id == "" {
		return errorResult(errors.New("taskId parameter is required")), nil
	}

	rec, err := s.exec.Status(id)
	if errors.Is(err, task.ErrNotFound) {
		return map[string]any{
			"success": false,
			"error":   fmt.Sprintf("Task %s not found", id),
		}, nil
	}
	if err != nil {
		return errorResult(err), nil
	}
	return map[string]any{"success": true, "status": rec}, nil
}
