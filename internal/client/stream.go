package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// StreamHandlers receives server-sent events while a stream is open. Any
// handler may be nil.
type StreamHandlers struct {
	// OnProgress is called for every progress event.
	OnProgress func(job *MemoJob)

	// OnComplete is called exactly once, with the job's terminal snapshot.
	OnComplete func(job *MemoJob)

	// OnError is called when the server reports a stream error.
	OnError func(message string)
}

// StreamMemoStatus consumes the server-sent event stream for a memo job.
// It returns nil once the complete event arrives, or the context error if
// the caller cancels first.
func (c *Client) StreamMemoStatus(ctx context.Context, jobID uuid.UUID, handlers StreamHandlers) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Accept", "text/event-stream").
		Get("/api/memos/" + jobID.String() + "/stream")
	if err != nil {
		return fmt.Errorf("stream request failed: %w", err)
	}

	body := resp.RawBody()
	defer func() {
		_ = body.Close()
	}()

	if resp.IsError() {
		return &APIError{
			StatusCode: resp.StatusCode(),
			Message:    "stream request rejected",
		}
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var event string
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")

		case strings.HasPrefix(line, "data: "):
			data := strings.TrimPrefix(line, "data: ")
			done, dispatchErr := dispatchStreamEvent(event, data, handlers)
			if dispatchErr != nil {
				return dispatchErr
			}
			if done {
				return nil
			}

		case line == "":
			// Frame separator.
		}
	}

	if scanErr := scanner.Err(); scanErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("stream read failed: %w", scanErr)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return errors.New("stream ended before the job completed")
}

// dispatchStreamEvent routes one event frame to its handler. Returns true
// once the terminal complete event has been delivered.
func dispatchStreamEvent(event, data string, handlers StreamHandlers) (bool, error) {
	switch event {
	case "progress":
		var job MemoJob
		if err := json.Unmarshal([]byte(data), &job); err != nil {
			return false, fmt.Errorf("failed to decode progress event: %w", err)
		}
		if handlers.OnProgress != nil {
			handlers.OnProgress(&job)
		}
		return false, nil

	case "complete":
		var job MemoJob
		if err := json.Unmarshal([]byte(data), &job); err != nil {
			return false, fmt.Errorf("failed to decode complete event: %w", err)
		}
		if handlers.OnComplete != nil {
			handlers.OnComplete(&job)
		}
		return true, nil

	case "error":
		var payload struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return false, fmt.Errorf("failed to decode error event: %w", err)
		}
		if handlers.OnError != nil {
			handlers.OnError(payload.Error)
		}
		return false, fmt.Errorf("stream reported an error: %s", payload.Error)

	default:
		return false, nil
	}
}
