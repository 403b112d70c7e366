// Package logstream drives daemon log output for the CLI, preferring the
// daemon's IPC tail endpoint and falling back to reading the log file
// directly when no daemon is running.
package logstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"greensprint/internal/ipc"
	"greensprint/internal/logs"
)

// TailClient is the IPC surface Stream needs from a connected daemon client.
type TailClient interface {
	LogTail(req ipc.LogTailRequest) (*ipc.LogTailResponse, error)
}

// Options controls how much history Stream emits and whether it keeps
// following new output.
type Options struct {
	// Lines is the number of trailing lines to emit first. Zero emits the
	// whole log.
	Lines  int
	Follow bool
}

const followWait = time.Second

// Stream emits daemon log lines through onLine, reading over IPC when a
// client is provided and from filePath otherwise. It reports whether at
// least one line was emitted. In follow mode it returns once ctx ends.
func Stream(ctx context.Context, client TailClient, filePath string, opts Options, onLine func(string)) (bool, error) {
	if client != nil {
		return streamIPC(ctx, client, opts, onLine)
	}
	if filePath == "" {
		return false, errors.New("no daemon log available")
	}
	return streamFile(ctx, filePath, opts, onLine)
}

func streamIPC(ctx context.Context, client TailClient, opts Options, onLine func(string)) (bool, error) {
	offset, limit := initialWindow(opts.Lines)
	printed := false
	for {
		resp, err := client.LogTail(ipc.LogTailRequest{
			Offset:     offset,
			Limit:      limit,
			Follow:     opts.Follow,
			WaitMillis: int(followWait / time.Millisecond),
		})
		if err != nil {
			return printed, fmt.Errorf("tail logs: %w", err)
		}
		if resp == nil {
			return printed, errors.New("log tail response missing")
		}
		for _, line := range resp.Lines {
			emit(onLine, line)
			printed = true
		}
		offset = resp.Offset
		limit = 0
		if !opts.Follow {
			return printed, nil
		}
		select {
		case <-ctx.Done():
			return printed, nil
		default:
		}
	}
}

func streamFile(ctx context.Context, path string, opts Options, onLine func(string)) (bool, error) {
	offset, limit := initialWindow(opts.Lines)
	printed := false
	for {
		result, err := logs.Tail(ctx, path, logs.TailOptions{
			Offset: offset,
			Limit:  limit,
			Follow: opts.Follow,
			Wait:   followWait,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return printed, nil
			}
			return printed, fmt.Errorf("tail logs: %w", err)
		}
		for _, line := range result.Lines {
			emit(onLine, line)
			printed = true
		}
		offset = result.Offset
		limit = 0
		if !opts.Follow {
			return printed, nil
		}
		select {
		case <-ctx.Done():
			return printed, nil
		default:
		}
	}
}

// initialWindow converts the line budget into the first request's offset and
// limit. Positive asks for the last N lines; zero or less reads the whole
// file from the start.
func initialWindow(lines int) (int64, int) {
	if lines <= 0 {
		return 0, 0
	}
	return -1, lines
}

func emit(onLine func(string), line string) {
	if onLine != nil {
		onLine(line)
	}
}
