package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts device_id and task_id from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if deviceID := GetDeviceID(ctx); deviceID != "" {
		e.Str("device_id", deviceID)
	}

	if taskID := GetTaskID(ctx); taskID != "" {
		e.Str("task_id", taskID)
	}
}
