package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a charmbracelet logger at debug level.
// Failures are logged at warn level. It implements [PipelineHooks],
// [CacheHooks] and [HTTPHooks].
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to logger, or to log.Default when
// logger is nil.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{Logger: logger}
}

func (h *LogHooks) OnLoadStart(_ context.Context, size int) {
	h.Logger.Debug("load started", "bytes", size)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, format string, taskCount int, duration time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("load failed", "format", format, "duration", duration, "err", err)
		return
	}
	h.Logger.Debug("load complete", "format", format, "tasks", taskCount, "duration", duration)
}

func (h *LogHooks) OnLayoutStart(_ context.Context, direction string, nodeCount int) {
	h.Logger.Debug("layout started", "direction", direction, "nodes", nodeCount)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, direction string, duration time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("layout failed", "direction", direction, "duration", duration, "err", err)
		return
	}
	h.Logger.Debug("layout complete", "direction", direction, "duration", duration)
}

func (h *LogHooks) OnAnalysisComplete(_ context.Context, crossings int, cyclic bool, duration time.Duration) {
	h.Logger.Debug("analysis complete", "crossings", crossings, "cyclic", cyclic, "duration", duration)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.Logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, statusCode int, duration time.Duration) {
	h.Logger.Debug("response", "method", method, "route", route, "status", statusCode, "duration", duration)
}

func (h *LogHooks) OnError(_ context.Context, method, route string, err error) {
	h.Logger.Warn("request failed", "method", method, "route", route, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
