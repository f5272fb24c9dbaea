package tessellate

import "go.uber.org/zap"

// Progress receives the completion percentage of a running tessellation.
// It is called at most once per grid row and may ignore every call.
type Progress interface {
	OnProgress(percent int, message string)
}

// ProgressFunc adapts a function to Progress.
type ProgressFunc func(percent int, message string)

func (f ProgressFunc) OnProgress(percent int, message string) {
	f(percent, message)
}

type nopProgress struct{}

func (nopProgress) OnProgress(int, string) {}

// LogProgress reports progress on a zap logger at debug level.
type LogProgress struct {
	Logger *zap.Logger
}

func (p LogProgress) OnProgress(percent int, message string) {
	p.Logger.Debug(message, zap.Int("percent", percent))
}
