package event

import (
	"github.com/rs/zerolog"

	"github.com/youlu/youlu/pkg/logger"
)

// LogListener 将事件写入结构化日志
type LogListener struct {
	base *zerolog.Logger
}

// NewLogListener 创建日志监听器
func NewLogListener() *LogListener {
	l := logger.Get().With().Str("component", "events").Logger()
	return &LogListener{base: &l}
}

// Handle 实现 Listener 接口
func (l *LogListener) Handle(e Event) {
	var evt *zerolog.Event
	switch e.Type {
	case TypeRequestFailed:
		evt = l.base.Error()
	case TypeRuleApplied:
		evt = l.base.Debug()
	default:
		evt = l.base.Info()
	}

	evt = evt.Str("event", string(e.Type))
	if e.RequestID != "" {
		evt = evt.Str("request_id", e.RequestID)
	}
	if e.Host != "" {
		evt = evt.Str("host", e.Host)
	}
	if e.StatusCode != 0 {
		evt = evt.Int("status_code", e.StatusCode)
	}
	if e.Rule != "" {
		evt = evt.Str("rule", e.Rule)
	}
	if e.Date != "" {
		evt = evt.Str("date", e.Date)
	}
	if e.Error != "" {
		evt = evt.Str("error", e.Error)
	}

	evt.Msg("优化事件")
}
