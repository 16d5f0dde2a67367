package audit

import (
	"context"

	"github.com/rs/zerolog"
)

// ZerologSink forwards audit events onto a zerolog logger, one
// structured log line per event. Failures log at warn level,
// successes at info.
type ZerologSink struct {
	logger zerolog.Logger
}

func NewZerologSink(logger zerolog.Logger) *ZerologSink {
	return &ZerologSink{logger: logger}
}

func (s *ZerologSink) Emit(_ context.Context, event Event) {
	var entry *zerolog.Event
	if event.Success {
		entry = s.logger.Info()
	} else {
		entry = s.logger.Warn()
	}

	entry = entry.
		Time("event_time", event.Timestamp).
		Str("event_type", event.EventType).
		Bool("success", event.Success)

	if event.ID != "" {
		entry = entry.Str("event_id", event.ID)
	}
	if event.AccountID != "" {
		entry = entry.Str("account_id", event.AccountID)
	}
	if event.Username != "" {
		entry = entry.Str("username", event.Username)
	}
	if event.Origin != "" {
		entry = entry.Str("origin", event.Origin)
	}
	if event.Error != "" {
		entry = entry.Str("error", event.Error)
	}
	for k, v := range event.Metadata {
		entry = entry.Str(k, v)
	}

	entry.Msg("audit")
}
