// Package audit records security relevant events. Writes are best effort:
// a failure to persist an event is logged and never surfaced to the caller,
// the request that triggered the event must not fail because of it.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"echo-memory/backend/internal/audit/domain"
	"echo-memory/backend/internal/audit/repository"
)

type Logger struct {
	repo repository.Repository
	log  *slog.Logger
}

func NewLogger(repo repository.Repository, log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{repo: repo, log: log}
}

// LogEvent persists a single audit event. details may be nil.
func (l *Logger) LogEvent(ctx context.Context, action, actorAddr, userAgent string, details map[string]any) {
	e := &domain.Event{
		ID:        uuid.NewString(),
		Action:    action,
		ActorAddr: actorAddr,
		UserAgent: userAgent,
		CreatedAt: time.Now().UTC(),
	}
	if len(details) > 0 {
		b, err := json.Marshal(details)
		if err != nil {
			l.log.Error("audit: marshal details", "action", action, "error", err)
		} else {
			e.Details = string(b)
		}
	}
	if err := l.repo.Create(ctx, e); err != nil {
		l.log.Error("audit: write event", "action", action, "error", err)
	}
}
