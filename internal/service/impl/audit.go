package impl

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"user-management/internal/domain"
	"user-management/internal/events"
	"user-management/internal/netutil"
	"user-management/internal/observability/metrics"
	"user-management/internal/observability/middleware"

	"github.com/google/uuid"
)

type auditSink interface {
	Append(ctx context.Context, entry *domain.AuditLog) error
}

// auditRecorder writes events to the audit trail. Failures are logged and
// counted but never fail the calling operation.
type auditRecorder struct {
	sink auditSink
	now  func() time.Time
}

func (r auditRecorder) record(ctx context.Context, userID domain.UserID, ev events.Event, ip, ua string) {
	if r.sink == nil {
		return
	}
	meta, err := json.Marshal(ev)
	if err != nil {
		slog.Warn("audit encode failed", "action", ev.Action(), "error", err)
		return
	}
	entry := &domain.AuditLog{
		ID:        uuid.New(),
		Action:    ev.Action(),
		Metadata:  meta,
		IP:        normalizeIP(ip),
		UserAgent: netutil.TruncateUserAgent(ua),
		CreatedAt: r.now().UTC(),
	}
	if userID != uuid.Nil {
		uid := userID
		entry.UserID = &uid
	}
	if err := r.sink.Append(ctx, entry); err != nil {
		metrics.BestEffortFailuresTotal.WithLabelValues("audit").Inc()
		slog.Warn("audit append failed",
			append(middleware.LogAttrs(ctx), "action", ev.Action(), "user_id", userID, "error", err)...)
	}
}

func normalizeIP(ip string) string {
	if normalized, ok := netutil.NormalizeIP(ip); ok {
		return normalized
	}
	return ""
}
