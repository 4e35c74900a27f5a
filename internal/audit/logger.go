package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/audit/domain"
	auditrepo "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/audit/repository"
)

// SentinelOrgID stands in for the tenant on events raised before one is known, such as
// a homeowner refused on the portal.
const SentinelOrgID = "_system"

const (
	unknownIP    = "unknown"
	writeTimeout = 2 * time.Second
)

// IPExtractor reads the caller's address from the request context.
type IPExtractor func(context.Context) string

// AuditLogger records one event. Implementations never fail the request that raised it.
type AuditLogger interface {
	LogEvent(ctx context.Context, orgID, userID, action, resource, metadata string)
}

// Logger persists events through the audit repository.
type Logger struct {
	repo  auditrepo.Repository
	ipOf  IPExtractor
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// NewLogger returns a Logger writing to repo. ipOf and log may be nil.
func NewLogger(repo auditrepo.Repository, ipOf IPExtractor, log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{
		repo:  repo,
		ipOf:  ipOf,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
	}
}

func (l *Logger) clientIP(ctx context.Context) string {
	if l.ipOf == nil {
		return unknownIP
	}
	if ip := l.ipOf(ctx); ip != "" {
		return ip
	}
	return unknownIP
}

// LogEvent appends an entry. The insert outlives ctx cancellation, bounded by writeTimeout,
// so a denial is still recorded after the client disconnects. Repository errors are logged.
func (l *Logger) LogEvent(ctx context.Context, orgID, userID, action, resource, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	if orgID == "" {
		orgID = SentinelOrgID
	}
	entry := &domain.AuditLog{
		ID:        l.newID(),
		OrgID:     orgID,
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        l.clientIP(ctx),
		Metadata:  metadata,
		CreatedAt: l.now(),
	}

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	if err := l.repo.Create(wctx, entry); err != nil {
		l.log.Warn("audit write failed",
			zap.String("org_id", orgID),
			zap.String("action", action),
			zap.String("resource", resource),
			zap.Error(err),
		)
	}
}
