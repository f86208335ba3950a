package ports

import (
	"context"
	"time"

	"github.com/graf262-max/legal-update-monitor/internal/domain"
)

// Collector pulls normalized legal updates from one external source. Collect
// must not fail past its boundary for partial problems: fetch/parse issues
// are logged and whatever was parsed so far is returned. A non-nil error is
// reserved for source-level failures the briefing should surface (upstream
// API error codes, total fetch failure with nothing parsed).
type Collector interface {
	Source() domain.Source
	Collect(ctx context.Context) ([]domain.LegalUpdateItem, error)
}

// BriefingStore persists one row per aggregated item for audit/history.
type BriefingStore interface {
	AppendUpdates(ctx context.Context, runID string, briefingDate time.Time, items []domain.LegalUpdateItem) error
	Close() error
}

// Mailer delivers the rendered briefing to configured recipients.
type Mailer interface {
	SendBriefing(ctx context.Context, subject, htmlBody, textBody string) error
}

// Notifier pushes the plain-text briefing to a chat channel.
type Notifier interface {
	PublishBriefing(ctx context.Context, text string) error
}

// Scheduler controls when briefing runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
