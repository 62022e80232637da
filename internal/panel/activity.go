package panel

import (
	"context"
	"fmt"

	"github.com/kalambet/jobfill/internal/storage"
)

// Log records a timestamped activity line. A storage failure is reported
// to the diagnostic logger only.
func (p *Panel) Log(ctx context.Context, level Level, msg string) {
	e := storage.LogEntry{CreatedAt: p.now(), Level: string(level), Message: msg}
	if err := p.activity.AppendLog(ctx, e); err != nil {
		p.logger.Error("writing activity log", "error", err)
	}
	if p.notify != nil {
		p.notify(e)
	}
}

// Logs returns up to limit recent lines, oldest first.
func (p *Panel) Logs(ctx context.Context, limit int) ([]storage.LogEntry, error) {
	return p.activity.RecentLogs(ctx, limit)
}

// ClearLogs deletes the activity log.
func (p *Panel) ClearLogs(ctx context.Context) error {
	return p.activity.ClearLogs(ctx)
}

// FormatEntry renders e the way the panel displays it: "[15:04:05] message".
func FormatEntry(e storage.LogEntry) string {
	return fmt.Sprintf("[%s] %s", e.CreatedAt.Local().Format("15:04:05"), e.Message)
}
