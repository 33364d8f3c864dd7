package monitor

import (
	"context"

	"github.com/pancak3lullz/SECurityTr8Ker/app/filing"
)

// FilingSource lists candidate filings and resolves per-filing data.
type FilingSource interface {
	FetchFilings(ctx context.Context) []filing.Filing
	TickerSymbol(ctx context.Context, cik string) (string, bool)
	DocumentContent(ctx context.Context, url string) (string, bool)
}

// DisclosureStore tracks processed filings and persists confirmed
// disclosures.
type DisclosureStore interface {
	HasSeen(url string) bool
	MarkSeen(f *filing.Filing)
	AddDisclosure(f *filing.Filing) bool
	Count() int
}

// NotificationService fans confirmed disclosures out to the configured
// channels.
type NotificationService interface {
	NotifyAll(f *filing.Filing) map[string]bool
	SendTextToAll(message string) map[string]bool
	ActiveChannels() []string
}
