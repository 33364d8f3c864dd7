package sec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/pancak3lullz/SECurityTr8Ker/app/filing"
)

// FetchFilings fetches the EDGAR RSS feed and returns the 8-K filings it
// announces. Feed failure or unparseable content yields an empty slice,
// never an error; partial entries are dropped at debug level.
func (c *Client) FetchFilings(ctx context.Context) []filing.Filing {
	slog.Info("Fetching SEC RSS feed", "url", c.rssURL)

	data, err := c.fetchURL(ctx, c.rssURL, FeedCacheMaxAge)
	if err != nil {
		slog.Error("Failed to fetch RSS feed", "error", err)
		return nil
	}

	feed, err := c.feedParser.Parse(bytes.NewReader(data))
	if err != nil {
		slog.Error("Failed to parse RSS feed", "error", err)
		return nil
	}

	filings := make([]filing.Filing, 0, len(feed.Items))
	for _, item := range feed.Items {
		f, ok := parseFeedItem(item)
		if !ok {
			continue
		}
		filings = append(filings, f)
	}

	slog.Info("Processed filings from RSS feed", "total", len(feed.Items), "filings", len(filings))

	return filings
}

// parseFeedItem extracts a Filing from an EDGAR feed entry. EDGAR publishes
// the form type in the item description and the company metadata inside the
// edgar:xbrlFiling extension element.
func parseFeedItem(item *gofeed.Item) (filing.Filing, bool) {
	formType := strings.TrimSpace(item.Description)

	edgar, ok := item.Extensions["edgar"]
	if !ok {
		slog.Debug("Skipping feed item without edgar extension", "title", item.Title)
		return filing.Filing{}, false
	}

	xbrlFiling := firstExtension(edgar["xbrlFiling"])
	companyName := childValue(xbrlFiling, "companyName")
	cik := childValue(xbrlFiling, "cikNumber")
	filingHREF := documentURL(xbrlFiling)

	if formType == "" || companyName == "" || cik == "" || filingHREF == "" {
		slog.Debug("Skipping incomplete feed item", "title", item.Title)
		return filing.Filing{}, false
	}

	if formType != "8-K" && formType != "8-K/A" {
		slog.Debug("Skipping non-8-K filing", "form_type", formType)
		return filing.Filing{}, false
	}

	return filing.Filing{
		FormType:    formType,
		CompanyName: companyName,
		CIK:         cik,
		FilingHREF:  filingHREF,
		FilingDate:  item.Published,
	}, true
}

func firstExtension(list []ext.Extension) *ext.Extension {
	if len(list) == 0 {
		return nil
	}
	return &list[0]
}

func childValue(e *ext.Extension, name string) string {
	if e == nil {
		return ""
	}
	children, ok := e.Children[name]
	if !ok || len(children) == 0 {
		return ""
	}
	return strings.TrimSpace(children[0].Value)
}

// documentURL returns the first .htm/.html file referenced by the filing's
// xbrlFiles listing.
func documentURL(e *ext.Extension) string {
	if e == nil {
		return ""
	}
	lists, ok := e.Children["xbrlFiles"]
	if !ok || len(lists) == 0 {
		return ""
	}

	for _, file := range lists[0].Children["xbrlFile"] {
		url := file.Attrs["url"]
		if url == "" {
			url = file.Attrs["edgar:url"]
		}
		if strings.HasSuffix(url, ".htm") || strings.HasSuffix(url, ".html") {
			return url
		}
	}

	return ""
}

// TickerSymbol resolves the first ticker symbol registered for a CIK.
// Returns false when the company has no listed tickers or the lookup failed.
func (c *Client) TickerSymbol(ctx context.Context, cik string) (string, bool) {
	url := fmt.Sprintf("https://data.sec.gov/submissions/CIK%s.json", padCIK(cik))

	data, err := c.fetchURL(ctx, url, SubmissionsCacheMaxAge)
	if err != nil {
		slog.Debug("Failed to fetch company submissions", "cik", cik, "error", err)
		return "", false
	}

	var submissions struct {
		Tickers []string `json:"tickers"`
	}
	if err := json.Unmarshal(data, &submissions); err != nil {
		slog.Debug("Failed to parse company submissions", "cik", cik, "error", err)
		return "", false
	}

	if len(submissions.Tickers) == 0 {
		return "", false
	}

	return submissions.Tickers[0], true
}

// DocumentContent fetches a filing document body. Returns false when the
// document could not be retrieved.
func (c *Client) DocumentContent(ctx context.Context, url string) (string, bool) {
	slog.Debug("Fetching document", "url", url)

	data, err := c.fetchURL(ctx, url, DocumentCacheMaxAge)
	if err != nil {
		slog.Warn("Failed to fetch document", "url", url, "error", err)
		return "", false
	}

	return string(data), true
}

// padCIK zero-pads a registrant id to the 10 digits the submissions
// endpoint expects.
func padCIK(cik string) string {
	trimmed := strings.TrimLeft(strings.TrimSpace(cik), "0")
	if len(trimmed) >= 10 {
		return trimmed
	}
	return strings.Repeat("0", 10-len(trimmed)) + trimmed
}
