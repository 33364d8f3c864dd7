package notify

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pancak3lullz/SECurityTr8Ker/app/filing"
)

// SlackNotifier posts disclosure alerts to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewSlackNotifier(webhookURL string, client *http.Client) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL, client: client}
}

func (n *SlackNotifier) Name() string {
	return "slack"
}

func (n *SlackNotifier) Notify(f *filing.Filing) bool {
	blocks := []map[string]any{
		{
			"type": "header",
			"text": map[string]any{"type": "plain_text", "text": "Cybersecurity Incident Disclosure"},
		},
		{
			"type": "section",
			"fields": []map[string]any{
				{"type": "mrkdwn", "text": fmt.Sprintf("*Company:*\n%s%s", f.CompanyName, tickerDisplay(f))},
				{"type": "mrkdwn", "text": fmt.Sprintf("*CIK:*\n%s", f.CIK)},
			},
		},
		{
			"type": "section",
			"fields": []map[string]any{
				{"type": "mrkdwn", "text": fmt.Sprintf("*Published on:*\n%s", f.FilingDate)},
				{"type": "mrkdwn", "text": fmt.Sprintf("*Form Type:*\n%s", f.FormType)},
			},
		},
		{
			"type": "section",
			"text": map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*View SEC Filing:*\n<%s|SEC.gov Link>", f.FilingHREF)},
		},
	}

	if context := evidenceText(f, 1000); context != "" {
		blocks = append(blocks, map[string]any{
			"type": "section",
			"text": map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Context:*\n```%s```", context)},
		})
	}

	if len(f.MatchingTerms) > 0 {
		blocks = append(blocks, map[string]any{
			"type": "section",
			"text": map[string]any{"type": "mrkdwn", "text": fmt.Sprintf("*Matching Terms:*\n%s", strings.Join(f.MatchingTerms, ", "))},
		})
	}

	payload := map[string]any{
		"text":   fmt.Sprintf("Cybersecurity Incident Disclosure: %s", f.CompanyName),
		"blocks": blocks,
	}

	return n.post(payload)
}

func (n *SlackNotifier) SendText(message string) bool {
	payload := map[string]any{
		"text": message,
		"blocks": []map[string]any{
			{
				"type": "section",
				"text": map[string]any{"type": "mrkdwn", "text": message},
			},
		},
	}

	return n.post(payload)
}

func (n *SlackNotifier) post(payload any) bool {
	status, body, err := postJSON(n.client, n.webhookURL, payload)
	if err != nil {
		slog.Error("Failed to send Slack message", "error", err)
		return false
	}
	if status != http.StatusOK || body != "ok" {
		slog.Error("Slack webhook rejected message", "status", status, "body", body)
		return false
	}
	return true
}

// evidenceText joins up to three evidence snippets, bounded for display.
func evidenceText(f *filing.Filing, limit int) string {
	contexts := f.Contexts
	if len(contexts) > 3 {
		contexts = contexts[:3]
	}
	text := strings.Join(contexts, "...\n")
	if len(text) > limit {
		text = text[:limit]
	}
	return text
}
