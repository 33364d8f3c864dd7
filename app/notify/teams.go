package notify

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pancak3lullz/SECurityTr8Ker/app/filing"
)

// TeamsNotifier posts disclosure alerts to a Microsoft Teams webhook using
// Adaptive Cards.
type TeamsNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewTeamsNotifier(webhookURL string, client *http.Client) *TeamsNotifier {
	return &TeamsNotifier{webhookURL: webhookURL, client: client}
}

func (n *TeamsNotifier) Name() string {
	return "teams"
}

func (n *TeamsNotifier) Notify(f *filing.Filing) bool {
	facts := []map[string]any{
		{"title": "Company", "value": f.CompanyName + tickerDisplay(f)},
		{"title": "CIK", "value": f.CIK},
		{"title": "Form Type", "value": f.FormType},
		{"title": "Published on", "value": f.FilingDate},
	}
	if len(f.MatchingTerms) > 0 {
		facts = append(facts, map[string]any{"title": "Matching Terms", "value": strings.Join(f.MatchingTerms, ", ")})
	}

	body := []map[string]any{
		{
			"type":   "TextBlock",
			"text":   "Cybersecurity Incident Disclosure",
			"weight": "Bolder",
			"size":   "Medium",
			"wrap":   true,
		},
		{
			"type":  "FactSet",
			"facts": facts,
		},
		{
			"type": "TextBlock",
			"text": fmt.Sprintf("[View SEC Filing](%s)", f.FilingHREF),
			"wrap": true,
		},
	}

	if context := evidenceText(f, 1000); context != "" {
		body = append(body, map[string]any{
			"type":     "TextBlock",
			"text":     context,
			"wrap":     true,
			"isSubtle": true,
		})
	}

	return n.post(n.card(body))
}

func (n *TeamsNotifier) SendText(message string) bool {
	return n.post(n.card([]map[string]any{
		{"type": "TextBlock", "text": message, "wrap": true},
	}))
}

func (n *TeamsNotifier) card(body []map[string]any) map[string]any {
	return map[string]any{
		"type": "message",
		"attachments": []map[string]any{
			{
				"contentType": "application/vnd.microsoft.card.adaptive",
				"contentUrl":  nil,
				"content": map[string]any{
					"$schema": "http://adaptivecards.io/schemas/adaptive-card.json",
					"type":    "AdaptiveCard",
					"version": "1.2",
					"body":    body,
				},
			},
		},
	}
}

func (n *TeamsNotifier) post(payload any) bool {
	status, body, err := postJSON(n.client, n.webhookURL, payload)
	if err != nil {
		slog.Error("Failed to send Teams message", "error", err)
		return false
	}
	// Teams webhooks return either 200 or 202 on success
	if status != http.StatusOK && status != http.StatusAccepted {
		slog.Error("Teams webhook rejected message", "status", status, "body", body)
		return false
	}
	return true
}
