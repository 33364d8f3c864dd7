package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pancak3lullz/SECurityTr8Ker/app/filing"
)

// TelegramNotifier sends disclosure alerts through the Telegram Bot API.
type TelegramNotifier struct {
	apiURL string
	chatID string
	client *http.Client
}

func NewTelegramNotifier(botToken, chatID string, client *http.Client) *TelegramNotifier {
	return &TelegramNotifier{
		apiURL: fmt.Sprintf("https://api.telegram.org/bot%s", botToken),
		chatID: chatID,
		client: client,
	}
}

func (n *TelegramNotifier) Name() string {
	return "telegram"
}

func (n *TelegramNotifier) Notify(f *filing.Filing) bool {
	var b strings.Builder
	fmt.Fprintf(&b, "*Cybersecurity Incident Disclosure*\n\n")
	fmt.Fprintf(&b, "*Company:* %s%s\n", f.CompanyName, tickerDisplay(f))
	fmt.Fprintf(&b, "*CIK:* %s\n", f.CIK)
	fmt.Fprintf(&b, "*Form Type:* %s\n", f.FormType)
	fmt.Fprintf(&b, "*Published on:* %s\n", f.FilingDate)
	if len(f.MatchingTerms) > 0 {
		fmt.Fprintf(&b, "*Matching Terms:* %s\n", strings.Join(f.MatchingTerms, ", "))
	}
	fmt.Fprintf(&b, "\n[View SEC Filing](%s)", f.FilingHREF)

	return n.SendText(b.String())
}

func (n *TelegramNotifier) SendText(message string) bool {
	payload := map[string]any{
		"chat_id":    n.chatID,
		"text":       message,
		"parse_mode": "Markdown",
	}

	status, body, err := postJSON(n.client, n.apiURL+"/sendMessage", payload)
	if err != nil {
		slog.Error("Failed to send Telegram message", "error", err)
		return false
	}
	if status != http.StatusOK {
		slog.Error("Telegram API rejected message", "status", status, "body", body)
		return false
	}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal([]byte(body), &result); err != nil || !result.OK {
		slog.Error("Telegram API reported failure", "body", body)
		return false
	}

	return true
}
