// Package notify delivers disclosure alerts to the configured channels.
// Channels are registered statically at startup from configuration; a
// channel failure is logged and never blocks or fails another channel.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pancak3lullz/SECurityTr8Ker/app/cfg"
	"github.com/pancak3lullz/SECurityTr8Ker/app/filing"
)

// Notifier is one outbound notification channel.
type Notifier interface {
	Name() string
	Notify(f *filing.Filing) bool
	SendText(message string) bool
}

// Service fans notifications out to every registered channel.
type Service struct {
	channels []Notifier
}

// NewService builds the channel registry from configuration. Channels
// without credentials are simply not registered.
func NewService(c *cfg.Cfg) *Service {
	httpClient := &http.Client{Timeout: 15 * time.Second}

	s := &Service{}

	if c.SlackWebhookURL != "" {
		s.channels = append(s.channels, NewSlackNotifier(c.SlackWebhookURL, httpClient))
	}
	if c.TeamsWebhookURL != "" {
		s.channels = append(s.channels, NewTeamsNotifier(c.TeamsWebhookURL, httpClient))
	}
	if c.TelegramBotToken != "" && c.TelegramChatID != "" {
		s.channels = append(s.channels, NewTelegramNotifier(c.TelegramBotToken, c.TelegramChatID, httpClient))
	}

	if len(s.channels) == 0 {
		slog.Warn("No notification channels configured")
	} else {
		slog.Info("Notification channels registered", "channels", s.ActiveChannels())
	}

	return s
}

// Register adds a channel to the registry.
func (s *Service) Register(n Notifier) {
	s.channels = append(s.channels, n)
}

// ActiveChannels returns the names of all registered channels.
func (s *Service) ActiveChannels() []string {
	names := make([]string, 0, len(s.channels))
	for _, ch := range s.channels {
		names = append(names, ch.Name())
	}
	return names
}

// NotifyAll sends a disclosure notification through every channel and
// returns per-channel success.
func (s *Service) NotifyAll(f *filing.Filing) map[string]bool {
	results := make(map[string]bool, len(s.channels))

	for _, ch := range s.channels {
		ok := ch.Notify(f)
		results[ch.Name()] = ok
		if ok {
			slog.Info("Notification sent", "channel", ch.Name(), "company", f.CompanyName)
		} else {
			slog.Error("Notification failed", "channel", ch.Name(), "company", f.CompanyName)
		}
	}

	return results
}

// SendTextToAll sends a plain status message through every channel.
func (s *Service) SendTextToAll(message string) map[string]bool {
	results := make(map[string]bool, len(s.channels))

	for _, ch := range s.channels {
		ok := ch.SendText(message)
		results[ch.Name()] = ok
		if !ok {
			slog.Error("Text message failed", "channel", ch.Name())
		}
	}

	return results
}

// postJSON encodes payload and POSTs it to url, returning the response
// status and body.
func postJSON(client *http.Client, url string, payload any) (int, string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("failed to encode payload: %w", err)
	}

	resp, err := client.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	var body bytes.Buffer
	if _, err := body.ReadFrom(resp.Body); err != nil {
		return resp.StatusCode, "", err
	}

	return resp.StatusCode, body.String(), nil
}

// tickerDisplay renders the optional ticker suffix used in message titles.
func tickerDisplay(f *filing.Filing) string {
	if f.TickerSymbol == "" {
		return ""
	}
	return fmt.Sprintf(" ($%s)", f.TickerSymbol)
}
