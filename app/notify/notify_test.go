package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pancak3lullz/SECurityTr8Ker/app/cfg"
	"github.com/pancak3lullz/SECurityTr8Ker/app/filing"
)

func testDisclosure() *filing.Filing {
	return &filing.Filing{
		FormType:      "8-K",
		CompanyName:   "Acme Corp",
		CIK:           "0000123456",
		TickerSymbol:  "ACME",
		FilingHREF:    "https://www.sec.gov/Archives/edgar/data/123456/acme-8k.htm",
		FilingDate:    "2024-02-15",
		MatchingTerms: []string{"Item 1.05"},
		Contexts:      []string{"an incident occurred"},
	}
}

func TestNewServiceRegistersConfiguredChannels(t *testing.T) {
	s := NewService(&cfg.Cfg{
		SlackWebhookURL: "https://hooks.slack.com/services/T/B/X",
		TeamsWebhookURL: "https://example.webhook.office.com/x",
	})

	channels := s.ActiveChannels()
	if len(channels) != 2 {
		t.Fatalf("Expected 2 channels, got: %v", channels)
	}
	if channels[0] != "slack" || channels[1] != "teams" {
		t.Errorf("Expected [slack teams], got: %v", channels)
	}
}

func TestNewServiceTelegramRequiresBothSettings(t *testing.T) {
	s := NewService(&cfg.Cfg{TelegramBotToken: "token-without-chat"})

	if len(s.ActiveChannels()) != 0 {
		t.Errorf("Expected no channels without a chat id, got: %v", s.ActiveChannels())
	}
}

func TestSlackNotify(t *testing.T) {
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &payload); err != nil {
			t.Errorf("Expected JSON payload, got: %v", err)
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	n := NewSlackNotifier(server.URL, server.Client())

	if !n.Notify(testDisclosure()) {
		t.Fatal("Expected notification to succeed")
	}

	text, _ := payload["text"].(string)
	if !strings.Contains(text, "Acme Corp") {
		t.Errorf("Expected fallback text to name the company, got: %q", text)
	}
	if _, ok := payload["blocks"]; !ok {
		t.Error("Expected blocks in Slack payload")
	}
}

func TestSlackNotifyRejectedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("invalid_payload"))
	}))
	defer server.Close()

	n := NewSlackNotifier(server.URL, server.Client())

	if n.Notify(testDisclosure()) {
		t.Error("Expected non-ok body to count as failure")
	}
}

func TestTeamsNotifyAcceptsAccepted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	n := NewTeamsNotifier(server.URL, server.Client())

	if !n.Notify(testDisclosure()) {
		t.Error("Expected 202 response to count as success")
	}
}

func TestTeamsNotifyFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	n := NewTeamsNotifier(server.URL, server.Client())

	if n.Notify(testDisclosure()) {
		t.Error("Expected 400 response to count as failure")
	}
}

func TestTelegramSendText(t *testing.T) {
	var gotPath string
	var payload map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &payload)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n := &TelegramNotifier{apiURL: server.URL + "/bot123:abc", chatID: "-100200300", client: server.Client()}

	if !n.SendText("monitor started") {
		t.Fatal("Expected send to succeed")
	}
	if gotPath != "/bot123:abc/sendMessage" {
		t.Errorf("Expected sendMessage path, got: %q", gotPath)
	}
	if payload["chat_id"] != "-100200300" {
		t.Errorf("Expected chat id in payload, got: %v", payload["chat_id"])
	}
}

func TestTelegramReportedFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer server.Close()

	n := &TelegramNotifier{apiURL: server.URL + "/bot123:abc", chatID: "1", client: server.Client()}

	if n.SendText("hello") {
		t.Error("Expected ok:false response to count as failure")
	}
}

type stubNotifier struct {
	name string
	ok   bool
}

func (n *stubNotifier) Name() string                 { return n.name }
func (n *stubNotifier) Notify(f *filing.Filing) bool { return n.ok }
func (n *stubNotifier) SendText(message string) bool { return n.ok }

func TestNotifyAllIsolatesFailures(t *testing.T) {
	s := &Service{}
	s.Register(&stubNotifier{name: "good", ok: true})
	s.Register(&stubNotifier{name: "bad", ok: false})

	results := s.NotifyAll(testDisclosure())

	if len(results) != 2 {
		t.Fatalf("Expected results for both channels, got: %v", results)
	}
	if !results["good"] {
		t.Error("Expected 'good' channel to succeed despite the failing one")
	}
	if results["bad"] {
		t.Error("Expected 'bad' channel to report failure")
	}
}

func TestEvidenceTextBounds(t *testing.T) {
	f := testDisclosure()
	f.Contexts = []string{"one", "two", "three", "four"}

	text := evidenceText(f, 1000)
	if strings.Contains(text, "four") {
		t.Errorf("Expected at most three snippets, got: %q", text)
	}
	if !strings.Contains(text, "three") {
		t.Errorf("Expected third snippet included, got: %q", text)
	}

	f.Contexts = []string{strings.Repeat("x", 2000)}
	if got := evidenceText(f, 1000); len(got) != 1000 {
		t.Errorf("Expected text capped at 1000 characters, got: %d", len(got))
	}
}

func TestPostJSONTimeoutClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := &http.Client{Timeout: time.Millisecond}
	if _, _, err := postJSON(client, server.URL, map[string]any{}); err == nil {
		t.Error("Expected timeout error")
	}
}
