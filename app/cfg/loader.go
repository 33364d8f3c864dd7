package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// SEC client configuration
	RSSURL                string  `long:"rss-url" env:"SEC_RSS_URL" default:"https://www.sec.gov/Archives/edgar/usgaap.rss.xml" description:"SEC EDGAR RSS feed URL"`
	UserAgent             string  `long:"user-agent" env:"USER_AGENT" default:"SECurityTr8Ker/1.0 (your-email@example.com)" description:"User agent string for SEC requests (SEC requires a contact address)"`
	RequestInterval       float64 `long:"request-interval" env:"SEC_REQUEST_INTERVAL" default:"1.0" description:"Minimum seconds between SEC requests"`
	MaxRetries            int     `long:"max-retries" env:"SEC_MAX_RETRIES" default:"3" description:"Maximum retries for failed SEC requests"`
	MaxConcurrentRequests int     `long:"max-concurrent-requests" env:"SEC_MAX_CONCURRENT_REQUESTS" default:"5" description:"Maximum concurrent filing fetch+classify units"`
	CacheDir              string  `long:"cache-dir" env:"CACHE_DIR" default:"./cache" description:"Directory for cached SEC responses"`

	// Monitoring configuration
	CheckInterval     int    `long:"check-interval" env:"CHECK_INTERVAL" default:"600" description:"Seconds between filing checks"`
	BusinessHoursOnly bool   `long:"business-hours-only" env:"BUSINESS_HOURS_ONLY" description:"Only check filings during SEC business hours"`
	DisclosuresFile   string `long:"disclosures-file" env:"DISCLOSURES_FILE" default:"./disclosures.json" description:"Path to the disclosure storage file"`
	TermsFile         string `long:"terms-file" env:"TERMS_FILE" description:"Optional YAML file overriding the built-in search terms"`

	// HTTP server configuration
	Port string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`

	// Notification channels
	SlackWebhookURL  string `long:"slack-webhook-url" env:"SLACK_WEBHOOK_URL" description:"Slack incoming webhook URL (optional)"`
	TeamsWebhookURL  string `long:"teams-webhook-url" env:"TEAMS_WEBHOOK_URL" description:"Microsoft Teams webhook URL (optional)"`
	TelegramBotToken string `long:"telegram-bot-token" env:"TELEGRAM_BOT_TOKEN" description:"Telegram bot token (optional)"`
	TelegramChatID   string `long:"telegram-chat-id" env:"TELEGRAM_CHAT_ID" description:"Telegram chat ID (optional)"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses configuration from command-line flags and environment
// variables. It returns (nil, nil) when help output was requested.
func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		RSSURL:                raw.RSSURL,
		UserAgent:             raw.UserAgent,
		RequestInterval:       raw.RequestInterval,
		MaxRetries:            raw.MaxRetries,
		MaxConcurrentRequests: raw.MaxConcurrentRequests,
		CacheDir:              raw.CacheDir,
		CheckInterval:         raw.CheckInterval,
		BusinessHoursOnly:     raw.BusinessHoursOnly,
		DisclosuresFile:       raw.DisclosuresFile,
		TermsFile:             raw.TermsFile,
		Port:                  raw.Port,
		SlackWebhookURL:       raw.SlackWebhookURL,
		TeamsWebhookURL:       raw.TeamsWebhookURL,
		TelegramBotToken:      raw.TelegramBotToken,
		TelegramChatID:        raw.TelegramChatID,
		Debug:                 raw.Debug,
		Version:               GetVersion(),
	}

	return cfg, nil
}
