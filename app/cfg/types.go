package cfg

type Cfg struct {
	// SEC client configuration
	RSSURL                string
	UserAgent             string
	RequestInterval       float64
	MaxRetries            int
	MaxConcurrentRequests int
	CacheDir              string

	// Monitoring configuration
	CheckInterval     int
	BusinessHoursOnly bool
	DisclosuresFile   string
	TermsFile         string

	// HTTP server configuration
	Port string

	// Notification channels
	SlackWebhookURL  string
	TeamsWebhookURL  string
	TelegramBotToken string
	TelegramChatID   string

	// Application metadata
	Debug   bool
	Version string
}
