package filing

import "time"

// Filing represents a single SEC submission announced on the EDGAR feed.
// It is constructed from the RSS feed and enriched with a ticker symbol and
// document sections during analysis.
type Filing struct {
	FormType     string
	CompanyName  string
	CIK          string
	FilingHREF   string
	FilingDate   string
	TickerSymbol string

	Sections      map[string]Section
	MatchingTerms []string
	Contexts      []string
}

// Section is a named span of a filing document, keyed by the normalized
// item number (e.g. "item 1.05"). Positions index into the cleaned text.
type Section struct {
	Name     string
	Content  string
	StartPos int
	EndPos   int
}

// HasItem105 reports whether the filing carries a Material Cybersecurity
// Incidents section.
func (f *Filing) HasItem105() bool {
	_, ok := f.Sections["item 1.05"]
	return ok
}

// HasItem801 reports whether the filing carries an Other Events section.
func (f *Filing) HasItem801() bool {
	_, ok := f.Sections["item 8.01"]
	return ok
}

// Record is the persisted form of a confirmed disclosure.
type Record struct {
	CompanyName   string    `json:"company_name"`
	CIK           string    `json:"cik"`
	Ticker        string    `json:"ticker,omitempty"`
	FormType      string    `json:"form_type"`
	FilingDate    string    `json:"filing_date"`
	FilingURL     string    `json:"filing_url"`
	MatchingTerms []string  `json:"matching_terms"`
	Context       string    `json:"context"`
	AddedAt       time.Time `json:"added_at"`
}
