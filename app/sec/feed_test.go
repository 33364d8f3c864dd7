package sec

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const feedFixture = `<?xml version="1.0" encoding="ISO-8859-1"?>
<rss version="2.0" xmlns:edgar="https://www.sec.gov/Archives/edgar" xmlns:atom="http://www.w3.org/2005/Atom">
<channel>
<title>USGAAP Filings</title>
<link>https://www.sec.gov/cgi-bin/browse-edgar?action=getcompany</link>
<description>Latest filings</description>
<item>
<title>8-K - ACME CORP (0000123456) (Filer)</title>
<link>https://www.sec.gov/Archives/edgar/data/123456/000012345624000010-index.htm</link>
<description>8-K</description>
<pubDate>Thu, 15 Feb 2024 16:30:00 EST</pubDate>
<edgar:xbrlFiling>
<edgar:companyName>ACME CORP</edgar:companyName>
<edgar:formType>8-K</edgar:formType>
<edgar:cikNumber>0000123456</edgar:cikNumber>
<edgar:xbrlFiles>
<edgar:xbrlFile edgar:sequence="1" edgar:file="acme-8k.htm" edgar:type="8-K" edgar:size="24012" edgar:url="https://www.sec.gov/Archives/edgar/data/123456/acme-8k.htm"/>
<edgar:xbrlFile edgar:sequence="2" edgar:file="acme-ex991.jpg" edgar:type="GRAPHIC" edgar:size="4096" edgar:url="https://www.sec.gov/Archives/edgar/data/123456/acme-ex991.jpg"/>
</edgar:xbrlFiles>
</edgar:xbrlFiling>
</item>
<item>
<title>10-Q - WIDGETS INC (0000987654) (Filer)</title>
<link>https://www.sec.gov/Archives/edgar/data/987654/000098765424000022-index.htm</link>
<description>10-Q</description>
<pubDate>Thu, 15 Feb 2024 16:25:00 EST</pubDate>
<edgar:xbrlFiling>
<edgar:companyName>WIDGETS INC</edgar:companyName>
<edgar:formType>10-Q</edgar:formType>
<edgar:cikNumber>0000987654</edgar:cikNumber>
<edgar:xbrlFiles>
<edgar:xbrlFile edgar:sequence="1" edgar:file="widgets-10q.htm" edgar:type="10-Q" edgar:size="128000" edgar:url="https://www.sec.gov/Archives/edgar/data/987654/widgets-10q.htm"/>
</edgar:xbrlFiles>
</edgar:xbrlFiling>
</item>
<item>
<title>8-K - INCOMPLETE CO (0000555555) (Filer)</title>
<link>https://www.sec.gov/Archives/edgar/data/555555/000055555524000001-index.htm</link>
<description>8-K</description>
<pubDate>Thu, 15 Feb 2024 16:20:00 EST</pubDate>
</item>
</channel>
</rss>`

func TestFetchFilings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(feedFixture))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	filings := c.FetchFilings(context.Background())

	if len(filings) != 1 {
		t.Fatalf("Expected 1 filing (10-Q and incomplete items dropped), got: %d", len(filings))
	}

	f := filings[0]
	if f.FormType != "8-K" {
		t.Errorf("Expected form type '8-K', got: %q", f.FormType)
	}
	if f.CompanyName != "ACME CORP" {
		t.Errorf("Expected company 'ACME CORP', got: %q", f.CompanyName)
	}
	if f.CIK != "0000123456" {
		t.Errorf("Expected CIK '0000123456', got: %q", f.CIK)
	}
	if f.FilingHREF != "https://www.sec.gov/Archives/edgar/data/123456/acme-8k.htm" {
		t.Errorf("Expected the first .htm document URL, got: %q", f.FilingHREF)
	}
	if f.FilingDate == "" {
		t.Error("Expected filing date from pubDate")
	}
}

func TestFetchFilingsUnreachableFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	if filings := c.FetchFilings(context.Background()); len(filings) != 0 {
		t.Errorf("Expected no filings on feed failure, got: %d", len(filings))
	}
}

func TestFetchFilingsMalformedFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not xml"))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	if filings := c.FetchFilings(context.Background()); len(filings) != 0 {
		t.Errorf("Expected no filings for unparseable feed, got: %d", len(filings))
	}
}

func TestDocumentContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>Item 8.01 Other Events</html>"))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	content, ok := c.DocumentContent(context.Background(), server.URL)
	if !ok {
		t.Fatal("Expected document fetch to succeed")
	}
	if content != "<html>Item 8.01 Other Events</html>" {
		t.Errorf("Expected document body, got: %q", content)
	}
}
