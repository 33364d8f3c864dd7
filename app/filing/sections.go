package filing

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Duplicate header matches within this many characters of each other are
// treated as the same header (overlapping tags produce repeat matches).
const duplicateTolerance = 50

var (
	headerPattern     = regexp.MustCompile(`(?i)(item\s+\d+\.\d+)\)?`)
	itemNamePattern   = regexp.MustCompile(`(?i)^item\s+\d+\.\d+$`)
	markupPattern     = regexp.MustCompile(`(<[^>]+>)|(&#\d{1,4};)`)
	whitespacePattern = regexp.MustCompile(`\s+`)

	forwardLookingMarkers = []*regexp.Regexp{
		regexp.MustCompile(`(?i)forward-looking\s+statements?`),
		regexp.MustCompile(`(?i)cautionary\s+statement\s+regarding\s+forward-looking`),
	}
)

// CleanText strips markup tags and numeric character references and
// collapses whitespace, producing the canonical text every section
// position refers to.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, " ", " ")
	text = markupPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// SectionExtractor recovers named item sections from SEC filing documents.
// Headers are located via the document structure first (bold, paragraph and
// div elements, which EDGAR filings typically wrap headers in), with a regex
// pass over the flattened text as fallback for headers not wrapped distinctly.
type SectionExtractor struct{}

func NewSectionExtractor() *SectionExtractor {
	return &SectionExtractor{}
}

type headerCandidate struct {
	name   string
	header string
	pos    int
}

// Extract returns every item section found in the document, keyed by
// normalized name (e.g. "item 1.05"). A document without recognizable
// headers yields an empty map.
func (e *SectionExtractor) Extract(documentText string) map[string]Section {
	cleaned := CleanText(documentText)

	var candidates []headerCandidate
	taken := make(map[int]bool)

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(documentText)); err == nil {
		doc.Find("b, strong, p, div").Each(func(_ int, sel *goquery.Selection) {
			tagText := strings.TrimSpace(strings.ReplaceAll(sel.Text(), " ", " "))
			if tagText == "" {
				return
			}

			m := headerPattern.FindStringSubmatch(tagText)
			if m == nil {
				return
			}

			header := CleanText(m[0])
			pos := strings.Index(cleaned, header)
			if pos == -1 {
				slog.Debug("Header from tag not found in cleaned text", "header", header)
				return
			}

			name := normalizeSectionName(m[1])
			for _, c := range candidates {
				if c.name == name && abs(c.pos-pos) < duplicateTolerance {
					return
				}
			}

			candidates = append(candidates, headerCandidate{name: name, header: header, pos: pos})
			taken[pos] = true
		})
	}

	allHeaderStarts := make([]int, 0)
	for _, m := range headerPattern.FindAllStringSubmatchIndex(cleaned, -1) {
		allHeaderStarts = append(allHeaderStarts, m[0])

		if taken[m[0]] {
			continue
		}
		candidates = append(candidates, headerCandidate{
			name:   normalizeSectionName(cleaned[m[2]:m[3]]),
			header: strings.TrimSpace(cleaned[m[0]:m[1]]),
			pos:    m[0],
		})
		taken[m[0]] = true
	}

	if len(candidates) == 0 {
		slog.Debug("No section header candidates found")
		return map[string]Section{}
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].pos < candidates[j].pos })

	spans := forwardLookingSpans(cleaned, allHeaderStarts)

	sections := make(map[string]Section)
	for i, cand := range candidates {
		end := len(cleaned)
		if i+1 < len(candidates) {
			end = candidates[i+1].pos
		}

		// Headers that begin inside cautionary boilerplate are not real
		// sections.
		inSpan := false
		for _, span := range spans {
			if span[0] <= cand.pos && cand.pos < span[1] {
				inSpan = true
				break
			}
		}
		if inSpan {
			slog.Debug("Skipping section starting within forward-looking span", "section", cand.name)
			continue
		}

		for _, span := range spans {
			if cand.pos < span[0] && span[0] < end {
				end = span[0]
			}
		}

		if !itemNamePattern.MatchString(cand.name) {
			continue
		}

		contentStart := cand.pos + len(cand.header)
		if contentStart > end {
			contentStart = end
		}

		sections[cand.name] = Section{
			Name:     cand.name,
			Content:  strings.TrimSpace(cleaned[contentStart:end]),
			StartPos: contentStart,
			EndPos:   end,
		}
	}

	slog.Debug("Extracted sections from document", "count", len(sections))

	return sections
}

// forwardLookingSpans locates cautionary-language spans, each running from
// its marker to the next item header (or end of document).
func forwardLookingSpans(text string, headerStarts []int) [][2]int {
	var spans [][2]int

	for _, marker := range forwardLookingMarkers {
		for _, m := range marker.FindAllStringIndex(text, -1) {
			end := len(text)
			for _, hp := range headerStarts {
				if hp > m[0] {
					end = hp
					break
				}
			}
			spans = append(spans, [2]int{m[0], end})
		}
	}

	return spans
}

func normalizeSectionName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, ")", "")
	return whitespacePattern.ReplaceAllString(name, " ")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
