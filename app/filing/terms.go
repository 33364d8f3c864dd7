package filing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Terms holds the keyword vocabulary the analyzer matches against.
// Every list has a built-in default and can be overridden from a YAML file.
type Terms struct {
	// Cybersecurity terms scanned for inside Item 8.01 sections.
	Cybersecurity []string `yaml:"cybersecurity"`
	// FalsePositives are hedging phrases that suppress a match when found
	// in its surrounding context.
	FalsePositives []string `yaml:"false_positives"`
}

func DefaultTerms() *Terms {
	return &Terms{
		Cybersecurity: []string{
			"unauthorized access",
			"unauthorized activity",
			"cybersecurity incident",
			"cyber-attack",
			"cyberattack",
			"threat actor",
			"security incident",
			"ransomware attack",
			"cyber incident",
			"unauthorized third party",
			"unauthorized occurrences within its computer network",
		},
		FalsePositives: []string{
			"forward-looking statements",
			"forward looking statements",
			"risk factors",
			"not experienced any",
			"no cybersecurity incidents",
			"has not had",
			"has not experienced",
			"hypothetically",
			"future incident",
			"potential incident",
			"in the event of",
			"could result in",
			"would result in",
			"may result in",
			"might result in",
			"potentially",
			"uncertainties",
			"potential future",
			"ability to prevent",
			"ability to contain",
			"risks related to",
			"could be subject to",
			"may be subject to",
			"can be no assurance",
			"cautionary statement",
		},
	}
}

// LoadTerms reads a YAML terms file and merges it over the defaults.
// Empty lists in the file keep the built-in vocabulary.
func LoadTerms(path string) (*Terms, error) {
	terms := DefaultTerms()
	if path == "" {
		return terms, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read terms file: %w", err)
	}

	var override Terms
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse terms file: %w", err)
	}

	if len(override.Cybersecurity) > 0 {
		terms.Cybersecurity = override.Cybersecurity
	}
	if len(override.FalsePositives) > 0 {
		terms.FalsePositives = override.FalsePositives
	}

	return terms, nil
}
