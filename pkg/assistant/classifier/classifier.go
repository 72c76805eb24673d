// Package classifier routes a chat message to the business or the general
// persona and picks the report categories it touches.
package classifier

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// CategoryBasic is returned when no category matches.
const CategoryBasic = "basic"

// Gate names used by the service generators.
const (
	GateAdvisor  = "advisor"
	GateMechanic = "mechanic"
	GateLeadTime = "lead_time"
	GateDetail   = "detail"
)

// Mode mirrors the query_mode flag sent by the chat widget.
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeGeneral  Mode = "general"
	ModeBusiness Mode = "business"
)

// ParseMode maps unknown or empty values to ModeAuto.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeGeneral:
		return ModeGeneral
	case ModeBusiness:
		return ModeBusiness
	default:
		return ModeAuto
	}
}

type category struct {
	Name  string   `yaml:"name"`
	Terms []string `yaml:"terms"`
}

// Rules is the parsed keyword table.
type Rules struct {
	Business      []string            `yaml:"business"`
	Indicators    []string            `yaml:"indicators"`
	Comprehensive []string            `yaml:"comprehensive"`
	Categories    []category          `yaml:"categories"`
	Gates         map[string][]string `yaml:"gates"`
}

// Classification is the routing decision for one message.
type Classification struct {
	Business      bool
	Comprehensive bool
	Categories    []string
}

type Classifier struct {
	rules Rules
}

// New parses the embedded rule table.
func New() (*Classifier, error) {
	return FromYAML(defaultRules)
}

// MustNew panics when the embedded table is broken.
func MustNew() *Classifier {
	c, err := New()
	if err != nil {
		panic(err)
	}
	return c
}

func FromYAML(raw []byte) (*Classifier, error) {
	var r Rules
	if err := yaml.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("classifier: parse rules: %w", err)
	}
	if len(r.Categories) == 0 {
		return nil, fmt.Errorf("classifier: rules define no categories")
	}
	normalize(r.Business)
	normalize(r.Indicators)
	normalize(r.Comprehensive)
	for i := range r.Categories {
		normalize(r.Categories[i].Terms)
	}
	for _, terms := range r.Gates {
		normalize(terms)
	}
	return &Classifier{rules: r}, nil
}

func normalize(terms []string) {
	for i, t := range terms {
		terms[i] = strings.ToLower(strings.TrimSpace(t))
	}
}

// IsBusinessQuery reports whether any business term or analytical phrase occurs in text.
func (c *Classifier) IsBusinessQuery(text string) bool {
	lower := strings.ToLower(text)
	return matchAny(lower, c.rules.Business) || matchAny(lower, c.rules.Indicators)
}

// IsComprehensive reports whether the user asked for a full report.
func (c *Classifier) IsComprehensive(text string) bool {
	return matchAny(strings.ToLower(text), c.rules.Comprehensive)
}

// Categorize returns every matching category in table order, or [basic].
func (c *Classifier) Categorize(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	seen := make(map[string]bool)
	for _, cat := range c.rules.Categories {
		if seen[cat.Name] {
			continue
		}
		if matchAny(lower, cat.Terms) {
			seen[cat.Name] = true
			out = append(out, cat.Name)
		}
	}
	if len(out) == 0 {
		return []string{CategoryBasic}
	}
	return out
}

// Gate reports whether one of the named gate terms occurs in text.
// An unknown gate never matches.
func (c *Classifier) Gate(name, text string) bool {
	return matchAny(strings.ToLower(text), c.rules.Gates[name])
}

// Classify applies the query mode on top of keyword routing.
func (c *Classifier) Classify(text string, mode Mode) Classification {
	var business bool
	switch mode {
	case ModeGeneral:
		return Classification{}
	case ModeBusiness:
		business = true
	default:
		business = c.IsBusinessQuery(text)
	}
	if !business {
		return Classification{}
	}
	if c.IsComprehensive(text) {
		return Classification{Business: true, Comprehensive: true}
	}
	return Classification{Business: true, Categories: c.Categorize(text)}
}

func matchAny(lower string, terms []string) bool {
	for _, t := range terms {
		if Contains(lower, t) {
			return true
		}
	}
	return false
}

// Contains matches term inside an already lower-cased text. Short terms such
// as "hr" or "sa" must stand as a whole word.
func Contains(lower, term string) bool {
	if term == "" {
		return false
	}
	if utf8.RuneCountInString(term) > 3 {
		return strings.Contains(lower, term)
	}
	for start := 0; start <= len(lower)-len(term); {
		i := strings.Index(lower[start:], term)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(term)
		if boundaryBefore(lower, i) && boundaryAfter(lower, end) {
			return true
		}
		start = i + 1
	}
	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
