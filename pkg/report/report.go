// Package report turns ERP data into the text blocks handed to the model as
// business context.
package report

import (
	"context"
	"fmt"
	"math"
	"strings"

	"jarvis-ai-be/pkg/assistant/period"
)

// Request is the input shared by every generator.
type Request struct {
	Message   string
	CompanyID int64
	Period    period.Range
}

// Section is one generator's output. Metrics carries the numbers other
// generators (the comprehensive report) reason over.
type Section struct {
	Title   string             `json:"title"`
	Body    string             `json:"body"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

func (s *Section) String() string {
	if s == nil {
		return ""
	}
	if s.Title == "" {
		return s.Body
	}
	return s.Title + "\n" + s.Body
}

// Metric returns a metric or zero.
func (s *Section) Metric(key string) float64 {
	if s == nil || s.Metrics == nil {
		return 0
	}
	return s.Metrics[key]
}

type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (*Section, error)
}

// Matcher lets a generator opt out of a category dispatch based on the message.
type Matcher interface {
	Applies(message string) bool
}

// Varianter is implemented by generators whose output depends on the message
// beyond the period, so the cache keeps those outputs apart.
type Varianter interface {
	Variant(message string) string
}

// NoData is the uniform empty answer.
func NoData(title, what string, p period.Range) *Section {
	return &Section{
		Title: title,
		Body:  fmt.Sprintf("No %s data found for the period %s to %s.", what, p.FromString(), p.ToString()),
	}
}

func header(title string, p period.Range) string {
	return fmt.Sprintf("%s (%s to %s):", title, p.FromString(), p.ToString())
}

func headerID(title string, p period.Range) string {
	return fmt.Sprintf("%s (%s hingga %s):", title, p.FromString(), p.ToString())
}

type lines struct {
	sb strings.Builder
}

func (l *lines) add(format string, args ...interface{}) {
	fmt.Fprintf(&l.sb, format, args...)
	l.sb.WriteByte('\n')
}

func (l *lines) blank() {
	l.sb.WriteByte('\n')
}

func (l *lines) String() string {
	return strings.TrimRight(l.sb.String(), "\n")
}

func pct(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

func ratio(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// growth is the percent change from prev to cur, measured against |prev| so a
// loss shrinking towards zero reads as positive. A zero base gives +-100 or 0.
func growth(cur, prev float64) float64 {
	if prev == 0 {
		switch {
		case cur > 0:
			return 100
		case cur < 0:
			return -100
		}
		return 0
	}
	return (cur - prev) / math.Abs(prev) * 100
}

// money renders an amount with thousands separators and two decimals.
func money(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.2f", v)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := b.String() + frac
	if neg {
		return "-" + out
	}
	return out
}
