// Package period resolves the reporting window mentioned in a chat message.
package period

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// Range is an inclusive pair of calendar dates.
type Range struct {
	From  time.Time
	To    time.Time
	Label string
	Note  string // set when the requested window had to be moved
}

func (r Range) FromString() string { return r.From.Format(DateLayout) }
func (r Range) ToString() string   { return r.To.Format(DateLayout) }

func (r Range) String() string {
	return fmt.Sprintf("%s to %s", r.FromString(), r.ToString())
}

// Days is the number of calendar days covered, both ends included.
func (r Range) Days() int {
	return int(math.Round(r.To.Sub(r.From).Hours()/24)) + 1
}

var monthNames = map[string]time.Month{
	"january":   time.January,
	"januari":   time.January,
	"february":  time.February,
	"februari":  time.February,
	"march":     time.March,
	"maret":     time.March,
	"april":     time.April,
	"may":       time.May,
	"mei":       time.May,
	"june":      time.June,
	"juni":      time.June,
	"july":      time.July,
	"juli":      time.July,
	"august":    time.August,
	"agustus":   time.August,
	"september": time.September,
	"october":   time.October,
	"oktober":   time.October,
	"november":  time.November,
	"nopember":  time.November,
	"december":  time.December,
	"desember":  time.December,
}

const monthAlt = `january|januari|february|februari|march|maret|april|may|mei|june|juni|july|juli|august|agustus|september|october|oktober|november|nopember|december|desember`

var (
	reRange     = regexp.MustCompile(`\b(?:from|dari)\s+(` + monthAlt + `)(?:\s+(\d{4}))?\s+(?:to|sampai|hingga|until|-)\s+(` + monthAlt + `)(?:\s+(\d{4}))?\b`)
	reMonthYear = regexp.MustCompile(`\b(` + monthAlt + `)\s+(\d{4})\b`)
	reBareMonth = regexp.MustCompile(`\b(` + monthAlt + `)\b`)
	reAmbiguous = regexp.MustCompile(`\b(?:in|of|bulan)\s+(may|march)\b`)
	reLastDays  = regexp.MustCompile(`\b(?:last|past)\s+(\d{1,3})\s+days?\b|\b(\d{1,3})\s+hari\s+terakhir\b`)
)

type relative struct {
	pattern *regexp.Regexp
	resolve func(today time.Time) (time.Time, time.Time)
	label   string
}

func word(alts ...string) *regexp.Regexp {
	return regexp.MustCompile(`\b(?:` + strings.Join(alts, "|") + `)\b`)
}

// Checked in order; the first hit wins.
var relatives = []relative{
	{word("yesterday", "kemarin"), func(t time.Time) (time.Time, time.Time) {
		y := t.AddDate(0, 0, -1)
		return y, y
	}, "yesterday"},
	{word("today", "hari ini"), func(t time.Time) (time.Time, time.Time) { return t, t }, "today"},
	{word("last week", "minggu lalu", "pekan lalu"), func(t time.Time) (time.Time, time.Time) {
		start := startOfWeek(t).AddDate(0, 0, -7)
		return start, start.AddDate(0, 0, 6)
	}, "last week"},
	{word("this week", "minggu ini", "pekan ini"), thisWeek, "this week"},
	{word("last month", "bulan lalu"), func(t time.Time) (time.Time, time.Time) {
		start := startOfMonth(t).AddDate(0, -1, 0)
		return start, endOfMonth(start)
	}, "last month"},
	{word("this month", "bulan ini"), thisMonth, "this month"},
	{word("last quarter", "kuartal lalu", "triwulan lalu"), func(t time.Time) (time.Time, time.Time) {
		start := startOfQuarter(t).AddDate(0, -3, 0)
		return start, endOfMonth(start.AddDate(0, 2, 0))
	}, "last quarter"},
	{word("this quarter", "kuartal ini", "triwulan ini"), thisQuarter, "this quarter"},
	{word("last year", "tahun lalu"), func(t time.Time) (time.Time, time.Time) {
		start := date(t.Year()-1, time.January, 1, t.Location())
		return start, date(t.Year()-1, time.December, 31, t.Location())
	}, "last year"},
	{word("this year", "tahun ini"), thisYear, "this year"},
	{word("week", "minggu", "pekan"), thisWeek, "this week"},
	{word("month", "bulan"), thisMonth, "this month"},
	{word("quarter", "kuartal", "triwulan"), thisQuarter, "this quarter"},
	{word("year", "tahun"), thisYear, "this year"},
}

// Extract resolves the period named in message relative to now. Dates are
// taken in now's location; "this month" is the default.
func Extract(message string, now time.Time) Range {
	today := truncate(now)
	lower := strings.ToLower(message)

	r, monthly := explicit(lower, today)
	if !monthly {
		r = relativeRange(lower, today)
	}

	if r.From.After(today) {
		requested := r
		// Step back whole years until the start is no longer ahead of today.
		years := 1
		for requested.From.AddDate(-years, 0, 0).After(today) {
			years++
		}
		r.From = requested.From.AddDate(-years, 0, 0)
		if monthly {
			r.To = endOfMonth(requested.To.AddDate(0, 0, 1-requested.To.Day()).AddDate(-years, 0, 0))
			r.Label = monthLabel(r.From, r.To)
		} else {
			r.To = requested.To.AddDate(-years, 0, 0)
		}
		r.Note = fmt.Sprintf("Note: requested period %s is in the future; showing %s instead.", requested.Label, r.Label)
	}
	if r.To.After(today) {
		r.To = today
	}
	return r
}

func explicit(lower string, today time.Time) (Range, bool) {
	loc := today.Location()

	if m := reRange.FindStringSubmatch(lower); m != nil {
		y1, y2 := today.Year(), today.Year()
		switch {
		case m[2] != "" && m[4] != "":
			y1, y2 = atoi(m[2]), atoi(m[4])
		case m[2] != "":
			y1, y2 = atoi(m[2]), atoi(m[2])
		case m[4] != "":
			y1, y2 = atoi(m[4]), atoi(m[4])
		}
		from := date(y1, monthNames[m[1]], 1, loc)
		toStart := date(y2, monthNames[m[3]], 1, loc)
		if toStart.Before(from) {
			toStart = toStart.AddDate(1, 0, 0)
		}
		to := endOfMonth(toStart)
		return Range{From: from, To: to, Label: monthLabel(from, to)}, true
	}

	if m := reMonthYear.FindStringSubmatch(lower); m != nil {
		from := date(atoi(m[2]), monthNames[m[1]], 1, loc)
		to := endOfMonth(from)
		return Range{From: from, To: to, Label: monthLabel(from, to)}, true
	}

	for _, m := range reBareMonth.FindAllStringSubmatch(lower, -1) {
		name := m[1]
		if (name == "may" || name == "march") && !reAmbiguous.MatchString(lower) {
			continue
		}
		from := date(today.Year(), monthNames[name], 1, loc)
		to := endOfMonth(from)
		return Range{From: from, To: to, Label: monthLabel(from, to)}, true
	}

	return Range{}, false
}

func relativeRange(lower string, today time.Time) Range {
	if m := reLastDays.FindStringSubmatch(lower); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if n := atoi(raw); n > 0 {
			return Range{From: today.AddDate(0, 0, 1-n), To: today, Label: fmt.Sprintf("last %d days", n)}
		}
	}
	for _, rel := range relatives {
		if rel.pattern.MatchString(lower) {
			from, to := rel.resolve(today)
			return Range{From: from, To: to, Label: rel.label}
		}
	}
	from, to := thisMonth(today)
	return Range{From: from, To: to, Label: "this month"}
}

// Previous returns the window the given range is compared against.
func Previous(r Range) Range {
	switch {
	case r.From.Day() == 1 && r.From.Year() == r.To.Year() && r.From.Month() == r.To.Month():
		from := r.From.AddDate(0, -1, 0)
		to := endOfMonth(from)
		return Range{From: from, To: to, Label: monthLabel(from, to)}
	case r.From.Weekday() == time.Monday && r.Days() > 1 && r.Days() <= 7:
		return Range{From: r.From.AddDate(0, 0, -7), To: r.From.AddDate(0, 0, -1), Label: "previous week"}
	default:
		n := r.Days()
		return Range{From: r.From.AddDate(0, 0, -n), To: r.From.AddDate(0, 0, -1), Label: fmt.Sprintf("previous %d days", n)}
	}
}

// WorkingDays counts Monday to Saturday between from and to, inclusive.
func WorkingDays(from, to time.Time) int {
	from, to = truncate(from), truncate(to)
	n := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Sunday {
			n++
		}
	}
	return n
}

// LastMonths returns the n whole calendar months ending with the month of now.
func LastMonths(now time.Time, n int) Range {
	end := endOfMonth(truncate(now))
	from := startOfMonth(truncate(now)).AddDate(0, 1-n, 0)
	return Range{From: from, To: end, Label: fmt.Sprintf("last %d months", n)}
}

func monthLabel(from, to time.Time) string {
	if from.Year() == to.Year() && from.Month() == to.Month() {
		return from.Format("January 2006")
	}
	return from.Format("January 2006") + " - " + to.Format("January 2006")
}

func thisWeek(t time.Time) (time.Time, time.Time) {
	start := startOfWeek(t)
	return start, start.AddDate(0, 0, 6)
}

func thisMonth(t time.Time) (time.Time, time.Time) {
	start := startOfMonth(t)
	return start, endOfMonth(start)
}

func thisQuarter(t time.Time) (time.Time, time.Time) {
	start := startOfQuarter(t)
	return start, endOfMonth(start.AddDate(0, 2, 0))
}

func thisYear(t time.Time) (time.Time, time.Time) {
	return date(t.Year(), time.January, 1, t.Location()), date(t.Year(), time.December, 31, t.Location())
}

func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	return date(t.Year(), t.Month(), 1, t.Location())
}

func startOfQuarter(t time.Time) time.Time {
	m := time.Month((int(t.Month())-1)/3*3 + 1)
	return date(t.Year(), m, 1, t.Location())
}

func endOfMonth(t time.Time) time.Time {
	return startOfMonth(t).AddDate(0, 1, -1)
}

func truncate(t time.Time) time.Time {
	return date(t.Year(), t.Month(), t.Day(), t.Location())
}

func date(y int, m time.Month, d int, loc *time.Location) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
