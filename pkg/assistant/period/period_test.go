package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Wednesday
var now = time.Date(2025, time.June, 18, 15, 30, 0, 0, time.UTC)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		from     time.Time
		to       time.Time
		label    string
		wantNote bool
	}{
		{"default this month", "berapa penjualan?", d(2025, 6, 1), d(2025, 6, 18), "this month", false},
		{"last month id", "penjualan bulan lalu", d(2025, 5, 1), d(2025, 5, 31), "last month", false},
		{"last week", "sales last week", d(2025, 6, 9), d(2025, 6, 15), "last week", false},
		{"this week clamped", "absensi minggu ini", d(2025, 6, 16), d(2025, 6, 18), "this week", false},
		{"yesterday", "order kemarin", d(2025, 6, 17), d(2025, 6, 17), "yesterday", false},
		{"today", "penjualan hari ini", d(2025, 6, 18), d(2025, 6, 18), "today", false},
		{"last quarter", "revenue last quarter", d(2025, 1, 1), d(2025, 3, 31), "last quarter", false},
		{"last year", "laba tahun lalu", d(2024, 1, 1), d(2024, 12, 31), "last year", false},
		{"this year clamped", "sales this year", d(2025, 1, 1), d(2025, 6, 18), "this year", false},
		{"month with year", "laporan maret 2024", d(2024, 3, 1), d(2024, 3, 31), "March 2024", false},
		{"bare month", "penjualan bulan februari", d(2025, 2, 1), d(2025, 2, 28), "February 2025", false},
		{"ambiguous may is skipped", "may I see the sales", d(2025, 6, 1), d(2025, 6, 18), "this month", false},
		{"qualified may", "sales in may", d(2025, 5, 1), d(2025, 5, 31), "May 2025", false},
		{"explicit month beats relative", "penjualan januari dibanding bulan lalu", d(2025, 1, 1), d(2025, 1, 31), "January 2025", false},
		{"range with trailing year", "dari januari sampai maret 2024", d(2024, 1, 1), d(2024, 3, 31), "January 2024 - March 2024", false},
		{"future month moves back a year", "penjualan desember", d(2024, 12, 1), d(2024, 12, 31), "December 2024", true},
		{"far future month steps back to the latest past one", "sales in December 2030", d(2024, 12, 1), d(2024, 12, 31), "December 2024", true},
		{"next year month already passed this year", "laporan maret 2026", d(2025, 3, 1), d(2025, 3, 31), "March 2025", true},
		{"future range wraps", "from november to february", d(2024, 11, 1), d(2025, 2, 28), "November 2024 - February 2025", true},
		{"last n days", "orders in the last 7 days", d(2025, 6, 12), d(2025, 6, 18), "last 7 days", false},
		{"n hari terakhir", "penjualan 30 hari terakhir", d(2025, 5, 20), d(2025, 6, 18), "last 30 days", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Extract(tt.message, now)
			assert.Equal(t, tt.from, r.From)
			assert.Equal(t, tt.to, r.To)
			assert.Equal(t, tt.label, r.Label)
			if tt.wantNote {
				assert.Contains(t, r.Note, "is in the future")
			} else {
				assert.Empty(t, r.Note)
			}
		})
	}
}

func TestExtractFutureNoteText(t *testing.T) {
	r := Extract("penjualan desember", now)
	assert.Equal(t, "Note: requested period December 2025 is in the future; showing December 2024 instead.", r.Note)
}

func TestExtractFutureNeverInverts(t *testing.T) {
	for _, msg := range []string{"sales in December 2030", "penjualan juli 2027", "from august 2031 to october 2031"} {
		r := Extract(msg, now)
		assert.False(t, r.From.After(r.To), "%s: from %s after to %s", msg, r.FromString(), r.To.Format("2006-01-02"))
		assert.False(t, r.From.After(d(2025, 6, 18)), msg)
	}

	r := Extract("penjualan juli 2027", now)
	assert.Equal(t, d(2024, 7, 1), r.From)
	assert.Equal(t, "Note: requested period July 2027 is in the future; showing July 2024 instead.", r.Note)
}

func TestExtractKeepsLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	// 20:00 UTC on the 30th is already the 1st in Jakarta.
	r := Extract("hari ini", time.Date(2025, time.June, 30, 20, 0, 0, 0, time.UTC).In(jakarta))
	assert.Equal(t, time.Date(2025, time.July, 1, 0, 0, 0, 0, jakarta), r.From)
	assert.Equal(t, "2025-07-01", r.FromString())
}

func TestPrevious(t *testing.T) {
	tests := []struct {
		name string
		in   Range
		from time.Time
		to   time.Time
	}{
		{"full month", Range{From: d(2025, 6, 1), To: d(2025, 6, 30)}, d(2025, 5, 1), d(2025, 5, 31)},
		{"partial current month", Range{From: d(2025, 3, 1), To: d(2025, 3, 18)}, d(2025, 2, 1), d(2025, 2, 28)},
		{"week", Range{From: d(2025, 6, 9), To: d(2025, 6, 15)}, d(2025, 6, 2), d(2025, 6, 8)},
		{"seven days mid week", Range{From: d(2025, 6, 12), To: d(2025, 6, 18)}, d(2025, 6, 5), d(2025, 6, 11)},
		{"quarter uses equal window", Range{From: d(2025, 1, 1), To: d(2025, 3, 31)}, d(2024, 10, 3), d(2024, 12, 31)},
		{"single monday", Range{From: d(2025, 6, 16), To: d(2025, 6, 16)}, d(2025, 6, 15), d(2025, 6, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Previous(tt.in)
			assert.Equal(t, tt.from, p.From)
			assert.Equal(t, tt.to, p.To)
		})
	}
}

func TestWorkingDays(t *testing.T) {
	assert.Equal(t, 6, WorkingDays(d(2025, 6, 16), d(2025, 6, 22)))
	assert.Equal(t, 25, WorkingDays(d(2025, 6, 1), d(2025, 6, 30)))
	assert.Equal(t, 0, WorkingDays(d(2025, 6, 22), d(2025, 6, 22)))
	assert.Equal(t, 0, WorkingDays(d(2025, 6, 20), d(2025, 6, 19)))
}

func TestRangeHelpers(t *testing.T) {
	r := Range{From: d(2025, 6, 1), To: d(2025, 6, 30)}
	assert.Equal(t, 30, r.Days())
	assert.Equal(t, "2025-06-01 to 2025-06-30", r.String())

	last := LastMonths(now, 3)
	assert.Equal(t, d(2025, 4, 1), last.From)
	assert.Equal(t, d(2025, 6, 30), last.To)
}
