package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBusinessQuery(t *testing.T) {
	c := MustNew()

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"indonesian sales", "Berapa total penjualan bulan ini?", true},
		{"english inventory", "Which products are low on STOCK?", true},
		{"analytical phrase only", "How many visits did we get?", true},
		{"trend phrase", "show me the trend", true},
		{"general knowledge", "What is the capital of France?", false},
		{"small talk", "Tell me a joke", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsBusinessQuery(tt.text))
		})
	}
}

func TestCategorize(t *testing.T) {
	c := MustNew()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"sales", "Berapa total penjualan bulan ini?", []string{"sales"}},
		{"short hr term as word", "Show me HR attendance", []string{"employees"}},
		{"service staff", "Bagaimana kinerja mekanik dan service advisor?", []string{"service"}},
		{"ordered and unique", "Prediksi penjualan dan penjualan tahun depan", []string{"sales", "prediction"}},
		{"rfm", "Tolong buat segmentasi RFM", []string{"rfm_analysis"}},
		{"booking", "berapa booking minggu ini", []string{"booking"}},
		{"nothing matches", "berapa jumlah cabang kita", []string{CategoryBasic}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Categorize(tt.text))
		})
	}
}

func TestContainsShortTermsMatchWholeWords(t *testing.T) {
	tests := []struct {
		text string
		term string
		want bool
	}{
		{"hr report", "hr", true},
		{"three days", "hr", false},
		{"kinerja sa terbaik", "sa", true},
		{"usaha kecil", "sa", false},
		{"(sa)", "sa", true},
		{"lead time servis", "lead time", true},
		{"departments", "part", true},
		{"", "hr", false},
		{"anything", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, Contains(tt.text, tt.term))
		})
	}
}

func TestClassify(t *testing.T) {
	c := MustNew()

	t.Run("comprehensive bypasses categories", func(t *testing.T) {
		got := c.Classify("Buatkan laporan lengkap bulan ini", ModeAuto)
		assert.True(t, got.Business)
		assert.True(t, got.Comprehensive)
		assert.Empty(t, got.Categories)
	})

	t.Run("complete triggers the full report", func(t *testing.T) {
		for _, msg := range []string{"give me the complete business report", "complete sales overview please"} {
			got := c.Classify(msg, ModeAuto)
			assert.True(t, got.Comprehensive, msg)
		}
		assert.True(t, c.IsComprehensive("Complete"))
	})

	t.Run("general mode wins over keywords", func(t *testing.T) {
		got := c.Classify("laporan penjualan", ModeGeneral)
		assert.False(t, got.Business)
		assert.Empty(t, got.Categories)
	})

	t.Run("business mode forces context", func(t *testing.T) {
		got := c.Classify("Tell me a joke", ModeBusiness)
		assert.True(t, got.Business)
		assert.Equal(t, []string{CategoryBasic}, got.Categories)
	})

	t.Run("auto general", func(t *testing.T) {
		got := c.Classify("What is the capital of France?", ModeAuto)
		assert.Equal(t, Classification{}, got)
	})
}

func TestGate(t *testing.T) {
	c := MustNew()

	assert.True(t, c.Gate(GateMechanic, "performa MEKANIK"))
	assert.True(t, c.Gate(GateAdvisor, "top SA this month"))
	assert.False(t, c.Gate(GateAdvisor, "usaha bengkel"))
	assert.True(t, c.Gate(GateDetail, "tampilkan rincian"))
	assert.True(t, c.Gate(GateLeadTime, "Lead Time servis"))
	assert.True(t, c.Gate(GateLeadTime, "durasi pengerjaan"))
	assert.False(t, c.Gate("unknown", "anything"))
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, ModeGeneral, ParseMode(" General "))
	assert.Equal(t, ModeBusiness, ParseMode("business"))
	assert.Equal(t, ModeAuto, ParseMode(""))
	assert.Equal(t, ModeAuto, ParseMode("other"))
}

func TestFromYAML(t *testing.T) {
	_, err := FromYAML([]byte("business: [a]"))
	require.Error(t, err)

	_, err = FromYAML([]byte(":\n  - ["))
	require.Error(t, err)

	c, err := FromYAML([]byte("categories:\n  - name: x\n    terms: [Foo]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, c.Categorize("a foo b"))
}
