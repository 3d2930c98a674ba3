package textfix

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "Odd – Start", "Odd – Start"},
		{"oslash", "Ã¸st", "øst"},
		{"repeated", "LillestrÃ¸m â€“ TromsÃ¸", "Lillestrøm – Tromsø"},
		{"capitals", "Ã˜stfold Ã…lesund Ã†", "Østfold Ålesund Æ"},
		{"aring and ae", "BodÃ¸/Glimt pÃ¥ Ã¦re", "Bodø/Glimt på ære"},
		{"punctuation", "â€œHeiâ€� â€” Oddâ€™s â€¦", "“Hei” — Odd’s …"},
		{"stray marker", "Kl.Â 18:00", "Kl. 18:00"},
		{"spliced by deletion", "ÃÂ¸", "ø"},
		{"spliced by replacement", "â€â€œ", "–"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := String(tt.in)
			assert.Equal(t, tt.want, got)
			assert.False(t, Contains(got))
		})
	}
}

func TestStringLeavesNoPattern(t *testing.T) {
	var b strings.Builder
	for _, r := range table {
		for i := 0; i < 3; i++ {
			b.WriteString(r.from)
			b.WriteString("Â")
			b.WriteString(string([]rune(r.from)[0]))
		}
	}
	got := String(b.String())
	for _, r := range table {
		assert.NotContains(t, got, r.from)
	}
}

func TestValue(t *testing.T) {
	in := map[string]any{
		"home":       "VÃ¥lerenga",
		"stÃ¸rrelse": float64(3),
		"where":      []any{"VikinghjÃ¸rnet", "Gimle Pub", nil},
		"nested": map[string]any{
			"pÃ¥": []any{map[string]any{"by": "TÃ¸nsberg"}},
		},
		"live": true,
	}

	got := Value(in)
	want := map[string]any{
		"home":      "Vålerenga",
		"størrelse": float64(3),
		"where":     []any{"Vikinghjørnet", "Gimle Pub", nil},
		"nested": map[string]any{
			"på": []any{map[string]any{"by": "Tønsberg"}},
		},
		"live": true,
	}
	assert.Equal(t, want, got)

	// the input is not modified
	_, stillThere := in["stÃ¸rrelse"]
	assert.True(t, stillThere)
}

func TestValueIdempotent(t *testing.T) {
	doc := []any{
		map[string]any{"Ã¸": "Ã¦Ã¸Ã¥", "list": []any{"â€“", "ok"}},
		"Â",
	}
	once := Value(doc)
	twice := Value(once)
	require.Equal(t, once, twice)
}

func TestValueKeyCollision(t *testing.T) {
	in := map[string]any{
		"ø":  "clean",
		"Ã¸": "repaired",
	}
	got := Value(in).(map[string]any)
	assert.Len(t, got, 1)
	assert.Equal(t, "clean", got["ø"])
}

func TestValueKeyCollisionStable(t *testing.T) {
	in := map[string]any{
		"ÃÂ¸": "spliced",
		"Ã¸":  "plain",
	}
	for range 100 {
		got := Value(in).(map[string]any)
		require.Len(t, got, 1)
		require.Equal(t, "plain", got["ø"])
	}
}

func TestRecodeValueKeyCollision(t *testing.T) {
	in := map[string]any{
		"Bodø":  "clean",
		"BodÃ¸": "recoded",
	}
	for range 100 {
		got := RecodeValue(in).(map[string]any)
		require.Len(t, got, 1)
		require.Equal(t, "clean", got["Bodø"])
	}
}

func TestRecode(t *testing.T) {
	assert.Equal(t, "Lillestrøm", Recode("LillestrÃ¸m"))
	assert.Equal(t, "Sandefjord", Recode("Sandefjord"))
	// "Ã" followed by a rune that is not in Windows-1252
	assert.Equal(t, "Ã漢", Recode("Ã漢"))

	v := RecodeValue(map[string]any{"BodÃ¸": []any{"TromsÃ¸", float64(1)}})
	assert.Equal(t, map[string]any{"Bodø": []any{"Tromsø", float64(1)}}, v)
}
