package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanDescription(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "doubled glyphs", in: "TTIIRRZZEEPPAATTIIDDEE", want: "TIRZEPATIDE"},
		{name: "doubled glyphs with numbers", in: "TTIIRRZZEEPPAATTIIDDEE 5500 MMGG", want: "TIRZEPATIDE 50 MG"},
		{name: "real number kept", in: "FRASCO 1100 ML", want: "FRASCO 1100 ML"},
		{name: "quadrupled letter kept", in: "CAIXA LLLL", want: "CAIXA LLLL"},
		{name: "repeated phrase", in: "TIRZEPATIDE 50 MG/2ML TIRZEPATIDE 50 MG/2ML", want: "TIRZEPATIDE 50 MG/2ML"},
		{name: "repeated phrase twice", in: "SOL INJ FRASCO SOL INJ FRASCO SOL INJ FRASCO", want: "SOL INJ FRASCO"},
		{name: "short repeat kept", in: "UN 1 X UN 1 X", want: "UN 1 X UN 1 X"},
		{name: "whitespace", in: "  CANETA \t APLICADORA  ", want: "CANETA APLICADORA"},
		{
			name: "trailing codes",
			in:   "TIRZEPATIDE 50 MG/2ML - SOL INJ (FRASCO) L- 2092369271700 C086A-B250901 FAB 09/2025 VAL- 09/2027 ANVISA",
			want: "TIRZEPATIDE 50 MG/2ML - SOL INJ (FRASCO)",
		},
		{name: "trailing dash", in: "SEMAGLUTIDA 5 MG - FAB 01/2025", want: "SEMAGLUTIDA 5 MG"},
		{name: "long digit run", in: "CANETA 7891234567890123", want: "CANETA"},
		{name: "empty", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanDescription(tt.in))
		})
	}
}

func TestCleanDescriptionIdempotent(t *testing.T) {
	inputs := []string{
		"TTIIRRZZEEPPAATTIIDDEE",
		"TTIIRRZZEEPPAATTIIDDEE 5500 MMGG//22MMLL",
		"TIRZEPATIDE 50 MG/2ML TIRZEPATIDE 50 MG/2ML",
		"CAIXA LLLL 1100",
		"AABB CCDD EEFF",
		"TIRZEPATIDE 50 MG/2ML - SOL INJ (FRASCO) L- 2092369271700 ANVISA",
		"A B C A B C A B C",
	}
	for _, in := range inputs {
		once := CleanDescription(in)
		assert.Equal(t, once, CleanDescription(once), "input %q", in)
	}
}

func TestLooksCorrupted(t *testing.T) {
	assert.True(t, looksCorrupted("TTIIRRZZEEPPAATTIIDDEE"))
	assert.False(t, looksCorrupted("TIRZEPATIDE 100 MG"))
	assert.False(t, looksCorrupted("ANNA"))
	assert.False(t, looksCorrupted(""))
}
