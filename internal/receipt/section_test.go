package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sectionLines builds n filler lines with the opener at 0 and the given markers.
func sectionLines(n int, markers map[int]string) []string {
	lines := make([]string, n)
	lines[0] = "DADOS DO PRODUTO"
	for i := 1; i < n; i++ {
		lines[i] = "linha de item"
	}
	for i, m := range markers {
		lines[i] = m
	}
	return lines
}

// The thresholds exercised here (30 lines, total/20, 200-line forward search,
// 0.8 ratio) are heuristic and subject to recalibration on real receipts.
func TestLocateHeuristicThresholds(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		markers map[int]string
		end     int
		rule    string
		suspect bool
	}{
		{
			name:    "subtotal close to the opener is skipped for a later payment",
			n:       50,
			markers: map[int]string{5: "TOTAL DE MERCADORIAS 1,00 2,00 3,00", 45: "PAGAMENTO"},
			end:     45,
			rule:    "reliable",
		},
		{
			name:    "nearest terminator far enough",
			n:       50,
			markers: map[int]string{35: "TOTAL DE MERCADORIAS", 40: "PAGAMENTO"},
			end:     35,
			rule:    "nearest",
		},
		{
			name:    "later payment found by the forward search",
			n:       40,
			markers: map[int]string{5: "TOTAL DE MERCADORIAS", 12: "VENCIMENTO 10/10/2025"},
			end:     12,
			rule:    "forward_search",
		},
		{
			name:    "furthest terminator within the fallback ratio",
			n:       40,
			markers: map[int]string{5: "TOTAL DE MERCADORIAS", 28: "TOTAL DE MERCADORIAS"},
			end:     28,
			rule:    "furthest",
		},
		{
			name:    "last terminator accepted as suspect",
			n:       20,
			markers: map[int]string{5: "TOTAL DE MERCADORIAS"},
			end:     5,
			rule:    "last_suspect",
			suspect: true,
		},
		{
			name: "no terminator runs to the end of the segment",
			n:    20,
			end:  20,
			rule: "end_of_segment",
		},
	}
	loc := NewLocator(DefaultOptions(), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := sectionLines(tt.n, tt.markers)
			sec := loc.Locate(lines, tt.n)
			require.True(t, sec.Found)
			assert.Equal(t, 0, sec.Open)
			assert.Equal(t, tt.end, sec.End)
			assert.Equal(t, tt.rule, sec.Rule)
			assert.Equal(t, tt.suspect, sec.Suspect)
		})
	}
}

func TestLocateDoesNotStopAtEarlySubtotal(t *testing.T) {
	lines := sectionLines(60, map[int]string{5: "TOTAL DE MERCADORIAS", 40: "TOTAIS"})
	sec := NewLocator(DefaultOptions(), nil).Locate(lines, 60)

	require.True(t, sec.Found)
	assert.NotEqual(t, 5, sec.End)
	assert.Equal(t, 40, sec.End)
}

func TestLocateWithoutOpener(t *testing.T) {
	sec := NewLocator(DefaultOptions(), nil).Locate([]string{"UN 1,00 2,00", "PAGAMENTO"}, 2)
	assert.False(t, sec.Found)
	assert.Nil(t, sec.Lines([]string{"UN 1,00 2,00", "PAGAMENTO"}))
}

func TestMinSectionLength(t *testing.T) {
	loc := NewLocator(DefaultOptions(), nil)
	assert.Equal(t, 30, loc.MinSectionLength(100))
	assert.Equal(t, 50, loc.MinSectionLength(1000))

	custom := NewLocator(Options{MinSectionLines: 3}, nil)
	assert.Equal(t, 3, custom.MinSectionLength(40))
}

func TestSectionLines(t *testing.T) {
	lines := []string{"cabecalho", "DADOS DOS PRODUTOS", "A", "B", "PAGAMENTO"}
	sec := NewLocator(DefaultOptions(), nil).Locate(lines, len(lines))
	assert.Equal(t, []string{"A", "B"}, sec.Lines(lines))
}
