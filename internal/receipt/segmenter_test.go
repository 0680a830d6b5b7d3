package receipt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/recibos-extractor/internal/document"
	"github.com/joseph-ayodele/recibos-extractor/internal/extract"
)

func acquire(t *testing.T, pages ...string) extract.Acquired {
	t.Helper()
	acq, err := extract.Acquire(document.NewMemory(pages...), nil)
	require.NoError(t, err)
	return acq
}

func TestSegmentSingleLabelCoversDocument(t *testing.T) {
	acq := acquire(t, "DISTRIBUIDORA EXEMPLO LTDA\nNº 0000004510\nVendedor: ANA\nDADOS DO PRODUTO\n")
	seg := NewSegmenter(DefaultOptions(), nil).Segment(acq)

	require.Len(t, seg.Segments, 1)
	assert.Equal(t, DetectIDLabel, seg.Detector)
	assert.Equal(t, 0, seg.Segments[0].Start)
	assert.Equal(t, len(acq.Text), seg.Segments[0].End)
	assert.Equal(t, "0000004510", seg.Segments[0].ID)
	assert.False(t, seg.Segments[0].Synthetic)
}

func TestSegmentTitleDateTime(t *testing.T) {
	var b strings.Builder
	for _, id := range []string{"10", "11", "12"} {
		b.WriteString("RECIBO DE VENDA 01/02/2025 10:30\n")
		b.WriteString("Nº " + id + "\n")
		b.WriteString("Vendedor: ANA\nDADOS DO PRODUTO\nUN 1,00 2,00\nPAGAMENTO\n")
	}
	acq := acquire(t, b.String())
	seg := NewSegmenter(DefaultOptions(), nil).Segment(acq)

	require.Len(t, seg.Segments, 3)
	assert.Equal(t, DetectTitleDateTime, seg.Detector)
	assert.Equal(t, 0, seg.Segments[0].Start)
	for i, s := range seg.Segments {
		assert.Less(t, s.Start, s.End)
		if i+1 < len(seg.Segments) {
			assert.Equal(t, seg.Segments[i+1].Start, s.End, "segments must be contiguous")
		}
	}
	assert.Equal(t, len(acq.Text), seg.Segments[2].End)
	assert.Equal(t, []string{"10", "11", "12"},
		[]string{seg.Segments[0].ID, seg.Segments[1].ID, seg.Segments[2].ID})
}

func TestSegmentIDLabelVariantsMerged(t *testing.T) {
	text := "RECIBO Nº 100\nitem\nNº: 200\nitem\nNúmero: 300\nitem\n"
	seg := NewSegmenter(DefaultOptions(), nil).Segment(acquire(t, text))

	require.Len(t, seg.Segments, 3)
	assert.Equal(t, "100", seg.Segments[0].ID)
	assert.Equal(t, "200", seg.Segments[1].ID)
	assert.Equal(t, "300", seg.Segments[2].ID)
}

func TestSegmentPageMarker(t *testing.T) {
	text := "LOJA A\nPágina 1 de 2\nitem\nPágina 2 de 2\nLOJA B\nPágina 1 de 1\nitem\n"
	seg := NewSegmenter(DefaultOptions(), nil).Segment(acquire(t, text))

	require.Len(t, seg.Segments, 2)
	assert.Equal(t, DetectPageMarker, seg.Detector)
	assert.Equal(t, "RECIBO_1", seg.Segments[0].ID)
	assert.Equal(t, "RECIBO_2", seg.Segments[1].ID)
	assert.True(t, seg.Segments[1].Synthetic)
	assert.True(t, strings.HasPrefix(seg.Segments[1].Text, "Página 1 de 1"))
	assert.Contains(t, seg.Segments[0].Text, "LOJA B")
}

func TestSegmentSinglePageMarkerIgnored(t *testing.T) {
	seg := NewSegmenter(DefaultOptions(), nil).Segment(acquire(t, "Página 1 de 1\nitem\n"))

	require.Len(t, seg.Segments, 1)
	assert.Equal(t, DetectWholeDocument, seg.Detector)
}

func TestSegmentPhysicalPages(t *testing.T) {
	acq := acquire(t, "primeira pagina", "", "terceira pagina")
	seg := NewSegmenter(DefaultOptions(), nil).Segment(acq)

	require.Len(t, seg.Segments, 2)
	assert.Equal(t, DetectPhysicalPages, seg.Detector)
	assert.Equal(t, "PAGINA_1", seg.Segments[0].ID)
	assert.Equal(t, "PAGINA_3", seg.Segments[1].ID)
	assert.Contains(t, seg.Segments[1].Text, "terceira")
}

func TestSegmentWholeDocumentAndEmpty(t *testing.T) {
	s := NewSegmenter(DefaultOptions(), nil)

	seg := s.Segment(acquire(t, "texto sem marcadores"))
	require.Len(t, seg.Segments, 1)
	assert.Equal(t, DetectWholeDocument, seg.Detector)
	assert.Empty(t, seg.Segments[0].ID)

	seg = s.Segment(acquire(t, "  \n"))
	assert.Empty(t, seg.Segments)
	assert.Equal(t, DetectNone, seg.Detector)
}

func TestSegmentTrimsNextReceiptReference(t *testing.T) {
	text := "RECIBO 01/01/2025 10:00\nNº 1\nDADOS DO PRODUTO\nUN 1,00 2,00\nPAGAMENTO\nNº 2\n" +
		"RECIBO 01/01/2025 11:00\nNº 2\nDADOS DO PRODUTO\nUN 3,00 4,00\nPAGAMENTO\n"
	seg := NewSegmenter(DefaultOptions(), nil).Segment(acquire(t, text))

	require.Len(t, seg.Segments, 2)
	first := seg.Segments[0]
	assert.Equal(t, "1", first.ID)
	assert.Less(t, first.End, seg.Segments[1].Start)
	assert.NotContains(t, first.Text, "Nº 2")
	assert.Contains(t, first.Text, "PAGAMENTO")
}

func TestFindIDLabelsDropsNestedMatches(t *testing.T) {
	bs := findIDLabels("RECIBO Nº 55\n", DefaultOptions())
	require.Len(t, bs, 1)
	assert.Equal(t, "55", bs[0].id)
}
