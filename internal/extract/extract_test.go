package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/recibos-extractor/internal/common"
	"github.com/joseph-ayodele/recibos-extractor/internal/document"
)

func TestAcquire(t *testing.T) {
	var reported [][2]int
	progress := Progress(func(current, total int, _ string) {
		reported = append(reported, [2]int{current, total})
	})
	acq, err := Acquire(document.NewMemory("um", "", "três"), progress)

	require.NoError(t, err)
	assert.Equal(t, "um\ntrês\n", acq.Text)
	assert.Equal(t, 3, acq.PageCount)
	assert.Equal(t, []int{0, 3, 3}, acq.PageStarts)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, reported)

	s, e := acq.PageSpan(2)
	assert.Equal(t, "três\n", acq.Text[s:e])
	assert.Equal(t, []int{0, 2}, acq.PagesOverlapping(0, len(acq.Text)))
	assert.Equal(t, []int{2}, acq.PagesOverlapping(3, 4))
}

func TestAcquireEmpty(t *testing.T) {
	acq, err := Acquire(document.NewMemory(), nil)
	require.NoError(t, err)
	assert.Empty(t, acq.Text)
	assert.Zero(t, acq.PageCount)
}

type failingDoc struct {
	*document.Memory
	err error
}

func (f failingDoc) PageText(i int) (string, error) {
	if i == 1 {
		return "", f.err
	}
	return f.Memory.PageText(i)
}

func TestAcquirePageError(t *testing.T) {
	doc := failingDoc{Memory: document.NewMemory("a", "b"), err: errors.New("bad stream")}
	_, err := Acquire(doc, nil)
	require.Error(t, err)
	assert.True(t, common.IsExtractionFailure(err))
	assert.Contains(t, err.Error(), "page 2")

	wrapped := common.ExtractionFailure("decode page 2", errors.New("panic"))
	doc = failingDoc{Memory: document.NewMemory("a", "b"), err: wrapped}
	_, err = Acquire(doc, nil)
	assert.Same(t, wrapped, err)
}

func TestProgressNil(t *testing.T) {
	var p Progress
	assert.NotPanics(t, func() { p.Report(1, 1, "x") })
}
