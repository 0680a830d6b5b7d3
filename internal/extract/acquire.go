package extract

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/recibos-extractor/internal/common"
	"github.com/joseph-ayodele/recibos-extractor/internal/document"
)

// Acquire joins every page's text into one stream, each page followed by a newline,
// and reports progress after each page. Page errors are ExtractionFailures.
func Acquire(doc document.Document, progress Progress) (Acquired, error) {
	total := doc.PageCount()
	var b strings.Builder
	acq := Acquired{PageCount: total, PageStarts: make([]int, 0, total)}
	for i := 0; i < total; i++ {
		acq.PageStarts = append(acq.PageStarts, b.Len())
		text, err := doc.PageText(i)
		if err != nil {
			if common.IsExtractionFailure(err) || common.IsNotFound(err) {
				return Acquired{}, err
			}
			return Acquired{}, common.ExtractionFailure(fmt.Sprintf("page %d", i+1), err)
		}
		if text != "" {
			b.WriteString(text)
			b.WriteByte('\n')
		}
		progress.Report(i+1, total, "")
	}
	acq.Text = b.String()
	return acq, nil
}
