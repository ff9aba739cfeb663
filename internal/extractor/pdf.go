package extractor

import (
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// PDF extracts the plain text of each page as its own record.
type PDF struct{}

// Extract implements Extractor. Pages are numbered from 1.
func (PDF) Extract(ctx context.Context, path string) (records []Record, err error) {
	// The pdf reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			records = nil
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	total := r.NumPage()
	records = make([]Record, 0, total)

	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		// Font resources are per page, so the font map is rebuilt each time.
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d: %w", i, err)
		}

		meta := sourceMeta(path)
		meta[MetaPage] = i
		meta[MetaTotalPages] = total
		records = append(records, Record{Text: text, Metadata: meta})
	}

	return records, nil
}
