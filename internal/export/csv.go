package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// CSV writes a header row followed by one row per item.
func CSV(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(d.Header()); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, item := range d.Items {
		row := make([]string, 0, len(item.values)+1)
		row = append(row, item.CustomID)
		for _, v := range item.values {
			row = append(row, cellText(v))
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write csv row %q: %w", item.CustomID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
