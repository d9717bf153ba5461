package recorder

import (
	"encoding/csv"
	"fmt"
	"os"
)

// WriteCSV writes the recorded equity curve to path as
// `timestamp_us,equity`, one row per snapshot in recorded order.
func (r *Recorder) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp_us", "equity"}); err != nil {
		return err
	}
	for _, snapshot := range r.records {
		row := []string{
			fmt.Sprintf("%d", snapshot.Timestamp),
			fmt.Sprintf("%f", snapshot.Equity),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
