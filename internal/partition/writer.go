package partition

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/quentin/tickvault/internal/domain"
)

// WriteDay writes one day of bars as a partition file, creating the hive
// directory structure as needed. An existing partition for the day is
// replaced atomically (write to temp file, then rename).
// Parameters:
//   - root: partition store root.
//   - symbol: uppercase symbol.
//   - day: trading day the bars belong to.
//   - bars: bars to write.
// Returns:
//   - error: non-nil if the partition cannot be written.
func WriteDay(root, symbol string, day time.Time, bars []domain.Bar) error {
	path := DayPath(root, symbol, day)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create partition directory: %w", err)
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create partition file: %w", err)
	}

	w := parquet.NewGenericWriter[domain.Bar](f)
	if _, err := w.Write(bars); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to write bars: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize partition: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to publish partition: %w", err)
	}
	return nil
}
