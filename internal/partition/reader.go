package partition

import (
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/quentin/tickvault/internal/domain"
)

// CountRows returns the number of bars in one partition file from its
// parquet footer, without decoding row data.
// Parameters:
//   - path: partition file path.
// Returns:
//   - int64: row count.
//   - error: non-nil if the file cannot be opened or parsed.
func CountRows(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return 0, err
	}

	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return 0, err
	}
	return pf.NumRows(), nil
}

// ReadDay decodes all bars from one partition file.
// Parameters:
//   - root: partition store root.
//   - symbol: uppercase symbol.
//   - day: trading day.
// Returns:
//   - []domain.Bar: decoded bars.
//   - error: non-nil if the file cannot be read.
func ReadDay(root, symbol string, day time.Time) ([]domain.Bar, error) {
	return parquet.ReadFile[domain.Bar](DayPath(root, symbol, day))
}

// ListDays walks a symbol's partition tree and returns every trading day
// that has a partition file, unsorted. Directory or file names that do not
// parse as hive partition components are skipped silently.
// Parameters:
//   - root: partition store root.
//   - symbol: uppercase symbol.
// Returns:
//   - []time.Time: existing partition days (UTC midnight).
//   - error: non-nil only for I/O failures below an existing directory;
//     a missing symbol directory yields an empty slice.
func ListDays(root, symbol string) ([]time.Time, error) {
	var days []time.Time
	years, err := os.ReadDir(SymbolDir(root, symbol))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	for _, ye := range years {
		if !ye.IsDir() {
			continue
		}
		year, ok := ParseYear(ye.Name())
		if !ok {
			continue
		}
		months, err := os.ReadDir(YearDir(root, symbol, year))
		if err != nil {
			return nil, err
		}
		for _, me := range months {
			if !me.IsDir() {
				continue
			}
			month, ok := ParseMonth(me.Name())
			if !ok {
				continue
			}
			files, err := os.ReadDir(MonthDir(root, symbol, year, month))
			if err != nil {
				return nil, err
			}
			for _, fe := range files {
				day, ok := ParseDay(fe.Name())
				if !ok {
					continue
				}
				days = append(days, time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
			}
		}
	}
	return days, nil
}
