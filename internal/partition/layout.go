package partition

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Partitions live in a hive-style tree:
//
//	<root>/symbol=<SYM>/year=<YYYY>/month=<MM>/day=<DD>.parquet
//
// One file holds one trading day of bars for one symbol.

const fileExt = ".parquet"

// SymbolDir returns the directory holding all partitions for a symbol.
func SymbolDir(root, symbol string) string {
	return filepath.Join(root, "symbol="+strings.ToUpper(symbol))
}

// YearDir returns the directory for one year of a symbol's partitions.
func YearDir(root, symbol string, year int) string {
	return filepath.Join(SymbolDir(root, symbol), fmt.Sprintf("year=%04d", year))
}

// MonthDir returns the directory for one month of a symbol's partitions.
func MonthDir(root, symbol string, year int, month time.Month) string {
	return filepath.Join(YearDir(root, symbol, year), fmt.Sprintf("month=%02d", int(month)))
}

// DayPath returns the partition file path for one trading day.
func DayPath(root, symbol string, day time.Time) string {
	return filepath.Join(
		MonthDir(root, symbol, day.Year(), day.Month()),
		fmt.Sprintf("day=%02d%s", day.Day(), fileExt),
	)
}

// ParseYear extracts the year from a "year=YYYY" directory name.
// Malformed names return ok=false; callers skip them silently.
func ParseYear(name string) (int, bool) {
	return parseKeyedInt(name, "year=")
}

// ParseMonth extracts the month from a "month=MM" directory name.
func ParseMonth(name string) (time.Month, bool) {
	n, ok := parseKeyedInt(name, "month=")
	if !ok || n < 1 || n > 12 {
		return 0, false
	}
	return time.Month(n), true
}

// ParseDay extracts the day of month from a "day=DD.parquet" file name.
func ParseDay(name string) (int, bool) {
	if !strings.HasSuffix(name, fileExt) {
		return 0, false
	}
	n, ok := parseKeyedInt(strings.TrimSuffix(name, fileExt), "day=")
	if !ok || n < 1 || n > 31 {
		return 0, false
	}
	return n, true
}

func parseKeyedInt(name, prefix string) (int, bool) {
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(name, prefix))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
