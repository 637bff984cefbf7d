package partition

import (
	"time"

	"github.com/quentin/tickvault/internal/domain"
)

// sampleBars builds n minute bars starting at market open of the given day.
func sampleBars(symbol string, day time.Time, n int) []domain.Bar {
	open := time.Date(day.Year(), day.Month(), day.Day(), 13, 30, 0, 0, time.UTC)
	bars := make([]domain.Bar, 0, n)
	for i := 0; i < n; i++ {
		ts := open.Add(time.Duration(i) * time.Minute)
		price := 100.0 + float64(i)
		bars = append(bars, domain.Bar{
			Timestamp: ts.Unix(),
			Symbol:    symbol,
			Open:      price,
			High:      price + 0.5,
			Low:       price - 0.5,
			Close:     price + 0.25,
			Volume:    1000 + int64(i),
		})
	}
	return bars
}
