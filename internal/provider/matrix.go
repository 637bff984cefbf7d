package provider

import (
	"sort"
	"time"
)

// Feature is the immutable static capability record for one vendor.
type Feature struct {
	SupportsRecent     bool
	SupportsHistorical bool
	SupportsRealtime   bool
	FreeTier           bool
	// MaxHistoricalDays is how far back the vendor can serve; 0 means
	// unlimited.
	MaxHistoricalDays int
	TypicalLagHours   float64
}

// FeatureMatrix ranks substitute vendors when a fetch comes back with the
// wrong window. The table is static; it is consulted only for
// suggestions, never for routing live fetches.
type FeatureMatrix struct {
	features map[string]Feature
	now      func() time.Time
}

// NewFeatureMatrix creates a matrix over an explicit capability table.
func NewFeatureMatrix(features map[string]Feature) *FeatureMatrix {
	return &FeatureMatrix{features: features, now: time.Now}
}

// DefaultMatrix returns the built-in vendor capability table.
func DefaultMatrix() *FeatureMatrix {
	return NewFeatureMatrix(map[string]Feature{
		"yfinance": {
			SupportsRecent:     true,
			SupportsHistorical: true,
			FreeTier:           true,
			TypicalLagHours:    24,
		},
		"alpaca": {
			SupportsRecent:     true,
			SupportsHistorical: true,
			SupportsRealtime:   true,
			FreeTier:           true,
			MaxHistoricalDays:  365 * 7,
			TypicalLagHours:    0.25,
		},
		"polygon": {
			SupportsRecent:     true,
			SupportsHistorical: true,
			SupportsRealtime:   true,
			MaxHistoricalDays:  365 * 10,
			TypicalLagHours:    0.1,
		},
		"tiingo": {
			SupportsRecent:     true,
			SupportsHistorical: true,
			FreeTier:           true,
			TypicalLagHours:    1,
		},
		"alphavantage": {
			SupportsRecent:     false,
			SupportsHistorical: true,
			FreeTier:           true,
			TypicalLagHours:    24,
		},
		"finnhub": {
			SupportsRecent:     true,
			SupportsHistorical: false,
			FreeTier:           true,
			MaxHistoricalDays:  365,
			TypicalLagHours:    0.5,
		},
	})
}

// Has reports whether the matrix knows the vendor.
func (m *FeatureMatrix) Has(vendor string) bool {
	_, ok := m.features[vendor]
	return ok
}

type scored struct {
	name  string
	score float64
}

// SuggestAlternatives ranks substitute vendors for a failed fetch,
// highest score first. The failed vendor is always excluded. Scoring:
// recent requests (ending within 30 days) require recent-data support
// and reward it (+10) plus low lag (up to +10, scaled inversely);
// historical requests (starting over a year back) reward historical
// support (+5) and disqualify vendors whose historical depth cannot
// reach the requested start; free tiers get +3. Order among equal scores
// follows table iteration and is not part of the contract.
// Parameters:
//   - failedVendor: vendor whose data failed verification.
//   - requestedStart: first requested day.
//   - requestedEnd: last requested day.
//   - exclude: additional vendors to skip; may be nil.
// Returns:
//   - []string: vendor names, best first; empty if none qualify.
func (m *FeatureMatrix) SuggestAlternatives(failedVendor string, requestedStart, requestedEnd time.Time, exclude map[string]bool) []string {
	now := m.now()
	endAgeDays := int(now.Sub(requestedEnd).Hours() / 24)
	startAgeDays := int(now.Sub(requestedStart).Hours() / 24)
	isRecent := endAgeDays <= 30
	isHistorical := startAgeDays > 365

	var candidates []scored
	for name, feat := range m.features {
		if name == failedVendor || exclude[name] {
			continue
		}

		if isRecent && !feat.SupportsRecent {
			continue
		}
		if feat.MaxHistoricalDays > 0 && startAgeDays > feat.MaxHistoricalDays {
			continue
		}

		score := 0.0
		if isRecent && feat.SupportsRecent {
			score += 10
			// Fresher feeds score higher for recent windows
			if feat.TypicalLagHours < 24 {
				score += 10 * (1 - feat.TypicalLagHours/24)
			}
		}
		if isHistorical && feat.SupportsHistorical {
			score += 5
		}
		if feat.FreeTier {
			score += 3
		}

		candidates = append(candidates, scored{name: name, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	names := make([]string, 0, len(candidates))
	for _, c := range candidates {
		names = append(names, c.name)
	}
	return names
}
