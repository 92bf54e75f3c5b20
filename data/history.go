// Package data estimates lattice inputs from a history of closing prices.
package data

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

var ErrInsufficientHistory = errors.New("data: need at least three positive closes")

// Stats are annualised log-return statistics of a close series.
type Stats struct {
	Drift float64
	Vol   float64
	// Fixing is the last close.
	Fixing  float64
	Returns int
}

// Estimate annualises the mean and standard deviation of the daily log
// returns of closes for a year of scale periods.
func Estimate(closes []float64, scale int) (Stats, error) {
	if len(closes) < 3 {
		return Stats{}, fmt.Errorf("%w: got %d", ErrInsufficientHistory, len(closes))
	}
	if scale <= 0 {
		return Stats{}, fmt.Errorf("data: scale must be positive, got %d", scale)
	}
	ret := make([]float64, len(closes)-1)
	for i := range ret {
		if !(closes[i] > 0) || !(closes[i+1] > 0) {
			return Stats{}, fmt.Errorf("%w: close %d is not positive", ErrInsufficientHistory, i+1)
		}
		ret[i] = math.Log(closes[i+1] / closes[i])
	}
	mean, sd := stat.MeanStdDev(ret, nil)
	s := float64(scale)
	return Stats{
		Drift:   mean * s,
		Vol:     sd * math.Sqrt(s),
		Fixing:  closes[len(closes)-1],
		Returns: len(ret),
	}, nil
}

// ReadCloses reads closing prices from CSV. The close is taken from the
// column named "close" (case-insensitive) when a header is present, and
// from the last column otherwise.
func ReadCloses(r io.Reader) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read closes: %w", err)
	}

	col := -1
	var closes []float64
	for i, rec := range records {
		if len(rec) == 0 || (len(rec) == 1 && rec[0] == "") {
			continue
		}
		if i == 0 {
			for j, name := range rec {
				if strings.EqualFold(name, "close") {
					col = j
				}
			}
			if col >= 0 {
				continue
			}
		}
		field := rec[len(rec)-1]
		if col >= 0 {
			if col >= len(rec) {
				return nil, fmt.Errorf("line %d: missing close column", i+1)
			}
			field = rec[col]
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		closes = append(closes, v)
	}
	return closes, nil
}
