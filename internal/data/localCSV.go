package data

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// localFileDataProvider implements Data Provider from local files, for
// offline/replay use when no live market-data credentials are configured.
type localFileDataProvider struct {
	dir       string
	secondary Provider

	once      sync.Once
	intervals map[string]float64
}

// NewLocalFileDataProvider convenience constructor.
func NewLocalFileDataProvider(dir string, secondary Provider) *localFileDataProvider {
	return &localFileDataProvider{dir: dir, secondary: secondary}
}

func (localFileDataProv *localFileDataProvider) Secondary() Provider {
	return localFileDataProv.secondary
}

func (localFileDataProv *localFileDataProvider) GetATMOptionPrices(underlying string, expiryDate, openDate time.Time, asOfPrice float64) (strike, callPrice, putPrice float64, err error) {
	if localFileDataProv.secondary != nil {
		return localFileDataProv.secondary.GetATMOptionPrices(underlying, expiryDate, openDate, asOfPrice)
	}
	strike = localFileDataProv.RoundToNearestStrike(underlying, expiryDate, openDate, asOfPrice)
	callPrice = 1.0 + math.Abs(rand.NormFloat64()*0.5)
	putPrice = 1.0 + math.Abs(rand.NormFloat64()*0.5)
	return strike, callPrice, putPrice, nil
}

func (localFileDataProv *localFileDataProvider) GetContracts(underlying string, strike float64, expiryDate, fromDate, toDate time.Time) ([]OptionContract, error) {
	if localFileDataProv.secondary != nil {
		return localFileDataProv.secondary.GetContracts(underlying, strike, expiryDate, fromDate, toDate)
	}
	return nil, fmt.Errorf("GetContracts not implemented for localFileDataProvider")
}

func (localFileDataProv *localFileDataProvider) GetBars(underlying string, fromDate, toDate time.Time, timespan int, multiplier string) ([]Bar, error) {
	if localFileDataProv.secondary != nil {
		return localFileDataProv.secondary.GetBars(underlying, fromDate, toDate, timespan, multiplier)
	}
	return nil, fmt.Errorf("GetBars not implemented for localFileDataProvider")
}

func (localFileDataProv *localFileDataProvider) GetOptionPrice(underlying string, strike float64, expiryDate time.Time, optType string, openDate time.Time) (float64, error) {
	if localFileDataProv.secondary != nil {
		return localFileDataProv.secondary.GetOptionPrice(underlying, strike, expiryDate, optType, openDate)
	}
	return 0, fmt.Errorf("GetOptionPrice not implemented for localFileDataProvider")
}

func (localFileDataProv *localFileDataProvider) GetRelevantExpiries(ticker string, fromDate, toDate time.Time) ([]time.Time, error) {
	if localFileDataProv.secondary != nil {
		return localFileDataProv.secondary.GetRelevantExpiries(ticker, fromDate, toDate)
	}
	return nil, fmt.Errorf("GetRelevantExpiries not implemented for localFileDataProvider")
}

// getIntervals reads <dir>/intervals.csv once and caches the underlying ->
// strike-interval mapping for the lifetime of the provider.
func (localFileDataProv *localFileDataProvider) getIntervals(underlying string) float64 {
	localFileDataProv.once.Do(func() {
		localFileDataProv.intervals = make(map[string]float64)

		f, err := os.Open(filepath.Join(localFileDataProv.dir, "intervals.csv"))
		if err != nil {
			log.Printf("open intervals file: %v", err)
			return
		}
		defer f.Close()

		r := csv.NewReader(f)
		records, err := r.ReadAll()
		if err != nil {
			log.Printf("read csv: %v", err)
			return
		}

		for _, row := range records {
			if len(row) < 2 {
				continue
			}
			u := strings.ToUpper(strings.TrimSpace(row[0]))
			interval, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
			if err != nil {
				continue
			}
			localFileDataProv.intervals[u] = interval
		}
	})

	if val, ok := localFileDataProv.intervals[strings.ToUpper(underlying)]; ok {
		return val
	}
	if localFileDataProv.secondary != nil {
		return localFileDataProv.secondary.getIntervals(underlying)
	}
	return 0
}

// RoundToNearestStrike rounds asOfPrice to the interval configured for
// underlying, falling back to the unrounded price when no interval is
// known.
func (localFileDataProv *localFileDataProvider) RoundToNearestStrike(underlying string, expiryDate, openDate time.Time, asOfPrice float64) float64 {
	interval := localFileDataProv.getIntervals(underlying)
	if interval == 0.0 {
		return asOfPrice
	}
	return math.Round(asOfPrice/interval) * interval
}
