// Package data provides market data provider implementations.
//
// This file contains a Massive-backed Provider implementation that retrieves
// option contracts, bars, expiries, and option prices via Massive HTTP APIs.
//
// Design notes:
//   - Uses go-resty/resty for HTTP (retries, timeouts, JSON decoding) instead
//     of hand-rolled net/http plumbing.
//   - Supports pagination, rate-limiting retries, and fallback providers.
//   - Logging is intentionally verbose at Debug/Trace levels for diagnostics.
package data

import (
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/optionkit/impliedvol/internal/logger"
)

// massiveDataProvider implements the Provider interface using Massive APIs.
type massiveDataProvider struct {
	// APIKey used for authenticating requests with Massive.
	APIKey string

	// Client is the resty client used to make API requests, configured
	// with retries on rate-limit responses.
	Client *resty.Client

	// BaseURL is the root endpoint for Massive APIs
	// (e.g., https://api.massive.com).
	BaseURL string

	// secondary is an optional fallback provider.
	secondary Provider
}

// massiveContract represents a single option contract
// returned by Massive's contracts reference endpoint.
type massiveContract struct {
	CFI               string  `json:"cfi"`
	ContractType      string  `json:"contract_type"`
	ExerciseStyle     string  `json:"exercise_style"`
	ExpiryDate        string  `json:"expiration_date"`
	PrimaryExchange   string  `json:"primary_exchange"`
	SharesPerContract int     `json:"shares_per_contract"`
	StrikePrice       float64 `json:"strike_price"`
	Ticker            string  `json:"ticker"`
	UnderlyingTicker  string  `json:"underlying_ticker"`
}

// massiveContractsResp models the paginated response
// returned by Massive's option contracts API.
type massiveContractsResp struct {
	Results   []massiveContract `json:"results"`
	Status    string            `json:"status"`
	RequestID string            `json:"request_id"`
	NextURL   string            `json:"next_url"`
}

// massiveBarsResp models the aggregates (bars) response shared by Massive's
// equity and option bar endpoints.
type massiveBarsResp struct {
	Ticker   string `json:"ticker"`
	Adjusted bool   `json:"adjusted"`
	Results  []struct {
		Open      float64 `json:"o"`
		Close     float64 `json:"c"`
		High      float64 `json:"h"`
		Low       float64 `json:"l"`
		VWAP      float64 `json:"vw"`
		Volume    float64 `json:"v"`
		Trades    int64   `json:"n"`
		Timestamp int64   `json:"t"`
	} `json:"results"`
	Status string `json:"status"`
}

// NewMassiveDataProvider constructs a Massive-backed data provider.
//
// It initializes a resty client with sensible defaults for timeouts and
// automatic retries on HTTP 429 (rate limit), so call sites never need to
// handle rate-limit backoff themselves.
//
// Parameters:
//   - apiKey: Massive API key for authentication
//
// Returns:
//   - *massiveDataProvider: initialized provider instance
func NewMassiveDataProvider(apiKey string) *massiveDataProvider {
	logger.Infof("initializing Massive data provider")

	client := resty.New().
		SetTimeout(60 * time.Second).
		SetRetryCount(5).
		SetRetryWaitTime(2 * time.Second).
		SetRetryMaxWaitTime(60 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == http.StatusTooManyRequests
		})

	return &massiveDataProvider{
		APIKey:  apiKey,
		Client:  client,
		BaseURL: "https://api.massive.com",
	}
}

// Secondary returns the configured secondary Provider, if any.
func (massiveDataProv *massiveDataProvider) Secondary() Provider {
	return massiveDataProv.secondary
}

// GetATMOptionPrices returns the ATM strike along with call and put prices.
//
// NOTE:
//   - This implementation currently generates synthetic prices.
//   - If a secondary provider is configured, the request is delegated.
func (massiveDataProv *massiveDataProvider) GetATMOptionPrices(
	underlying string,
	expiryDate, openDate time.Time,
	asOfPrice float64,
) (strike, callPrice, putPrice float64, err error) {

	logger.Debugf(
		"ATM prices request: %s price=%.2f expiry=%s",
		underlying,
		asOfPrice,
		expiryDate.Format("2006-01-02"),
	)

	if massiveDataProv.secondary != nil {
		logger.Tracef("delegating ATM pricing to secondary provider")
		return massiveDataProv.secondary.GetATMOptionPrices(
			underlying, expiryDate, openDate, asOfPrice,
		)
	}

	//TODO: implement real ATM option price fetching from Massive API
	strike = math.Round(asOfPrice*100) / 100
	callPrice = 1.0 + math.Abs(rand.NormFloat64()*0.5)
	putPrice = 1.0 + math.Abs(rand.NormFloat64()*0.5)

	logger.Tracef("ATM resolved strike=%.2f call=%.2f put=%.2f", strike, callPrice, putPrice)
	return strike, callPrice, putPrice, nil
}

// GetContracts retrieves option contracts matching the supplied filters.
func (massiveDataProv *massiveDataProvider) GetContracts(
	underlying string,
	strike float64,
	expiryDate, fromDate, toDate time.Time,
) ([]OptionContract, error) {

	logger.Tracef(
		"fetching option contracts: %s strike=%.2f expiry=%s",
		underlying, strike, expiryDate.Format("2006-01-02"),
	)

	out := []OptionContract{}
	req := massiveDataProv.Client.R().
		SetQueryParam("underlying_ticker", underlying).
		SetQueryParam("expired", "true").
		SetQueryParam("limit", "1000").
		SetQueryParam("apiKey", massiveDataProv.APIKey).
		SetHeader("Authorization", "Bearer "+massiveDataProv.APIKey).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "massive-client/1.0")

	if strike > 0.0 {
		req.SetQueryParam("strike_price", fmt.Sprintf("%.8g", strike))
	}
	if expiryDate.IsZero() {
		req.SetQueryParam("expiration_date.lte", toDate.Format("2006-01-02"))
		req.SetQueryParam("expiration_date.gte", fromDate.Format("2006-01-02"))
	} else {
		req.SetQueryParam("expiration_date", expiryDate.Format("2006-01-02"))
	}

	nextURL := massiveDataProv.BaseURL + "/v3/reference/options/contracts"
	for nextURL != "" {
		logger.Debugf("contracts request URL: %s", nextURL)

		var massiveResp massiveContractsResp
		resp, err := req.SetResult(&massiveResp).Get(nextURL)
		if err != nil {
			return nil, fmt.Errorf("massive contracts request: %w", err)
		}
		if resp.IsError() {
			logger.Errorf("massive contracts API error status=%d", resp.StatusCode())
			return nil, fmt.Errorf("massive returned status %d", resp.StatusCode())
		}

		logger.Tracef("received %d contracts", len(massiveResp.Results))
		for _, result := range massiveResp.Results {
			t, err := time.Parse("2006-01-02", result.ExpiryDate)
			if err != nil {
				continue // skip malformed expiry dates
			}
			out = append(out, OptionContract{
				ExpiryDate: t,
				Strike:     result.StrikePrice,
				Type:       result.ContractType,
			})
		}

		nextURL = massiveResp.NextURL
		req = massiveDataProv.Client.R().
			SetHeader("Authorization", "Bearer "+massiveDataProv.APIKey).
			SetHeader("Accept", "application/json")
	}

	return out, nil
}

// GetBars retrieves OHLCV bars for the given symbol and time range.
func (massiveDataProv *massiveDataProvider) GetBars(
	underlying string,
	fromDate, toDate time.Time,
	timespan int,
	multiplier string,
) ([]Bar, error) {

	logger.Debugf(
		"fetching bars: %s from=%s to=%s span=%d%s",
		underlying, fromDate.Format("2006-01-02"), toDate.Format("2006-01-02"), timespan, multiplier,
	)

	url := fmt.Sprintf("%s/v2/aggs/ticker/%s/range/%d/%s/%s/%s",
		massiveDataProv.BaseURL, underlying, timespan, multiplier,
		fromDate.Format("2006-01-02"), toDate.Format("2006-01-02"))

	var body massiveBarsResp
	resp, err := massiveDataProv.Client.R().
		SetQueryParam("adjusted", "true").
		SetQueryParam("sort", "asc").
		SetQueryParam("limit", "50000").
		SetQueryParam("apiKey", massiveDataProv.APIKey).
		SetResult(&body).
		Get(url)
	if err != nil {
		logger.Errorf("bars request failed: %v", err)
		return nil, fmt.Errorf("massive api request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("massive daily bars status=%d body=%s", resp.StatusCode(), resp.String())
	}

	logger.Tracef("bars received: %d records", len(body.Results))
	out := make([]Bar, 0, len(body.Results))
	for _, r := range body.Results {
		out = append(out, Bar{
			Date:  time.UnixMilli(r.Timestamp).UTC(),
			Open:  r.Open,
			High:  r.High,
			Low:   r.Low,
			Close: r.Close,
			Vol:   r.Volume,
		})
	}
	return out, nil
}

// GetRelevantExpiries returns a sorted slice of unique option expiration
// dates for a given ticker within the specified time range, by sampling
// strikes around the middle of the observed spot range and asking for the
// contracts available at each.
func (massiveDataProv *massiveDataProvider) GetRelevantExpiries(
	ticker string,
	fromDate, toDate time.Time,
) ([]time.Time, error) {

	logger.Infof("resolving relevant expiries for %s [%s -> %s]",
		ticker, fromDate.Format("2006-01-02"), toDate.Format("2006-01-02"))

	bars, err := massiveDataProv.GetBars(ticker, fromDate, toDate, 1, "day")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spot data: %w", err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no spot data found")
	}

	low := bars[0].Low
	high := bars[0].High
	for _, b := range bars {
		if b.Low < low {
			low = b.Low
		}
		if b.High > high {
			high = b.High
		}
	}
	logger.Debugf("spot range low=%.2f high=%.2f", low, high)

	multiplier := 1.0
	switch {
	case low >= 100 && low < 1000:
		multiplier = 10
	case low >= 1000 && low < 10000:
		multiplier = 100
	case low >= 10000:
		multiplier = 1000
	}

	step := (high - low) / 5
	levels := []float64{low + step, low + 3*step}

	roundedStrikes := make([]float64, len(levels))
	for i, v := range levels {
		roundedStrikes[i] = math.Round(v/multiplier) * multiplier
	}

	expiryMap := map[string]time.Time{}
	for _, strike := range roundedStrikes {
		logger.Tracef("fetching contracts for strike %.2f", strike)
		contracts, err := massiveDataProv.GetContracts(ticker, strike, time.Time{}, fromDate, toDate)
		if err != nil {
			return nil, fmt.Errorf("fetch contracts strike %.2f: %w", strike, err)
		}
		for _, c := range contracts {
			key := c.ExpiryDate.Format("2006-01-02")
			expiryMap[key] = c.ExpiryDate
		}
	}

	expiries := make([]time.Time, 0, len(expiryMap))
	for _, dt := range expiryMap {
		expiries = append(expiries, dt)
	}
	sort.Slice(expiries, func(i, j int) bool { return expiries[i].Before(expiries[j]) })

	logger.Infof("resolved %d unique expiries", len(expiries))
	return expiries, nil
}

// GetOptionPrice retrieves the price of an option at a specific trade date
// and time, first looking backward for a closing bar and falling back to a
// forward window's opening bar.
func (massiveDataProv *massiveDataProvider) GetOptionPrice(
	underlying string,
	strike float64,
	expiryDate time.Time,
	optType string,
	tradeDateTime time.Time,
) (float64, error) {

	logger.Debugf("option price lookup: %s strike=%.2f expiry=%s at %s",
		underlying, strike, expiryDate.Format("2006-01-02"), tradeDateTime.Format(time.RFC3339))

	symbol := OptionSymbolFromParts(underlying, expiryDate, optType, strike)

	bars, err := massiveDataProv.GetBars(symbol, tradeDateTime.Add(-5*time.Minute), tradeDateTime, 1, "minute")
	if err != nil {
		return 0, fmt.Errorf("fetch option bars: %w", err)
	}
	if len(bars) != 0 {
		return bars[len(bars)-1].Close, nil
	}

	logger.Tracef("no bars before trade time, trying forward window")
	bars, err = massiveDataProv.GetBars(symbol, tradeDateTime, tradeDateTime.Add(5*time.Minute), 1, "minute")
	if err != nil {
		logger.Errorf("no option bars found for %s", symbol)
		return 0, fmt.Errorf("fetch option bars: %w", err)
	}
	if len(bars) == 0 {
		return 0, fmt.Errorf("no option bars found for %s on %s", symbol, tradeDateTime.Format("2006-01-02 15:04"))
	}
	return bars[0].Open, nil
}

// RoundToNearestStrike finds the nearest available option strike price to
// the given price, falling back to the unmodified price when no contracts
// can be found for the requested expiry.
func (massiveDataProv *massiveDataProvider) RoundToNearestStrike(
	underlying string,
	expiryDate, openDate time.Time,
	asOfPrice float64,
) float64 {

	optionContracts, err := massiveDataProv.GetContracts(underlying, 0.0, expiryDate, openDate, openDate)
	if err != nil {
		return asOfPrice
	}

	var strikeList []float64
	for i := range optionContracts {
		if optionContracts[i].ExpiryDate.Equal(expiryDate) {
			strikeList = append(strikeList, optionContracts[i].Strike)
		}
	}
	if len(strikeList) == 0 {
		return asOfPrice
	}

	sort.Float64s(strikeList)
	return Closest(strikeList, asOfPrice)
}

// getIntervals is a placeholder for future strike-spacing logic.
func (massiveDataProv *massiveDataProvider) getIntervals(underlying string) float64 {
	return 0.0
}
