package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron"

	"github.com/optionkit/impliedvol/internal/data"
	"github.com/optionkit/impliedvol/internal/logger"
	"github.com/optionkit/impliedvol/internal/marketclock"
	"github.com/optionkit/impliedvol/internal/pricing"
	"github.com/optionkit/impliedvol/internal/report"
	"github.com/optionkit/impliedvol/internal/surface"
	"github.com/optionkit/impliedvol/internal/surfacecache"
)

var (
	quoteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "impliedvol_quote_requests_total",
		Help: "Total number of /quote requests, by outcome.",
	}, []string{"outcome"})

	cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "impliedvol_cache_lookups_total",
		Help: "Total number of surface cache lookups, by result.",
	}, []string{"result"})

	surfaceScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "impliedvol_surface_scan_duration_seconds",
		Help:    "Wall-clock duration of a full surface scan.",
		Buckets: prometheus.DefBuckets,
	})

	surfaceScanSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "impliedvol_surface_scan_results",
		Help:    "Number of results produced by a surface scan.",
		Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000},
	})
)

// server bundles the dependencies shared by the HTTP handlers.
type server struct {
	provider data.Provider
	cache    *surfacecache.Cache
	cfg      *Config
}

func main() {
	configPath := flag.String("config", filepath.Join("..", "..", "configs", "surface.example.json"), "path to JSON config")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	flag.Parse()

	cfgData, err := os.ReadFile(*configPath)
	if err != nil {
		log.Fatalf("reading config: %v", err)
	}
	var cfg Config
	if err := json.Unmarshal(cfgData, &cfg); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	prov := data.SelectProvider()
	logger.Infof("selected data provider: %T", prov)

	var cache *surfacecache.Cache
	if cfg.RedisAddr != "" {
		cache = surfacecache.New(cfg.RedisAddr, 15*time.Minute)
		defer cache.Close()
		logger.Infof("surface cache enabled at %s", cfg.RedisAddr)
	}

	srv := &server{provider: prov, cache: cache, cfg: &cfg}

	if cfg.CronSpec != "" {
		c := cron.New()
		if err := c.AddFunc(cfg.CronSpec, srv.runScheduledSnapshot); err != nil {
			log.Fatalf("invalid cron_spec %q: %v", cfg.CronSpec, err)
		}
		c.Start()
		defer c.Stop()
		logger.Infof("scheduled surface snapshot: %s -> %s", cfg.CronSpec, cfg.ReportDir)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/quote", srv.handleQuote)
	mux.HandleFunc("/surface", srv.handleSurface)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	logger.Infof("starting server on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

// handleQuote inverts a single option price into an implied volatility.
//
// Query parameters: underlying, forward, strike, t (years), price, is_call.
func (s *server) handleQuote(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	forward, ferr := strconv.ParseFloat(q.Get("forward"), 64)
	strike, kerr := strconv.ParseFloat(q.Get("strike"), 64)
	t, terr := strconv.ParseFloat(q.Get("t"), 64)
	price, perr := strconv.ParseFloat(q.Get("price"), 64)
	isCall := q.Get("is_call") == "true"
	underlying := q.Get("underlying")

	if ferr != nil || kerr != nil || terr != nil || perr != nil {
		quoteRequestsTotal.WithLabelValues("bad_request").Inc()
		http.Error(w, "forward, strike, t, and price must be numeric", http.StatusBadRequest)
		return
	}

	key := surfacecache.Key{Underlying: underlying, Forward: forward, Strike: strike, T: t, IsCall: isCall, Price: price}
	if s.cache != nil {
		if sigma, ok := s.cache.Get(r.Context(), key); ok {
			cacheLookupsTotal.WithLabelValues("hit").Inc()
			quoteRequestsTotal.WithLabelValues("ok").Inc()
			writeJSON(w, map[string]float64{"iv": sigma})
			return
		}
		cacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	sigma, err := pricing.ImpliedBlackVolatility(isCall, price, forward, strike, t)
	if err != nil {
		quoteRequestsTotal.WithLabelValues("invalid").Inc()
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if s.cache != nil {
		s.cache.Set(r.Context(), key, sigma)
	}
	quoteRequestsTotal.WithLabelValues("ok").Inc()
	writeJSON(w, map[string]float64{"iv": sigma})
}

// handleSurface runs a full scan over the configured underlyings/strikes/
// expiries and returns the results as JSON.
func (s *server) handleSurface(w http.ResponseWriter, r *http.Request) {
	results, err := s.scan()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, results)
}

// runScheduledSnapshot is invoked by cron: it scans the surface and writes
// JSON/CSV reports to the configured report directory.
func (s *server) runScheduledSnapshot() {
	results, err := s.scan()
	if err != nil {
		logger.Errorf("scheduled surface scan failed: %v", err)
		return
	}
	if err := os.MkdirAll(s.cfg.ReportDir, 0755); err != nil {
		logger.Errorf("could not create report dir %s: %v", s.cfg.ReportDir, err)
		return
	}
	if err := report.WriteJSON(results, s.cfg.ReportDir); err != nil {
		logger.Errorf("writing surface.json: %v", err)
	}
	if err := report.WriteCSV(results, s.cfg.ReportDir); err != nil {
		logger.Errorf("writing surface.csv: %v", err)
	}
	logger.Infof("scheduled snapshot wrote %d results to %s", len(results), s.cfg.ReportDir)
}

// scan builds a request grid from the configured underlyings, strikes, and
// expiry offsets, resolving each quote from the provider before inverting it.
func (s *server) scan() ([]surface.Result, error) {
	start := time.Now()
	asOf := time.Now()
	if s.cfg.SnapshotTime != "" && s.cfg.TimeZone != "" {
		if t, err := marketclock.AsOf(asOf, s.cfg.SnapshotTime, s.cfg.TimeZone); err != nil {
			logger.Errorf("scan: invalid snapshot_time/time_zone, using wall-clock now: %v", err)
		} else {
			asOf = t
		}
	}

	var requests []surface.Request
	for _, underlying := range s.cfg.Underlyings {
		for _, days := range s.cfg.ExpiryDays {
			expiry := asOf.AddDate(0, 0, days)
			for _, spot := range s.cfg.SpotLevels {
				q, err := data.ResolveQuote(s.provider, underlying, expiry, asOf, spot, true)
				if err != nil {
					logger.Debugf("scan: skipping %s %.2f %s: %v", underlying, spot, expiry, err)
					continue
				}
				requests = append(requests, surface.Request{
					Underlying: underlying,
					Strike:     q.Strike,
					Forward:    q.Forward,
					Expiry:     expiry,
					AsOf:       asOf,
					IsCall:     true,
				})
			}
		}
	}

	results, err := surface.Scan(s.provider, requests, s.cfg.Filter)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	surfaceScanDuration.Observe(time.Since(start).Seconds())
	surfaceScanSize.Observe(float64(len(results)))
	return results, nil
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
