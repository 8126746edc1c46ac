package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/scipunch/mytv/assets"
	"github.com/scipunch/mytv/cache"
	"github.com/scipunch/mytv/config"
	"github.com/scipunch/mytv/fetcher"
	"github.com/scipunch/mytv/filter"
	"github.com/scipunch/mytv/metrics"
	"github.com/scipunch/mytv/parser"
	"github.com/scipunch/mytv/repository"
)

func main() {
	var (
		cfgPath    string
		cleanCache bool
		interval   time.Duration
		query      string
		asJSON     bool
		epgOnly    bool
		iptvOnly   bool
	)
	flag.StringVar(&cfgPath, "config", config.DefaultPath(), "path to a TOML config")
	flag.BoolVar(&cleanCache, "clean", false, "remove all cache entries")
	flag.DurationVar(&interval, "interval", 0, "reload sources on this interval until interrupted, 0 runs once")
	flag.StringVar(&query, "search", "", "fuzzy search the playlist for channels")
	flag.BoolVar(&asJSON, "json", false, "print the report as JSON")
	flag.BoolVar(&epgOnly, "epg", false, "load only the programme guide")
	flag.BoolVar(&iptvOnly, "iptv", false, "load only the playlist")
	flag.Parse()

	// Read config and create if default is missing
	conf, err := config.Read(cfgPath)
	if errors.Is(err, os.ErrNotExist) && cfgPath == config.DefaultPath() {
		if err := config.Write(cfgPath, config.Default()); err != nil {
			log.Fatalf("failed to write default config with %s", err)
		}
	} else if err != nil {
		log.Fatalf("failed to read config with %s", err)
	}
	if err := conf.Validate(); err != nil {
		log.Fatal(err)
	}

	level, _ := conf.Level()
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(newHandler(os.Stderr, level)))

	loc, _ := conf.Location()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(conf)
	if err != nil {
		log.Fatalf("failed to open cache with %s", err)
	}
	defer store.Close()

	// Handle -clean flag
	if cleanCache {
		if err := store.Clear(ctx); err != nil {
			log.Fatalf("failed to clear cache: %v", err)
		}
		slog.Info("cache cleared successfully")
		return
	}

	if s, ok := store.(*cache.SQLiteStore); ok {
		stats, err := s.Stats(ctx)
		if err != nil {
			slog.Warn("failed to get cache stats", "error", err)
		} else {
			slog.Info("cache initialized", "backend", conf.CacheBackend, "entries", stats.Entries, "oldest", stats.OldestEntry)
		}
	}

	var cacheOpts []cache.Option
	repoOpts := []repository.Option{repository.WithLocation(loc)}
	if conf.Metrics.Listen != "" {
		m := metrics.New(prometheus.DefaultRegisterer)
		cacheOpts = append(cacheOpts, cache.WithObserver(m))
		repoOpts = append(repoOpts, repository.WithFetchObserver(m))
		go serveMetrics(ctx, conf.Metrics.Listen)
	}
	if len(conf.Iptv.ExcludePatterns) > 0 {
		repoOpts = append(repoOpts, repository.WithChannelPredicates(filter.ExcludePatterns(conf.Iptv.ExcludePatterns)))
	}

	zl := newZapLogger(level)
	defer zl.Sync()

	transport := fetcher.NewHTTPTransport(
		fetcher.WithTimeout(conf.HTTPTimeout.Duration),
		fetcher.WithUserAgent(conf.UserAgent),
		fetcher.WithRateLimit(conf.RateLimit),
		fetcher.WithLogger(zl),
	)
	fetchers := fetcher.DefaultRegistry(transport, assets.FS)
	parsers := parser.DefaultRegistry()

	c := cache.New(store, cacheOpts...)
	epgRepo := repository.NewEpgRepository(c, fetchers, repoOpts...)
	iptvRepo := repository.NewIptvRepository(c, fetchers, parsers, repoOpts...)

	load := func() error {
		var (
			r    report
			errs []error
		)
		if !iptvOnly {
			guide, err := epgRepo.GetEpgList(ctx, conf.Epg.URL, conf.Epg.Channels, conf.Epg.RefreshHour)
			if err != nil {
				errs = append(errs, fmt.Errorf("guide: %w", err))
			}
			r.Guide = guide
		}
		if !epgOnly {
			groups, err := iptvRepo.GetIptvGroupList(ctx, conf.Iptv.URL, conf.Iptv.CacheTTL.Duration, conf.Iptv.Simplify)
			if err != nil {
				errs = append(errs, fmt.Errorf("playlist: %w", err))
			}
			r.Playlist = groups
		}
		r.build(query, time.Now().In(loc))

		var err error
		if asJSON {
			err = r.writeJSON(os.Stdout)
		} else {
			err = r.writeText(os.Stdout)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to write report with %w", err))
		}
		return errors.Join(errs...)
	}

	if interval <= 0 {
		if err := load(); err != nil {
			slog.Error("some sources failed to load", "errors", err)
			os.Exit(1)
		}
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if err := load(); err != nil {
			slog.Error("some sources failed to load", "errors", err)
		}
		select {
		case <-ctx.Done():
			slog.Info("interrupted by user, exiting gracefully")
			return
		case <-ticker.C:
		}
	}
}

func openStore(conf config.Config) (cache.Store, error) {
	switch conf.CacheBackend {
	case config.Memory:
		return cache.NewMemoryStore(), nil
	case config.Bolt:
		return cache.NewBoltStore(conf.ResolvedCachePath())
	case config.SQLite:
		return cache.NewSQLiteStore(conf.ResolvedCachePath())
	}
	return nil, fmt.Errorf("unsupported cache backend '%s'", conf.CacheBackend)
}

// newHandler writes text for people and JSON for log collectors
func newHandler(f *os.File, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if term.IsTerminal(int(f.Fd())) {
		return slog.NewTextHandler(f, opts)
	}
	return slog.NewJSONHandler(f, opts)
}

func newZapLogger(level slog.Level) *zap.Logger {
	if level > slog.LevelDebug {
		return zap.NewNop()
	}
	zl, err := zap.NewDevelopment()
	if err != nil {
		slog.Warn("failed to create transport logger", "error", err)
		return zap.NewNop()
	}
	return zl
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("metrics server stopped", "error", err)
	}
}
