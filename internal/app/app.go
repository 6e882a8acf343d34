package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/five82/channelsync/internal/config"
	"github.com/five82/channelsync/internal/logging"
	"github.com/five82/channelsync/internal/metrics"
	"github.com/five82/channelsync/internal/paging"
	"github.com/five82/channelsync/internal/prefs"
	"github.com/five82/channelsync/internal/remote"
	"github.com/five82/channelsync/internal/state"
	"github.com/five82/channelsync/internal/ui"
)

var (
	_ paging.Source = (*remote.Client)(nil)
	_ paging.Source = (*remote.MemorySource)(nil)
)

const (
	demoCollection = "demo"
	demoItems      = 120
)

// ErrNoCollection is returned when neither the flags nor the config name a
// collection to open.
var ErrNoCollection = errors.New("no collection given: pass one or set collection in config")

// Options configure a channelsync session.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses ~/.config/channelsync/prefs.toml
	APIURL     string // overrides api_url
	Collection string // overrides collection
	LogLevel   string // overrides log_level
	Demo       bool   // browse a generated in-memory collection
	Console    bool   // log to stderr instead of the log file
}

// Session holds everything opened for one collection view.
type Session struct {
	Config     config.Config
	Prefs      prefs.Prefs
	PrefsPath  string
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
	Source     paging.Source
	Store      *state.Store
	Controller *paging.Controller
	Mutator    *paging.Mutator

	closeLog func() error
}

// Open loads configuration and preferences and builds the source, store,
// controller and mutator for the requested collection.
func Open(opts Options) (*Session, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(opts.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(opts.Collection); v != "" {
		cfg.Collection = v
	}
	if v := strings.TrimSpace(opts.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	if opts.Demo && cfg.Collection == "" {
		cfg.Collection = demoCollection
	}
	if cfg.Collection == "" {
		return nil, ErrNoCollection
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		return nil, fmt.Errorf("load prefs: %w", err)
	}

	logOpts := logging.Options{Level: cfg.LogLevel, File: cfg.LogFile}
	if opts.Console {
		logOpts = logging.Options{Level: cfg.LogLevel, Console: true}
	}
	logger, closeLog, err := logging.New(logOpts)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	src, err := newSource(cfg, opts.Demo, logger)
	if err != nil {
		_ = closeLog()
		return nil, err
	}

	m := metrics.New()
	store := state.NewStore()
	ctrl, err := paging.NewController(src, store, identityFor(cfg, userPrefs), paging.Options{
		MaxInFlight: cfg.MaxInFlight,
		Metrics:     m,
		Logger:      logger,
	})
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("open collection: %w", err)
	}
	mut := paging.NewMutator(ctrl, paging.MutatorOptions{
		RevalidateOnMoveFailure: cfg.RevalidateOnMoveFailure,
		Metrics:                 m,
		Logger:                  logger,
	})

	logger.Info().
		Str("identity", ctrl.Identity().String()).
		Bool("demo", opts.Demo).
		Msg("session opened")

	return &Session{
		Config:     cfg,
		Prefs:      userPrefs,
		PrefsPath:  prefsPath,
		Logger:     logger,
		Metrics:    m,
		Source:     src,
		Store:      store,
		Controller: ctrl,
		Mutator:    mut,
		closeLog:   closeLog,
	}, nil
}

// Close waits for background work and releases the log file.
func (s *Session) Close() error {
	s.Controller.Close()
	return s.closeLog()
}

// Serve starts the metrics endpoint when one is configured.
func (s *Session) Serve(ctx context.Context) {
	addr := s.Config.MetricsAddr
	if addr == "" {
		return
	}
	go func() {
		if err := s.Metrics.Serve(ctx, addr, s.Logger); err != nil {
			s.Logger.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
		}
	}()
}

// Run boots the channelsync browser until the context is cancelled or the
// user quits.
func Run(ctx context.Context, opts Options) error {
	sess, err := Open(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	sess.Serve(ctx)
	pollerDone := StartPoller(ctx, sess.Controller, sess.Config.RefreshInterval, sess.Logger)
	defer func() {
		cancel()
		<-pollerDone
		_ = sess.Close()
	}()

	// Populate the first page before the UI starts. A failure is recorded
	// on the snapshot and shown in the header.
	if err := sess.Controller.FetchPage(ctx, 1); err != nil {
		sess.Logger.Warn().Err(err).Msg("initial fetch failed")
	}

	return ui.Run(ui.Options{
		Context:   ctx,
		Mutator:   sess.Mutator,
		Prefs:     sess.Prefs,
		PrefsPath: sess.PrefsPath,
		LogFile:   logFileFor(sess.Config, opts),
	})
}

func identityFor(cfg config.Config, p prefs.Prefs) state.Identity {
	return state.Identity{
		CollectionID: cfg.Collection,
		PageSize:     cfg.PageSize,
		Sort:         p.Sort,
		Direction:    p.Direction,
		TypeFilter:   p.TypeFilter,
	}
}

func newSource(cfg config.Config, demo bool, logger zerolog.Logger) (paging.Source, error) {
	if demo {
		return remote.DemoSource(cfg.Collection, demoItems), nil
	}
	client, err := remote.NewClient(remote.Options{
		BaseURL:  cfg.APIURL,
		Token:    cfg.APIToken,
		Timeout:  cfg.RequestTimeout,
		RetryMax: cfg.RetryMax,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}
	return client, nil
}

func logFileFor(cfg config.Config, opts Options) string {
	if opts.Console {
		return ""
	}
	return cfg.LogFile
}
