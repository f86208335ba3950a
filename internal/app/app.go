package app

import (
	"log/slog"

	"github.com/graf262-max/legal-update-monitor/internal/collect"
	"github.com/graf262-max/legal-update-monitor/internal/config"
	"github.com/graf262-max/legal-update-monitor/internal/domain"
	"github.com/graf262-max/legal-update-monitor/internal/infrastructure/httpx"
	"github.com/graf262-max/legal-update-monitor/internal/infrastructure/mail"
	"github.com/graf262-max/legal-update-monitor/internal/infrastructure/source"
	"github.com/graf262-max/legal-update-monitor/internal/infrastructure/storage"
	"github.com/graf262-max/legal-update-monitor/internal/infrastructure/telegram"
	"github.com/graf262-max/legal-update-monitor/internal/laws"
	"github.com/graf262-max/legal-update-monitor/internal/logging"
	"github.com/graf262-max/legal-update-monitor/internal/ports"
	"github.com/graf262-max/legal-update-monitor/internal/usecase"
)

// SourceStatus reports how one source was wired at startup, for the sources
// command and startup logging.
type SourceStatus struct {
	Source  domain.Source
	Enabled bool
	Skipped bool
	Reason  string
}

// Application wires configuration to collectors, storage, delivery and the
// briefing pipeline.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	store    *storage.SQLiteStore
	statuses []SourceStatus
}

// New builds the full object graph. Collectors whose credential is absent are
// recorded as skipped rather than constructed; optional storage and delivery
// channels are wired only when configured.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry := laws.NewRegistry(cfg.Laws, laws.DefaultExcludeKeywords())

	client := httpx.NewClient(httpx.Options{
		Timeout:            cfg.HTTP.Timeout(),
		InsecureSkipVerify: cfg.HTTP.InsecureSkipVerify,
	})
	deps := source.Deps{
		Client:   client,
		Registry: registry,
		Logger:   baseLogger.With("component", "source"),
	}

	var (
		collectors []ports.Collector
		skipped    []domain.Source
		statuses   []SourceStatus
	)
	add := func(src domain.Source, enabled bool, build func() ports.Collector, missingKey bool) {
		status := SourceStatus{Source: src, Enabled: enabled}
		switch {
		case !enabled:
			status.Reason = "disabled in config"
		case missingKey:
			status.Skipped = true
			status.Reason = domain.StatSkipped
			skipped = append(skipped, src)
		default:
			collectors = append(collectors, build())
		}
		statuses = append(statuses, status)
	}

	lawCfg := cfg.Collectors.LawGoKr
	add(domain.SourceLawGoKr, lawCfg.Enabled, func() ports.Collector {
		return source.NewLawGoCollector(deps, lawCfg.APIKey, lawCfg.WindowMonths)
	}, lawCfg.APIKey == "")

	asmCfg := cfg.Collectors.Assembly
	add(domain.SourceAssembly, asmCfg.Enabled, func() ports.Collector {
		return source.NewAssemblyCollector(deps, asmCfg.APIKey, asmCfg.Age)
	}, asmCfg.APIKey == "")

	window := cfg.Collectors.Window()
	add(domain.SourceMoel, cfg.Collectors.Moel.Enabled, func() ports.Collector {
		return source.NewMoelCollector(deps, window)
	}, false)
	add(domain.SourcePipc, cfg.Collectors.Pipc.Enabled, func() ports.Collector {
		return source.NewPipcCollector(deps, window)
	}, false)
	add(domain.SourceMsit, cfg.Collectors.Msit.Enabled, func() ports.Collector {
		return source.NewMsitCollector(deps, window)
	}, false)
	add(domain.SourceFsc, cfg.Collectors.Fsc.Enabled, func() ports.Collector {
		return source.NewFscCollector(deps, window)
	}, false)
	add(domain.SourceFtc, cfg.Collectors.Ftc.Enabled, func() ports.Collector {
		return source.NewFtcCollector(deps, window)
	}, false)

	aggregator := collect.NewAggregator(collectors,
		baseLogger.With("component", "aggregator"),
		collect.WithRunTimeout(cfg.Collectors.RunTimeout()),
		collect.WithSkipped(skipped),
	)

	var store *storage.SQLiteStore
	if cfg.Storage.Path != "" {
		s, err := storage.Open(cfg.Storage.Path)
		if err != nil {
			return nil, err
		}
		store = s
	}

	var mailer ports.Mailer
	if cfg.Email.APIKey != "" && len(cfg.Email.Recipients) > 0 {
		mailer = mail.NewSendGridMailer(cfg.Email.APIKey, cfg.Email.From, cfg.Email.Recipients)
	}

	var notifier ports.Notifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	}

	pipelineDeps := usecase.PipelineDeps{
		Aggregator: aggregator,
		Mailer:     mailer,
		Notifier:   notifier,
		Logger:     baseLogger.With("component", "pipeline"),
	}
	if store != nil {
		pipelineDeps.Store = store
	}

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		pipeline: usecase.NewPipeline(pipelineDeps),
		store:    store,
		statuses: statuses,
	}, nil
}

// Pipeline exposes the briefing pipeline to transports.
func (a *Application) Pipeline() *usecase.Pipeline { return a.pipeline }

// Config returns the effective configuration.
func (a *Application) Config() config.Config { return a.cfg }

// Logger returns the base application logger.
func (a *Application) Logger() *slog.Logger { return a.logger }

// Sources reports the wiring status of every known source.
func (a *Application) Sources() []SourceStatus { return a.statuses }

// Close releases held resources.
func (a *Application) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
