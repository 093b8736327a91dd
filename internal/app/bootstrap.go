package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"giftshop/internal/domain"
	"giftshop/internal/engine"
	"giftshop/internal/httpserver"
	"giftshop/internal/infra"
	"giftshop/internal/infra/storage"
	"giftshop/internal/service"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	ConfigPath string

	Config    *infra.Config
	Logger    *slog.Logger
	Metrics   *infra.Metrics
	Storage   *storage.Storage
	Content   *domain.Content
	Hub       *httpserver.LiveHub
	Sequencer *engine.Sequencer
	Catalog   *service.CatalogService
	Carts     *service.CartService
	Pages     *service.PageService
	Preparer  *infra.HeroPreparer
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap(configPath string) *Bootstrap {
	if configPath == "" {
		configPath = infra.DefaultConfigPath
	}
	return &Bootstrap{ConfigPath: configPath}
}

// Initialize performs core system initialization (config, logger, journal,
// content, sequencer). The sequencer is restored but not started.
func (b *Bootstrap) Initialize(ctx context.Context) error {
	slog.Info("🚀 Bootstrapping Gift Shop...")

	// 1. Load Config
	cfg, err := infra.LoadConfigOrDefault(b.ConfigPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	b.Logger = infra.NewLogger(cfg)
	slog.SetDefault(b.Logger)
	b.Metrics = infra.GlobalMetrics

	// 3. Initialize Storage (journal)
	var journal domain.EventJournal
	if cfg.Journal.Enabled {
		store, err := storage.NewStorage(cfg.Journal.Path)
		if err != nil {
			return err
		}
		b.Storage = store
		journal = store
		slog.Info("✅ Journal initialized", slog.String("path", cfg.Journal.Path))
	}

	// 4. Content
	content, err := infra.LoadContent(cfg.Content.Path)
	if err != nil {
		return err
	}
	b.Content = content
	slog.Info("✅ Content loaded", slog.Int("faq", len(content.FAQ)))

	// 5. Sequencer + live feed
	b.Hub = httpserver.NewLiveHub(b.Metrics)
	b.Sequencer = engine.NewSequencer(engine.Options{
		InboxSize:     cfg.Session.InboxSize,
		Journal:       journal,
		IdleTTL:       time.Duration(cfg.Session.IdleTTLMinutes) * time.Minute,
		Metrics:       b.Metrics,
		OnStateUpdate: b.Hub.Publish,
	})
	if journal != nil {
		n, err := b.Sequencer.Restore(ctx)
		if err != nil {
			return fmt.Errorf("restore journal: %w", err)
		}
		last, err := b.Storage.LastSeq(ctx)
		if err != nil {
			return fmt.Errorf("read journal head: %w", err)
		}
		if last+1 != b.Sequencer.NextSeq() {
			return fmt.Errorf("journal head %d does not match replayed sequence %d", last, b.Sequencer.NextSeq()-1)
		}
		slog.Info("✅ Journal replayed",
			slog.Int("events", n),
			slog.Int("sessions", b.Sequencer.SessionCount()))
	}

	// 6. Services
	catalog := domain.DefaultCatalog()
	b.Carts = service.NewCartService(b.Sequencer)
	b.Catalog = service.NewCatalogService(catalog, b.Sequencer, b.Carts)
	b.Pages = service.NewPageService(catalog, b.Sequencer, content)

	// 7. Hero image preparer
	if cfg.Assets.HeroSource != "" {
		preparer, err := infra.NewHeroPreparer(cfg.Assets.Dir)
		if err != nil {
			return err
		}
		b.Preparer = preparer
	}

	return nil
}

// HTTPServer builds the storefront server from the initialized services.
func (b *Bootstrap) HTTPServer() *http.Server {
	cfg := b.Config
	return httpserver.New(b.httpConfig(), httpserver.Deps{
		Catalog:   b.Catalog,
		Carts:     b.Carts,
		Pages:     b.Pages,
		Hub:       b.Hub,
		Sequencer: b.Sequencer,
		Metrics:   b.Metrics,
		Logger:    b.Logger.With(slog.String("component", "http"), slog.String("app", cfg.App.Name)),
	})
}

func (b *Bootstrap) httpConfig() httpserver.Config {
	cfg := b.Config
	return httpserver.Config{
		Address:        cfg.Server.Addr,
		CookieName:     cfg.Session.CookieName,
		AssetsDir:      cfg.Assets.Dir,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeoutSec) * time.Second,
	}
}

// PrepareAssets resizes the hero image in the background and switches
// the page over once it is ready. Failures keep the configured image.
func (b *Bootstrap) PrepareAssets(ctx context.Context) {
	if b.Preparer == nil {
		return
	}
	slog.Info("🔄 Preparing hero image...")

	cfg := b.Config.Assets
	url, err := b.Preparer.Prepare(ctx, cfg.HeroSource, cfg.HeroWidth)
	if err != nil {
		slog.Warn("Failed to prepare hero image", slog.String("source", cfg.HeroSource), slog.Any("error", err))
		return
	}
	b.Pages.SetHeroImage(url)
	slog.Info("✨ Hero image ready", slog.String("url", url))
}

// Close releases resources opened by Initialize.
func (b *Bootstrap) Close() error {
	if b.Hub != nil {
		b.Hub.Close()
	}
	if b.Storage != nil {
		return b.Storage.Close()
	}
	return nil
}
