package cli

import (
	"fmt"
	"os/user"

	"go.uber.org/zap"

	"refdesk/internal/api"
	"refdesk/internal/approval"
	"refdesk/internal/auth"
	"refdesk/internal/config"
	"refdesk/internal/eventbus"
	"refdesk/internal/journal"
	"refdesk/internal/loading"
	"refdesk/internal/logging"
	"refdesk/internal/resources"
	"refdesk/internal/session"
)

// app holds the services every command shares
type app struct {
	cfg     *config.Config
	cfgSvc  config.ConfigService
	bus     eventbus.EventBus
	tokens  *auth.FileStore
	tracker *loading.Tracker
	client  *api.Client
	catalog *resources.Catalog
	journal *journal.Manager
	queue   *approval.Queue
	session *session.Store
	user    string
	log     *zap.Logger
}

func newApp() (*app, error) {
	cfg, err := config.NewConfigService(configPath, nil).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if baseURL != "" {
		cfg.API.BaseURL = baseURL
	}
	if err := logging.Initialize(cfg.Log.Level, cfg.Log.File); err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		bus:     eventbus.New(logging.Named("eventbus")),
		tokens:  auth.NewFileStore(cfg.Storage.TokenPath),
		session: session.New(),
		user:    currentUser(),
		log:     logging.Named("app"),
	}
	a.cfgSvc = config.NewConfigService(configPath, a.bus)
	a.log.Info("config loaded", zap.String("path", a.cfgSvc.Path()), zap.String("base_url", cfg.API.BaseURL))

	a.tracker = loading.NewTracker(func(on bool, pending int) {
		a.bus.Publish(eventbus.LoadingChangedEvent{Loading: on, Pending: pending})
	})

	var tokens auth.TokenSource = a.tokens
	if tokenFlag != "" {
		tokens = auth.Static(tokenFlag)
	}
	a.client, err = api.New(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout.Std()),
		api.WithTokenSource(tokens),
		api.WithTracker(a.tracker),
		api.WithLogger(logging.Named("api")),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.catalog, err = resources.Load(cfg.Resources.File)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []approval.QueueOption{approval.WithLogger(logging.Named("approval"))}
	if j, err := journal.NewManager(cfg.Storage.JournalPath); err != nil {
		a.log.Warn("journal disabled", zap.String("path", cfg.Storage.JournalPath), zap.Error(err))
	} else {
		a.journal = j
		opts = append(opts, approval.WithRecorder(j))
	}
	a.queue = approval.NewQueue(a.client, a.bus, opts...)
	return a, nil
}

// resource looks up a resource by name with a helpful error
func (a *app) resource(name string) (*resources.Definition, error) {
	def, ok := a.catalog.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown resource %q (known: %v)", name, a.catalog.Names())
	}
	return def, nil
}

func (a *app) Close() {
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.log.Warn("failed to close journal", zap.Error(err))
		}
	}
	if a.bus != nil {
		a.bus.Close()
	}
	logging.Sync()
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}
