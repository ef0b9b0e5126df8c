// Package server wires the configuration, the stores, the text generator
// and the HTTP API together and runs them until a shutdown signal arrives.
// Integrations without settings run as "not configured" stand-ins.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/productkeeper/internal/common"
	"github.com/dmitrijs2005/productkeeper/internal/logging"
	"github.com/dmitrijs2005/productkeeper/internal/server/config"
	"github.com/dmitrijs2005/productkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/productkeeper/internal/server/objectstore"
	"github.com/dmitrijs2005/productkeeper/internal/server/previews"
	"github.com/dmitrijs2005/productkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/productkeeper/internal/server/services"
	"github.com/dmitrijs2005/productkeeper/internal/server/textgen"
	"github.com/dmitrijs2005/productkeeper/internal/server/workflow"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	sessions *workflow.Registry
	server   *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(c.LogLevel)
	app := &App{config: c, logger: logger}

	for _, name := range c.Missing() {
		logger.Warn(ctx, "integration not configured", "integration", name)
	}

	records, err := app.initRecords(ctx)
	if err != nil {
		return nil, err
	}

	store, err := initStore(ctx, c)
	if err != nil {
		app.close()
		return nil, err
	}

	enhancer, err := initEnhancer(ctx, c)
	if err != nil {
		app.close()
		return nil, err
	}

	pr := previews.NewRegistry()
	app.sessions = workflow.NewRegistry(workflow.Deps{
		Store:          store,
		Records:        records,
		Enhancer:       enhancer,
		Previews:       pr,
		Logger:         logger.With("module", "workflow"),
		Namespace:      workflow.NewNamespace(c.Namespace),
		PhotosRequired: c.PhotosRequired,
	})

	app.server = httpapi.NewServer(httpapi.Options{
		Address:         c.EndpointAddrHTTP,
		SecretKey:       c.SecretKey,
		MaxUploadBytes:  c.MaxUploadBytes,
		ShutdownTimeout: c.ShutdownTimeout,
		Missing:         c.Missing(),
	}, logger, app.sessions, enhancer, pr)

	return app, nil
}

func (app *App) initRecords(ctx context.Context) (workflow.RecordStore, error) {
	if app.config.DatabaseDSN == "" {
		return services.DisabledProductService{}, nil
	}

	rm := repomanager.NewPostgresRepositoryManager()
	db, err := repomanager.OpenPostgres(ctx, app.config.DatabaseDSN, rm)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app.db = db

	return services.NewProductService(db, rm), nil
}

func initStore(ctx context.Context, c *config.Config) (workflow.ObjectStore, error) {
	s, err := objectstore.NewS3Store(ctx, objectstore.Settings{
		AccessKey:     c.S3RootUser,
		SecretKey:     c.S3RootPassword,
		Bucket:        c.S3Bucket,
		Region:        c.S3Region,
		Endpoint:      c.S3BaseEndpoint,
		PublicBaseURL: c.S3PublicBaseURL,
	})
	switch {
	case errors.Is(err, common.ErrNotConfigured):
		return objectstore.Disabled{}, nil
	case err != nil:
		return nil, fmt.Errorf("object store init error: %w", err)
	}
	return s, nil
}

func initEnhancer(ctx context.Context, c *config.Config) (textgen.Enhancer, error) {
	cl, err := textgen.New(ctx, textgen.Options{
		APIKey:   c.TextGenAPIKey,
		Model:    c.TextGenModel,
		Language: c.TextGenLanguage,
		Timeout:  c.TextGenTimeout,
	})
	switch {
	case errors.Is(err, common.ErrNotConfigured):
		return textgen.Disabled{}, nil
	case err != nil:
		return nil, fmt.Errorf("text generation init error: %w", err)
	}
	return cl, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if idle := app.config.SessionIdleTimeout; idle > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.sessions.RunReaper(ctx, idle, reapInterval(idle))
		}()
	}

	wg.Wait()

	app.sessions.CloseAll()
	app.close()
	app.logger.Info(ctx, "App stopped")
}

// reapInterval checks a few times per idle period, at most once a minute
// apart and at least a second.
func reapInterval(idle time.Duration) time.Duration {
	return min(max(idle/4, time.Second), time.Minute)
}

func (app *App) close() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err.Error())
	}
}
