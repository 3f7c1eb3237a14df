// Package main runs the taskdock shell: it loads configuration, wires the
// API gateway, the cached collections and the session store, and starts
// the REPL.
package main

import (
	"cmp"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/atinyakov/taskdock/internal/client/cache"
	"github.com/atinyakov/taskdock/internal/client/gateway"
	"github.com/atinyakov/taskdock/internal/client/session"
	"github.com/atinyakov/taskdock/internal/client/shell"
	"github.com/atinyakov/taskdock/internal/config"
	"github.com/atinyakov/taskdock/internal/localstore"
	"github.com/atinyakov/taskdock/internal/logger"
	"github.com/atinyakov/taskdock/internal/models"
	"github.com/atinyakov/taskdock/internal/validation"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options, err := config.Parse()
	if err != nil {
		log.Fatal(err)
	}

	if options.Version {
		fmt.Printf("taskdock\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	// Initialize structured logging.
	lg := logger.New()
	defer func() { _ = lg.Log.Sync() }()
	if err := lg.Init(options.LogLevel); err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	zapLogger := lg.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	httpClient, err := gateway.NewHTTPClient(gateway.TLSFiles{
		CAFile:   options.CAFile,
		CertFile: options.CertFile,
		KeyFile:  options.KeyFile,
	})
	if err != nil {
		zapLogger.Fatal("failed to build http client", zap.Error(err))
	}
	api := gateway.New(options.BaseURL, httpClient,
		gateway.WithRole(options.Role),
		gateway.WithLogger(zapLogger),
	)

	validator, err := validation.New()
	if err != nil {
		zapLogger.Fatal("failed to compile schemas", zap.Error(err))
	}

	// Open the local store holding users and the current session.
	kv, err := localstore.Open(ctx, localstore.Config{
		Backend:     options.StoreBackend,
		Path:        options.StorePath,
		RedisAddr:   options.RedisAddr,
		RedisPrefix: options.RedisPrefix,
	})
	if err != nil {
		zapLogger.Fatal("failed to open local store", zap.Error(err))
	}
	sess := session.New(kv, zapLogger,
		session.WithDelay(options.AuthDelay.Duration),
		session.WithValidator(validator),
	)
	defer func() { _ = sess.Close() }()
	if err := sess.Init(ctx); err != nil {
		zapLogger.Fatal("failed to read session", zap.Error(err))
	}

	notices := shell.NewNotices()
	todos := cache.New[models.Todo]("todo", gateway.NewTodos(api), zapLogger,
		cache.WithValidator(validator.Mutations("todo")),
		cache.WithOnChange(notices.Watch("todos")))
	defer todos.Close()
	tasks := cache.New[models.Task]("task", gateway.NewTasks(api), zapLogger,
		cache.WithValidator(validator.Mutations("task")),
		cache.WithOnChange(notices.Watch("tasks")))
	defer tasks.Close()

	cache.StartAutoRefresh(ctx, options.RefreshInterval.Duration, zapLogger, todos, tasks)

	sh := shell.New(shell.Deps{
		Session: sess,
		API:     api,
		Todos:   todos,
		Tasks:   tasks,
		Log:     zapLogger,
		Notices: notices,
	}, os.Stdin, os.Stdout)

	if sess.State() == session.Authenticated {
		if u, err := sess.Current(ctx); err == nil && u != nil {
			fmt.Printf("Logged in as %s <%s>\n", u.Name, u.Email)
		}
		if err := sh.Load(ctx); err != nil {
			zapLogger.Warn("initial load failed", zap.Error(err))
			fmt.Println("Could not load data from", api.BaseURL()+": run 'refresh' to retry")
		}
	}

	if err := sh.Run(ctx); err != nil && ctx.Err() == nil {
		zapLogger.Error("shell stopped", zap.Error(err))
	}
}
