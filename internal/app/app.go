package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"taskReminder/internal/config"
	"taskReminder/internal/conversation"
	"taskReminder/internal/gateway"
	"taskReminder/internal/handlers"
	"taskReminder/internal/logger"
	"taskReminder/internal/middleware"
	"taskReminder/internal/notifier"
	"taskReminder/internal/repository/task/inmemory"
	"taskReminder/internal/repository/task/postgres"
	"taskReminder/internal/service"
	"taskReminder/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type App struct {
	config    *config.Config
	server    *http.Server
	router    *chi.Mux
	service   service.TaskService
	daily     *worker.DailyWorker
	dueSoon   *worker.DueSoonWorker
	shutdowns []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {

	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: Завершение работы логгирования...")
		logger.Sync()
	})

	repo, err := a.initRepository(ctx)
	if err != nil {
		return err
	}

	a.service = service.NewTaskService(repo)
	tracker := conversation.NewTracker()
	gw := gateway.New(&a.service, tracker)

	sink := notifier.NewWebhookNotifier(a.config.Notifier.URL, a.config.Notifier.Timeout)

	a.daily = worker.NewDailyWorker(repo, sink,
		&a.config.Scheduler.DigestHour,
		a.config.Scheduler.Recurrence,
		a.config.Scheduler.Digest)
	a.dueSoon = worker.NewDueSoonWorker(repo, sink, nil, &a.config.Scheduler.DueLookahead)

	handler := handlers.NewChatHandler(gw, &a.service)
	a.router = newRouter(&handler)

	a.server = &http.Server{
		Addr:    a.config.GetServerAddr(),
		Handler: a.router,
	}

	return nil
}

func (a *App) initRepository(ctx context.Context) (service.TaskRepository, error) {
	switch a.config.Repository.Type {
	case "postgres":
		settings := &postgres.PoolSettings{
			MaxConns:    int32(a.config.Database.MaxConnections),
			MinConns:    int32(a.config.Database.MinConnections),
			IdleTimeout: a.config.Database.IdleTimeout,
		}
		storage, err := postgres.New(ctx, a.config.Database.URL, settings)
		if err != nil {
			return nil, fmt.Errorf("подключение к postgres: %w", err)
		}

		if err := storage.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("миграции: %w", err)
		}

		a.shutdowns = append(a.shutdowns, storage.Close)
		return storage, nil

	case "inmemory", "":
		return inmemory.NewTaskStorage(), nil

	default:
		return nil, fmt.Errorf("неизвестный тип репозитория: %q", a.config.Repository.Type)
	}
}

func newRouter(handler *handlers.ChatHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.RateLimit(100))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
	}))

	r.Route("/users/{userID}", func(r chi.Router) {

		r.Post("/commands/add", handler.AddCommand) // POST /users/{userID}/commands/add
		r.Get("/tasks", handler.ListTasks)          // GET /users/{userID}/tasks
		r.Post("/messages", handler.FreeText)       // POST /users/{userID}/messages

		r.Route("/tasks/{taskID}", func(r chi.Router) {
			r.Post("/edit", handler.EditAction)     // POST /users/{userID}/tasks/{taskID}/edit
			r.Delete("/", handler.DeleteAction)     // DELETE /users/{userID}/tasks/{taskID}
			r.Post("/repeat", handler.RepeatAction) // POST /users/{userID}/tasks/{taskID}/repeat
			r.Post("/due", handler.DueAction)       // POST /users/{userID}/tasks/{taskID}/due
		})
	})

	r.Get("/health", handler.HealthCheck)

	return r
}

// Run блокирует до отмены контекста: воркеры доживают текущий тик,
// сервер дорабатывает начатые запросы
func (a *App) Run(ctx context.Context) error {
	go a.daily.Start(ctx)
	go a.dueSoon.Start(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("App: Сервер запущен")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.Shutdown()
		return fmt.Errorf("работа сервера: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("App: Ошибка остановки сервера", err)
	}

	a.Shutdown()
	return nil
}

func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
}
