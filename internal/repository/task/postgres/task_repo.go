package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"taskReminder/internal/logger"
	"taskReminder/internal/models/task"
	repo "taskReminder/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Storage struct {
	pool *pgxpool.Pool
}

type PoolSettings struct {
	MaxConns    int32
	MinConns    int32
	IdleTimeout time.Duration
}

func New(ctx context.Context, connString string, settings *PoolSettings) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	if settings == nil {
		settings = &PoolSettings{MaxConns: 10, MinConns: 2, IdleTimeout: 5 * time.Minute}
	}
	config.MaxConns = settings.MaxConns
	config.MinConns = settings.MinConns
	config.MaxConnIdleTime = settings.IdleTimeout

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	err := s.pool.Ping(ctx)
	if err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	query := `INSERT INTO tasks
				(user_id, text, due_time, repeat_interval, created_at)
				VALUES ($1, $2, $3, $4, NOW())
				RETURNING id, created_at`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.UserID,
		taskToCreate.Text,
		taskToCreate.DueTime,
		nullableInterval(taskToCreate.Repeat),
	).Scan(&taskToCreate.ID, &taskToCreate.CreatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	start := time.Now()

	query := `SELECT
				id,
				user_id,
				text,
				due_time,
				repeat_interval,
				created_at
				FROM tasks
				WHERE id = $1`

	t := &task.Task{}
	var interval *string
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.UserID,
		&t.Text,
		&t.DueTime,
		&interval,
		&t.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	if interval != nil {
		t.Repeat = task.Interval(*interval)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}

	return t, nil
}

// задачи одного пользователя в порядке добавления
func (s *Storage) GetByUser(ctx context.Context, userID int64) ([]*task.Task, error) {
	query := `SELECT
				id,
				user_id,
				text,
				due_time,
				repeat_interval,
				created_at
				FROM tasks
				WHERE user_id = $1
				ORDER BY id`

	return s.queryTasks(ctx, query, userID)
}

func (s *Storage) Update(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()

	query := `UPDATE tasks
			SET text = $1,
				due_time = $2,
				repeat_interval = $3
			WHERE id = $4`

	tag, err := s.pool.Exec(ctx, query,
		taskToUpdate.Text,
		taskToUpdate.DueTime,
		nullableInterval(taskToUpdate.Repeat),
		taskToUpdate.ID,
	)

	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

// удаление по id, отсутствие строки ошибкой не считается
func (s *Storage) Delete(ctx context.Context, id int64) (bool, error) {
	start := time.Now()

	query := `DELETE FROM tasks
				WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id)

	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return false, fmt.Errorf("удаление задачи: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}

	return tag.RowsAffected() > 0, nil
}

// все задачи с заданным интервалом повторения, для утреннего воркера
func (s *Storage) GetRepeating(ctx context.Context) ([]*task.Task, error) {
	query := `SELECT
				id,
				user_id,
				text,
				due_time,
				repeat_interval,
				created_at
				FROM tasks
				WHERE repeat_interval IS NOT NULL
				ORDER BY id`

	return s.queryTasks(ctx, query)
}

func (s *Storage) GetAll(ctx context.Context) ([]*task.Task, error) {
	query := `SELECT
				id,
				user_id,
				text,
				due_time,
				repeat_interval,
				created_at
				FROM tasks
				ORDER BY id`

	return s.queryTasks(ctx, query)
}

// полуинтервал [from, to), чтобы не зависеть от секунд в due_time
func (s *Storage) GetDueBetween(ctx context.Context, from, to time.Time) ([]*task.Task, error) {
	query := `SELECT
				id,
				user_id,
				text,
				due_time,
				repeat_interval,
				created_at
				FROM tasks
				WHERE due_time >= $1 AND due_time < $2
				ORDER BY id`

	return s.queryTasks(ctx, query, from, to)
}

func (s *Storage) queryTasks(ctx context.Context, query string, args ...any) ([]*task.Task, error) {
	start := time.Now()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}

	defer rows.Close()

	tasks := []*task.Task{}

	for rows.Next() {
		t := &task.Task{}
		var interval *string

		err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Text,
			&t.DueTime,
			&interval,
			&t.CreatedAt,
		)

		if err != nil {
			logger.Warn("Repository: Ошибка сканирования задачи", zap.Error(err))
			continue
		}

		if interval != nil {
			t.Repeat = task.Interval(*interval)
		}

		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}

	return tasks, nil
}

// пустой интервал храним как NULL
func nullableInterval(i task.Interval) *string {
	if !i.IsSet() {
		return nil
	}
	s := string(i)
	return &s
}

func (s *Storage) Migrate(ctx context.Context) error {
	logger.Info("Repository: Попытка миграций")

	initUp, err := os.ReadFile("internal/migrations/001_init.up.sql")
	if err != nil {
		logger.Error("failed to read 001_init.up.sql", err)
		return err
	}

	indexesUp, err := os.ReadFile("internal/migrations/002_indexes.up.sql")
	if err != nil {
		logger.Error("failed to read 002_indexes.up.sql", err)
		return err
	}

	_, err = s.pool.Exec(ctx, string(initUp))
	if err != nil {
		logger.Error("failed to apply 001_init", err)
		return err
	}

	_, err = s.pool.Exec(ctx, string(indexesUp))
	if err != nil {
		logger.Error("failed to apply 002_indexes", err)
		return err
	}

	logger.Info("Repository: Миграции применены")
	return nil
}

func (s *Storage) Down(ctx context.Context) error {
	logger.Info("Repository: Откат миграций")

	indexesDown, err := os.ReadFile("internal/migrations/002_indexes.down.sql")
	if err != nil {
		logger.Error("failed to read 002_indexes.down.sql", err)
		return err
	}

	initDown, err := os.ReadFile("internal/migrations/001_init.down.sql")
	if err != nil {
		logger.Error("failed to read 001_init.down.sql", err)
		return err
	}

	_, err = s.pool.Exec(ctx, string(indexesDown))
	if err != nil {
		logger.Error("failed to rollback 002_indexes", err)
		return err
	}

	_, err = s.pool.Exec(ctx, string(initDown))
	if err != nil {
		logger.Error("failed to rollback 001_init", err)
		return err
	}

	logger.Info("Repository: Откат миграций завершён")
	return nil
}
