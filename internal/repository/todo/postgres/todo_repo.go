package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todoTracker/internal/config"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/todo"
	"todoTracker/internal/query"
	repo "todoTracker/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const slowQuery = 100 * time.Millisecond

type Storage struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

// New opens a pool against the application database and pings it.
func New(ctx context.Context, cfg config.DatabaseConfig) (*Storage, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.AppURL())
	if err != nil {
		logger.Error("Repository: failed to parse pool config", err)
		return nil, fmt.Errorf("parsing pool config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConnections
	poolConfig.MinConns = cfg.MinConnections
	if cfg.IdleTimeout > 0 {
		poolConfig.MaxConnIdleTime = cfg.IdleTimeout
	}
	if cfg.ConnectTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("Repository: failed to create pool", err)
		return nil, fmt.Errorf("creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: ping failed", err)
		return nil, fmt.Errorf("ping: %w", err)
	}

	logger.Info("Repository: connected to PostgreSQL",
		zap.String("database", cfg.Name),
		zap.Int32("max_conns", poolConfig.MaxConns))
	return &Storage{pool: pool, queryTimeout: cfg.QueryTimeout}, nil
}

func (s *Storage) Close() {
	if s.pool == nil {
		return
	}
	s.pool.Close()
	logger.Info("Repository: closed all PostgreSQL connections")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: ping failed", err)
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

func (s *Storage) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

func warnIfSlow(op string, start time.Time, budget time.Duration) {
	if elapsed := time.Since(start); elapsed > budget {
		logger.Warn("Repository: slow query", zap.String("operation", op), zap.Duration("ms", elapsed))
	}
}

func (s *Storage) List(ctx context.Context, filter todo.Filter) ([]*todo.Todo, error) {
	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	st := query.BuildSelect(filter)
	logger.Debug("Repository: executing query", zap.String("sql", st.SQL), zap.Int("args", len(st.Args)))

	rows, err := s.pool.Query(ctx, st.SQL, st.Args...)
	if err != nil {
		logger.Error("Repository: failed to list todos", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("listing todos: %w", err)
	}
	defer rows.Close()

	todos := []*todo.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			logger.Error("Repository: failed to scan todo", err)
			return nil, fmt.Errorf("scanning todo: %w", err)
		}
		todos = append(todos, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: row iteration failed", err)
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	warnIfSlow("list", start, slowQuery)
	return todos, nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*todo.Todo, error) {
	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	st := query.BuildGetByID(id)
	t, err := scanTodo(s.pool.QueryRow(ctx, st.SQL, st.Args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: failed to get todo", err, zap.Int64("todo_id", id), zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("getting todo %d: %w", id, err)
	}

	warnIfSlow("get", start, slowQuery)
	return t, nil
}

func (s *Storage) Create(ctx context.Context, fields todo.Fields) (int64, error) {
	start := time.Now()

	st, err := query.BuildInsert(fields)
	if err != nil {
		return 0, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	logger.Debug("Repository: executing insert", zap.String("sql", st.SQL))

	var id int64
	if err := s.pool.QueryRow(ctx, st.SQL, st.Args...).Scan(&id); err != nil {
		logger.Error("Repository: failed to insert todo", err, zap.Duration("ms", time.Since(start)))
		return 0, fmt.Errorf("inserting todo: %w", err)
	}

	warnIfSlow("create", start, slowQuery/2)
	return id, nil
}

// Update applies the provided fields; a row that disappeared since the
// caller's existence check yields ErrNotFound.
func (s *Storage) Update(ctx context.Context, id int64, fields todo.Fields) error {
	start := time.Now()

	st, err := query.BuildUpdate(id, fields)
	if err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	logger.Debug("Repository: executing update", zap.String("sql", st.SQL), zap.Int64("todo_id", id))

	tag, err := s.pool.Exec(ctx, st.SQL, st.Args...)
	if err != nil {
		logger.Error("Repository: failed to update todo", err, zap.Int64("todo_id", id))
		return fmt.Errorf("updating todo %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow("update", start, slowQuery)
	return nil
}

func (s *Storage) Delete(ctx context.Context, id int64) error {
	start := time.Now()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	st := query.BuildDelete(id)
	tag, err := s.pool.Exec(ctx, st.SQL, st.Args...)
	if err != nil {
		logger.Error("Repository: failed to delete todo", err, zap.Int64("todo_id", id), zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("deleting todo %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow("delete", start, slowQuery)
	return nil
}

func scanTodo(row pgx.Row) (*todo.Todo, error) {
	t := &todo.Todo{}
	err := row.Scan(
		&t.ID,
		&t.Task,
		&t.Description,
		&t.Status,
		&t.DueDate,
		&t.Priority,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}
