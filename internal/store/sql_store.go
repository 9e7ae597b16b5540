package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/isdelr/pulse-be/internal/database"
	"github.com/isdelr/pulse-be/internal/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLStore keeps users and tasks in SQLite. Writes touch a single row.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore opens the database at path and applies the schema.
func NewSQLStore(path string) (*SQLStore, error) {
	db, err := database.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying database migrations: %w", err)
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) FindUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, email, password_hash, created_at FROM users WHERE email = ?", email)
	return scanUser(row)
}

func (s *SQLStore) FindUserByID(ctx context.Context, id string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, email, password_hash, created_at FROM users WHERE id = ?", id)
	return scanUser(row)
}

func (s *SQLStore) CreateUser(ctx context.Context, user models.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users(id, email, password_hash, created_at) VALUES(?, ?, ?, ?)",
		user.ID, user.Email, user.PasswordHash, formatTime(user.CreatedAt),
	)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

const taskColumns = "id, user_id, title, description, status, priority, deadline, created_at, updated_at"

func (s *SQLStore) ListTasksByUser(ctx context.Context, userID string) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE user_id = ? ORDER BY rowid", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (s *SQLStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+taskColumns+" FROM tasks ORDER BY rowid")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (s *SQLStore) GetTask(ctx context.Context, id string) (models.Task, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	return scanTask(row)
}

func (s *SQLStore) CreateTask(ctx context.Context, task models.Task) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO tasks("+taskColumns+") VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)",
		task.ID, task.UserID, task.Title, task.Description, string(task.Status), int(task.Priority),
		nullableDate(task.Deadline), formatTime(task.CreatedAt), formatTime(task.UpdatedAt),
	)
	return err
}

func (s *SQLStore) UpdateTask(ctx context.Context, task models.Task) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, status = ?, priority = ?, deadline = ?, updated_at = ?
		WHERE id = ?`,
		task.Title, task.Description, string(task.Status), int(task.Priority),
		nullableDate(task.Deadline), formatTime(task.UpdatedAt), task.ID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *SQLStore) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

type rowScanner interface{ Scan(...interface{}) error }

func scanUser(scanner rowScanner) (models.User, error) {
	var user models.User
	var createdAt string
	err := scanner.Scan(&user.ID, &user.Email, &user.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func scanTasks(rows *sql.Rows) ([]models.Task, error) {
	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func scanTask(scanner rowScanner) (models.Task, error) {
	var task models.Task
	var status, createdAt, updatedAt string
	var priority sql.NullInt64
	var deadline sql.NullString

	err := scanner.Scan(
		&task.ID, &task.UserID, &task.Title, &task.Description, &status,
		&priority, &deadline, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, err
	}

	task.Status = models.Status(status)
	task.Priority = models.Priority(priority.Int64)
	task.Deadline = deadline.String
	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Task{}, err
	}
	if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableDate(d string) sql.NullString {
	return sql.NullString{String: d, Valid: d != ""}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored timestamp %q: %w", s, err)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
