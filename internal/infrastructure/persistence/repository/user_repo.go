package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/lecturer-claims/internal/application/port"
	"github.com/garyjia/lecturer-claims/internal/domain/entity"
	"github.com/garyjia/lecturer-claims/internal/infrastructure/persistence/sqlite"
)

const userColumns = `id, email, full_name, role, hourly_rate, is_active, password_hash, created_at`

// UserRepository implements port.UserRepository
type UserRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlite.DB, logger *zap.Logger) port.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (
			email, full_name, role, hourly_rate, is_active, password_hash, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.NormalizeRate()

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		user.Email,
		user.FullName,
		user.Role,
		user.HourlyRate,
		boolToInt(user.IsActive),
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.NewValidationError("email", "email is already registered")
		}
		r.logger.Error("Failed to create user", zap.String("email", user.Email), zap.Error(err))
		return storageError("failed to create user", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return storageError("failed to get last insert id", err)
	}

	user.ID = id
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.get(ctx, query, id, fmt.Sprintf("user %d", id))
}

// GetByEmail retrieves a user by email, ignoring case
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? COLLATE NOCASE`
	return r.get(ctx, query, strings.TrimSpace(email), "user "+email)
}

// List retrieves every user ordered by name
func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY full_name ASC, id ASC`
	return r.list(ctx, query)
}

// ListByRole retrieves the users holding one role
func (r *UserRepository) ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = ? ORDER BY full_name ASC, id ASC`
	return r.list(ctx, query, role)
}

// Update updates the profile fields of a user
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET email = ?, full_name = ?, role = ?, hourly_rate = ?, password_hash = ?
		WHERE id = ?
	`

	user.NormalizeRate()

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		user.Email,
		user.FullName,
		user.Role,
		user.HourlyRate,
		user.PasswordHash,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return entity.NewValidationError("email", "email is already registered")
		}
		r.logger.Error("Failed to update user", zap.Int64("id", user.ID), zap.Error(err))
		return storageError("failed to update user", err)
	}
	return requireOneRow(result, fmt.Sprintf("user %d", user.ID))
}

// SetActive activates or deactivates a user
func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx,
		`UPDATE users SET is_active = ? WHERE id = ?`, boolToInt(active), id)
	if err != nil {
		r.logger.Error("Failed to set user active flag", zap.Int64("id", id), zap.Error(err))
		return storageError("failed to set user active flag", err)
	}
	return requireOneRow(result, fmt.Sprintf("user %d", id))
}

// NamesByID resolves display names; unknown IDs are simply absent from the map
func (r *UserRepository) NamesByID(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}

	query := `SELECT id, full_name FROM users WHERE id IN (` + strings.Join(placeholders, ", ") + `)`
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to resolve user names", zap.Int("ids", len(args)), zap.Error(err))
		return nil, storageError("failed to resolve user names", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, storageError("failed to scan user name", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

func (r *UserRepository) get(ctx context.Context, query string, arg interface{}, what string) (*entity.User, error) {
	user, err := scanUser(r.db.Executor(ctx).QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", what, entity.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.String("user", what), zap.Error(err))
		return nil, storageError("failed to get user", err)
	}
	return user, nil
}

func (r *UserRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.User, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, storageError("failed to list users", err)
	}
	defer rows.Close()

	users := []*entity.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, storageError("failed to scan user", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(s scanner) (*entity.User, error) {
	var u entity.User
	var active int
	err := s.Scan(
		&u.ID,
		&u.Email,
		&u.FullName,
		&u.Role,
		&u.HourlyRate,
		&active,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.IsActive = active == 1
	return &u, nil
}

func requireOneRow(result sql.Result, what string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return storageError("failed to read affected rows", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", what, entity.ErrNotFound)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Verify interface compliance
var _ port.UserRepository = (*UserRepository)(nil)
