package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	uuid "github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/arklim/realmeye-identity/internal/core/domain"
	"github.com/arklim/realmeye-identity/internal/repository"
)

const uniqueViolationCode = "23505"

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository implements port.UserRepository using PostgreSQL. The store
// assigns record ids on insert and owns name uniqueness through the unique
// index on identity.users(name).
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(exec pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// FindByName retrieves a user by display name. Lookup is case-sensitive.
func (r *UserRepository) FindByName(ctx context.Context, name string) (*domain.User, error) {
	return r.findBy(ctx, squirrel.Eq{"name": name})
}

// FindByID retrieves a user by record id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findBy(ctx, squirrel.Eq{"id": id})
}

func (r *UserRepository) findBy(ctx context.Context, cond squirrel.Eq) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select("id", "name", "password_hash", "salt").
		From("identity.users").
		Where(cond).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	var user domain.User
	row := r.exec.QueryRow(ctx, stmt, args...)
	if err := row.Scan(&user.ID, &user.Name, &user.PasswordHash, &user.Salt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &user, nil
}

// Insert creates a new user row, assigning a fresh id, and returns the
// stored record. A concurrent insert of the same name surfaces as
// repository.ErrDuplicate via the unique index.
func (r *UserRepository) Insert(ctx context.Context, user domain.User) (domain.User, error) {
	user.ID = uuid.NewString()

	stmt, args, err := r.builder.
		Insert("identity.users").
		Columns("id", "name", "password_hash", "salt").
		Values(user.ID, user.Name, user.PasswordHash, user.Salt).
		ToSql()
	if err != nil {
		return domain.User{}, fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return domain.User{}, repository.ErrDuplicate
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}

	return user, nil
}

// ReplaceByID overwrites the stored record for id. Last writer wins at the
// record level; there is no optimistic concurrency check.
func (r *UserRepository) ReplaceByID(ctx context.Context, id string, user domain.User) error {
	stmt, args, err := r.builder.
		Update("identity.users").
		Set("name", user.Name).
		Set("password_hash", user.PasswordHash).
		Set("salt", user.Salt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}
