package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockpile-ims/stockpile/internal/rbac"
	"github.com/stockpile-ims/stockpile/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id int64) (*User, error)
	LoadRoles(ctx context.Context, userID int64) ([]rbac.ActorRole, error)
	CreateUser(ctx context.Context, user *User) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, email, username, password_hash, is_active, created_at, updated_at`

// FindByEmail fetches a user by email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

// FindByUsername fetches a user by username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

// FindByID fetches a user by ID.
func (r *PGRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg any) (*User, error) {
	var (
		user     User
		username pgtype.Text
	)
	err := r.pool.QueryRow(ctx, query, arg).
		Scan(&user.ID, &user.Email, &username, &user.PasswordHash, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	user.Username = username.String
	return &user, nil
}

// LoadRoles reads the user's roles and, per role, its permission actions.
// Every call hits the store: revoked roles or permissions take effect on the
// very next request, the deliberate cost of running without a cache.
func (r *PGRepository) LoadRoles(ctx context.Context, userID int64) ([]rbac.ActorRole, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.name, p.action
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		LEFT JOIN role_permissions rp ON rp.role_id = r.id
		LEFT JOIN permissions p ON p.id = rp.permission_id
		WHERE ur.user_id = $1
		ORDER BY r.name, p.action`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []rbac.ActorRole
	for rows.Next() {
		var (
			name   string
			action pgtype.Text
		)
		if err := rows.Scan(&name, &action); err != nil {
			return nil, err
		}
		if len(roles) == 0 || roles[len(roles)-1].Name != name {
			roles = append(roles, rbac.ActorRole{Name: name})
		}
		if action.Valid {
			last := &roles[len(roles)-1]
			last.Actions = append(last.Actions, action.String)
		}
	}
	return roles, rows.Err()
}

// CreateUser inserts a new account, mapping unique violations to the
// duplicate sentinels.
func (r *PGRepository) CreateUser(ctx context.Context, user *User) (int64, error) {
	username := pgtype.Text{String: user.Username, Valid: user.Username != ""}
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, username, password_hash, is_active) VALUES ($1, $2, $3, $4) RETURNING id`,
		user.Email, username, user.PasswordHash, user.IsActive).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if pgErr.ConstraintName == "users_username_key" {
				return 0, shared.ErrDuplicateUsername
			}
			return 0, shared.ErrDuplicateEmail
		}
		return 0, err
	}
	return id, nil
}

var _ Repository = (*PGRepository)(nil)
