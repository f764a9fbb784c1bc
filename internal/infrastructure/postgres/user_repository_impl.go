package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/clubhub/internal/domain/apperror"
	"github.com/oksasatya/clubhub/internal/domain/entity"
	"github.com/oksasatya/clubhub/internal/domain/repository"
)

const uniqueViolation = "23505"

const userColumns = `id::text, username, email, first_name, last_name, role, department, student_id, year, is_active, last_login, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// wrapError maps pgx errors onto the domain taxonomy.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.ErrUserNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperror.ErrUserExists
	}
	return err
}

// parseID turns a user id into the primary-key type so lookups hit the index.
// Ids that are not UUIDs cannot exist in the table.
func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, apperror.ErrUserNotFound
	}
	return uid, nil
}

func selectColumns(withDigest bool) string {
	if withDigest {
		return userColumns + `, password_hash`
	}
	return userColumns
}

func scanUser(row pgx.Row, withDigest bool) (*entity.User, error) {
	u := &entity.User{}
	var role string
	dest := []any{&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &role,
		&u.Department, &u.StudentID, &u.Year, &u.IsActive, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt}
	if withDigest {
		dest = append(dest, &u.PasswordHash)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, wrapError(err)
	}
	u.Role = entity.Role(role)
	return u, nil
}

// Create relies on the users_email_key / users_username_key constraints for uniqueness.
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, first_name, last_name, role, department, student_id, year, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id::text, created_at, updated_at
	`, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, string(u.Role), u.Department, u.StudentID, u.Year, u.IsActive)

	return wrapError(row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 OR username = $2 LIMIT 1`, email, username)
	return scanUser(row, false)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string, withDigest bool) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns(withDigest)+` FROM users WHERE email = $1`, email)
	return scanUser(row, withDigest)
}

func (r *UserRepository) GetByID(ctx context.Context, id string, withDigest bool) (*entity.User, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns(withDigest)+` FROM users WHERE id = $1`, uid)
	return scanUser(row, withDigest)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id string, patch entity.ProfilePatch) (*entity.User, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	sets := []string{"updated_at = now()"}
	args := []any{uid}
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	add("first_name", patch.FirstName)
	add("last_name", patch.LastName)
	add("department", patch.Department)
	add("year", patch.Year)

	row := r.pool.QueryRow(ctx, `UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = $1 RETURNING `+userColumns, args...)
	return scanUser(row, false)
}

// exec runs an update keyed by id ($1) and reports a missing row as not found.
func (r *UserRepository) exec(ctx context.Context, sql, id string, args ...any) error {
	uid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := r.pool.Exec(ctx, sql, append([]any{uid}, args...)...)
	if err != nil {
		return wrapError(err)
	}
	if res.RowsAffected() == 0 {
		return apperror.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, at.UTC())
}

func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) (*entity.User, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1 RETURNING `+userColumns, uid, active)
	return scanUser(row, false)
}

func (r *UserRepository) SetRole(ctx context.Context, id string, role entity.Role) error {
	return r.exec(ctx, `UPDATE users SET role = $2, updated_at = now() WHERE id = $1`, id, string(role))
}

func (r *UserRepository) Ping(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.pool.Ping(c)
}

var (
	_ repository.UserRepository = (*UserRepository)(nil)
	_ repository.RoleAssigner   = (*UserRepository)(nil)
)
