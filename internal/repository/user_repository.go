package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	sq "github.com/Masterminds/squirrel"

	"github.com/iliyamo/lab-equipment-booking/internal/database"
	"github.com/iliyamo/lab-equipment-booking/internal/model"
)

const usersTable = "users"

var userColumns = []string{"id", "username", "email", "password_hash", "role", "created_at", "updated_at"}

type UserRepo struct{ db *database.DB }

func NewUserRepo(db *database.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts u, assigning its ID and timestamps. The email is stored
// lowercased.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	u.ID = uuid.NewString()
	u.Email = normalizeEmail(u.Email)
	u.CreatedAt, u.UpdatedAt = now, now

	q, args, err := r.db.QB.Insert(usersTable).
		Columns(userColumns...).
		Values(u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(constraint(err, "User already exists"), "insert user")
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.getOne(ctx, sq.Eq{"email": normalizeEmail(email)})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

// Exists reports whether any account uses the email or the username.
func (r *UserRepo) Exists(ctx context.Context, email, username string) (bool, error) {
	q, args, err := r.db.QB.Select("COUNT(*)").
		From(usersTable).
		Where(sq.Or{sq.Eq{"email": normalizeEmail(email)}, sq.Eq{"username": username}}).
		ToSql()
	if err != nil {
		return false, err
	}
	var n int
	if err := r.db.GetContext(ctx, &n, q, args...); err != nil {
		return false, errors.Wrap(err, "count users")
	}
	return n > 0, nil
}

func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	q, args, err := r.db.QB.Select(userColumns...).
		From(usersTable).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, err
	}
	users := []model.User{}
	if err := r.db.SelectContext(ctx, &users, q, args...); err != nil {
		return nil, errors.Wrap(err, "select users")
	}
	return users, nil
}

func (r *UserRepo) getOne(ctx context.Context, where sq.Sqlizer) (model.User, error) {
	q, args, err := r.db.QB.Select(userColumns...).
		From(usersTable).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	var u model.User
	if err := r.db.GetContext(ctx, &u, q, args...); err != nil {
		return model.User{}, notFound(err, "User not found")
	}
	return u, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
