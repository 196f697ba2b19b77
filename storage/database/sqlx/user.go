package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/user"
)

type (
	userRepository struct {
		baseRepository
	}

	userRow struct {
		ID           string      `db:"id"`
		Name         string      `db:"name"`
		StudentID    null.String `db:"student_id"`
		Email        string      `db:"email"`
		Role         string      `db:"role"`
		IsActive     bool        `db:"is_active"`
		PasswordHash string      `db:"password_hash"`
		CreatedAt    time.Time   `db:"created_at"`
		UpdatedAt    time.Time   `db:"updated_at"`
		LastLogin    null.Time   `db:"last_login"`
	}
)

var _ user.Repository = (*userRepository)(nil) // interface compliance check

const userColumns = "id, name, student_id, email, role, is_active, password_hash, created_at, updated_at, last_login"

var userOrderCols = map[string]string{
	"name":       "name",
	"email":      "email",
	"studentID":  "student_id",
	"role":       "role",
	"created_at": "created_at",
	"last_login": "last_login",
}

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{baseRepository{exec: exec}}
}

func (repo userRepository) boil(usr user.User) userRow {
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		StudentID:    null.NewString(usr.InstitutionalID, usr.InstitutionalID != ""),
		Email:        usr.Email,
		Role:         usr.Role,
		IsActive:     usr.IsActive,
		PasswordHash: string(usr.PasswordHash),
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (repo userRepository) unboil(row userRow) user.User {
	return user.User{
		ID:              row.ID,
		Name:            row.Name,
		InstitutionalID: row.StudentID.String,
		Email:           row.Email,
		Role:            row.Role,
		IsActive:        row.IsActive,
		PasswordHash:    []byte(row.PasswordHash),
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
		LastLogin:       row.LastLogin.Time.UTC(),
	}
}

func (repo userRepository) unboilSlice(rows []userRow) []user.User {
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, repo.unboil(row))
	}
	return users
}

// trapNoRowsErr maps sql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckUniqueness(ctx context.Context, institutionalID, email string, excludedUsers ...user.User) error {
	where := &whereClause{}
	if institutionalID != "" {
		where.add("(email = ? OR student_id = ?)", email, institutionalID)
	} else {
		where.add("email = ?", email)
	}
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		where.addIn("id NOT IN (?)", ids)
	}
	if where.err != nil {
		return errors.Wrap(where.err, "checking user uniqueness")
	}

	var rows []userRow
	q := repo.exec.Rebind("SELECT " + userColumns + " FROM users" + where.String())
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, where.args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, row := range rows {
		if institutionalID != "" && row.StudentID.String == institutionalID {
			return user.ErrInstitutionalIDExists
		}
	}
	if len(rows) > 0 {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	row := repo.boil(usr)
	q := `INSERT INTO users (` + userColumns + `)
		VALUES (:id, :name, :student_id, :email, :role, :is_active, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := sqlx.NamedExecContext(ctx, repo.exec, q, row); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return repo.unboil(row), nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	where := &whereClause{}
	if filter != nil && !filter.IsEmpty() {
		if len(filter.IDs) > 0 {
			where.addIn("id IN (?)", filter.IDs)
		}
		if filter.Search != "" {
			s := likeContains(filter.Search)
			where.add(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(student_id) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\')`, s, s, s)
		}
		if len(filter.Roles) > 0 {
			where.addIn("role IN (?)", filter.Roles)
		}
		if filter.Name != "" {
			where.add(`LOWER(name) LIKE ? ESCAPE '\'`, likeContains(filter.Name))
		}
		if filter.Email != "" {
			where.add("email = ?", filter.Email)
		}
		if filter.InstitutionalID != "" {
			where.add("student_id = ?", filter.InstitutionalID)
		}
		if filter.IsActive != nil {
			where.add("is_active = ?", *filter.IsActive)
		}
	}
	if where.err != nil {
		return nil, errors.Wrap(where.err, "building users query")
	}

	var rows []userRow
	q := repo.exec.Rebind("SELECT " + userColumns + " FROM users" + where.String() + orderBy(ordering, userOrderCols, "created_at ASC, id ASC"))
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, where.args...); err != nil {
		return nil, errors.Wrap(err, "selecting users")
	}
	return repo.unboilSlice(rows), nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var (
		cond  string
		args  []interface{}
		order string
	)
	switch {
	case filter.ID != "":
		cond, args = "id = ?", []interface{}{filter.ID}
	case filter.Email != "":
		cond, args = "email = ?", []interface{}{filter.Email}
	case filter.InstitutionalID != "":
		cond, args = "student_id = ?", []interface{}{filter.InstitutionalID}
	case filter.EmailOrInstitutionalID != "":
		email := core.CleanString(filter.EmailOrInstitutionalID, true /* lower */)
		cond = "(email = ? OR student_id = ?)"
		args = []interface{}{email, filter.EmailOrInstitutionalID, email}
		order = " ORDER BY CASE WHEN email = ? THEN 0 ELSE 1 END"
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	q := repo.exec.Rebind("SELECT " + userColumns + " FROM users WHERE " + cond + order + " LIMIT 1")
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "selecting user")
	}
	return repo.unboil(row), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	row := repo.boil(usr)
	q := `UPDATE users SET name = :name, student_id = :student_id, email = :email, role = :role,
		is_active = :is_active, password_hash = :password_hash, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.exec, q, row)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids ...string) (int, error) {
	where := &whereClause{}
	where.addIn("id IN (?)", ids)
	if where.err != nil {
		return 0, errors.Wrap(where.err, "deleting users")
	}
	res, err := repo.exec.ExecContext(ctx, repo.exec.Rebind("DELETE FROM users"+where.String()), where.args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "deleting users")
}
