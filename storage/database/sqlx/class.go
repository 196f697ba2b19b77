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
	"github.com/classtrack/classtrack/core/class"
)

type (
	classRepository struct {
		baseRepository
	}

	classRow struct {
		ID          string      `db:"id"`
		Name        string      `db:"name"`
		Schedule    string      `db:"schedule"`
		Description string      `db:"description"`
		TeacherID   null.String `db:"teacher_id"`
		MaxAbsences int         `db:"max_absences"`
		CreatedAt   time.Time   `db:"created_at"`
		UpdatedAt   time.Time   `db:"updated_at"`
	}
)

var _ class.Repository = (*classRepository)(nil) // interface compliance check

const classColumns = "id, name, schedule, description, teacher_id, max_absences, created_at, updated_at"

var classOrderCols = map[string]string{
	"name":         "name",
	"schedule":     "schedule",
	"max_absences": "max_absences",
	"created_at":   "created_at",
}

func NewClassRepository(exec core.DBExecutor) *classRepository {
	return &classRepository{baseRepository{exec: exec}}
}

func (repo classRepository) boil(cls class.Class) classRow {
	return classRow{
		ID:          cls.ID,
		Name:        cls.Name,
		Schedule:    cls.Schedule,
		Description: cls.Description,
		TeacherID:   null.NewString(cls.TeacherID, cls.TeacherID != ""),
		MaxAbsences: cls.MaxAbsences,
		CreatedAt:   cls.CreatedAt.UTC(),
		UpdatedAt:   cls.UpdatedAt.UTC(),
	}
}

func (repo classRepository) unboil(row classRow) class.Class {
	return class.Class{
		ID:          row.ID,
		Name:        row.Name,
		Schedule:    row.Schedule,
		Description: row.Description,
		TeacherID:   row.TeacherID.String,
		MaxAbsences: row.MaxAbsences,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

func (repo classRepository) CreateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	cls.ID = uuid.New().String()
	row := repo.boil(cls)
	q := `INSERT INTO classes (` + classColumns + `)
		VALUES (:id, :name, :schedule, :description, :teacher_id, :max_absences, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.exec, q, row); err != nil {
		return class.Class{}, errors.Wrap(err, "inserting class")
	}
	return repo.unboil(row), nil
}

func (repo classRepository) QueryClasses(ctx context.Context, filter *class.QueryFilter, ordering []core.DBOrdering) ([]class.Class, error) {
	where := &whereClause{}
	if filter != nil {
		if len(filter.IDs) > 0 {
			where.addIn("id IN (?)", filter.IDs)
		}
		if filter.TeacherID != "" {
			where.add("teacher_id = ?", filter.TeacherID)
		}
		if filter.Name != "" {
			where.add(`LOWER(name) LIKE ? ESCAPE '\'`, likeContains(filter.Name))
		}
		if filter.Search != "" {
			s := likeContains(filter.Search)
			where.add(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(schedule) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, s, s, s)
		}
	}
	if where.err != nil {
		return nil, errors.Wrap(where.err, "building classes query")
	}

	var rows []classRow
	q := repo.exec.Rebind("SELECT " + classColumns + " FROM classes" + where.String() + orderBy(ordering, classOrderCols, "created_at ASC, id ASC"))
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, where.args...); err != nil {
		return nil, errors.Wrap(err, "selecting classes")
	}
	classes := make([]class.Class, 0, len(rows))
	for _, row := range rows {
		classes = append(classes, repo.unboil(row))
	}
	return classes, nil
}

func (repo classRepository) GetClass(ctx context.Context, id string) (class.Class, error) {
	var row classRow
	q := repo.exec.Rebind("SELECT " + classColumns + " FROM classes WHERE id = ?")
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return class.Class{}, class.ErrNotFound
		}
		return class.Class{}, errors.Wrap(err, "selecting class")
	}
	return repo.unboil(row), nil
}

func (repo classRepository) UpdateClass(ctx context.Context, cls class.Class) (class.Class, error) {
	row := repo.boil(cls)
	q := `UPDATE classes SET name = :name, schedule = :schedule, description = :description,
		teacher_id = :teacher_id, max_absences = :max_absences, updated_at = :updated_at
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.exec, q, row)
	if err != nil {
		return class.Class{}, errors.Wrap(err, "updating class")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return class.Class{}, class.ErrNotFound
	}
	return repo.GetClass(ctx, cls.ID)
}

func (repo classRepository) DeleteClassesByID(ctx context.Context, ids ...string) (int, error) {
	where := &whereClause{}
	where.addIn("id IN (?)", ids)
	if where.err != nil {
		return 0, errors.Wrap(where.err, "deleting classes")
	}
	res, err := repo.exec.ExecContext(ctx, repo.exec.Rebind("DELETE FROM classes"+where.String()), where.args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting classes")
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "deleting classes")
}
