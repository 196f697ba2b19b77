package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/attendance"
)

type (
	attendanceRepository struct {
		baseRepository
	}

	attendanceRow struct {
		ID        string    `db:"id"`
		UserID    string    `db:"user_id"`
		ClassID   string    `db:"class_id"`
		CreatedAt time.Time `db:"created_at"`
	}

	entryRow struct {
		RecordID  string    `db:"record_id"`
		UserID    string    `db:"user_id"`
		UserName  string    `db:"user_name"`
		ClassID   string    `db:"class_id"`
		ClassName string    `db:"class_name"`
		CreatedAt time.Time `db:"created_at"`
	}
)

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(exec core.DBExecutor) *attendanceRepository {
	return &attendanceRepository{baseRepository{exec: exec}}
}

func (repo attendanceRepository) unboil(row attendanceRow) attendance.Record {
	return attendance.Record{
		ID:        row.ID,
		UserID:    row.UserID,
		ClassID:   row.ClassID,
		CreatedAt: row.CreatedAt.UTC(),
	}
}

func (repo attendanceRepository) where(filter *attendance.QueryFilter, prefix string) *whereClause {
	where := &whereClause{}
	if filter == nil {
		return where
	}
	if len(filter.IDs) > 0 {
		where.addIn(prefix+"id IN (?)", filter.IDs)
	}
	if filter.UserID != "" {
		where.add(prefix+"user_id = ?", filter.UserID)
	}
	if filter.ClassID != "" {
		where.add(prefix+"class_id = ?", filter.ClassID)
	}
	return where
}

func (repo attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	row := attendanceRow{
		ID:        uuid.New().String(),
		UserID:    rec.UserID,
		ClassID:   rec.ClassID,
		CreatedAt: rec.CreatedAt.UTC(),
	}
	q := "INSERT INTO attendances (id, user_id, class_id, created_at) VALUES (:id, :user_id, :class_id, :created_at)"
	if _, err := sqlx.NamedExecContext(ctx, repo.exec, q, row); err != nil {
		return attendance.Record{}, errors.Wrap(err, "inserting attendance")
	}
	return repo.unboil(row), nil
}

func (repo attendanceRepository) QueryRecords(ctx context.Context, filter *attendance.QueryFilter) ([]attendance.Record, error) {
	where := repo.where(filter, "")
	if where.err != nil {
		return nil, errors.Wrap(where.err, "building attendances query")
	}

	var rows []attendanceRow
	q := repo.exec.Rebind("SELECT id, user_id, class_id, created_at FROM attendances" + where.String() + " ORDER BY created_at ASC, id ASC")
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, where.args...); err != nil {
		return nil, errors.Wrap(err, "selecting attendances")
	}
	recs := make([]attendance.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, repo.unboil(row))
	}
	return recs, nil
}

func (repo attendanceRepository) GetRecord(ctx context.Context, id string) (attendance.Record, error) {
	var row attendanceRow
	q := repo.exec.Rebind("SELECT id, user_id, class_id, created_at FROM attendances WHERE id = ?")
	if err := sqlx.GetContext(ctx, repo.exec, &row, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return attendance.Record{}, attendance.ErrNotFound
		}
		return attendance.Record{}, errors.Wrap(err, "selecting attendance")
	}
	return repo.unboil(row), nil
}

func (repo attendanceRepository) DeleteRecordsByID(ctx context.Context, ids ...string) (int, error) {
	where := &whereClause{}
	where.addIn("id IN (?)", ids)
	if where.err != nil {
		return 0, errors.Wrap(where.err, "deleting attendances")
	}
	res, err := repo.exec.ExecContext(ctx, repo.exec.Rebind("DELETE FROM attendances"+where.String()), where.args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting attendances")
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "deleting attendances")
}

func (repo attendanceRepository) QueryEntries(ctx context.Context, filter *attendance.QueryFilter) ([]attendance.Entry, error) {
	where := repo.where(filter, "a.")
	if where.err != nil {
		return nil, errors.Wrap(where.err, "building entries query")
	}

	var rows []entryRow
	q := repo.exec.Rebind(`SELECT a.id AS record_id, a.user_id, u.name AS user_name, a.class_id, c.name AS class_name, a.created_at
		FROM attendances a
		JOIN users u ON u.id = a.user_id
		JOIN classes c ON c.id = a.class_id` + where.String() + " ORDER BY a.created_at ASC, a.id ASC")
	if err := sqlx.SelectContext(ctx, repo.exec, &rows, q, where.args...); err != nil {
		return nil, errors.Wrap(err, "selecting attendance entries")
	}
	entries := make([]attendance.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, attendance.Entry{
			RecordID:  row.RecordID,
			UserID:    row.UserID,
			UserName:  row.UserName,
			ClassID:   row.ClassID,
			ClassName: row.ClassName,
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return entries, nil
}

func (repo attendanceRepository) CountRecords(ctx context.Context, userID, classID string) (int, error) {
	var n int
	q := repo.exec.Rebind("SELECT COUNT(*) FROM attendances WHERE user_id = ? AND class_id = ?")
	if err := sqlx.GetContext(ctx, repo.exec, &n, q, userID, classID); err != nil {
		return 0, errors.Wrap(err, "counting attendances")
	}
	return n, nil
}
