package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/classtrack/classtrack/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func matchRecord(rec attendance.Record, filter *attendance.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if len(filter.IDs) > 0 && !inSlice(rec.ID, filter.IDs) {
		return false
	}
	if filter.UserID != "" && rec.UserID != filter.UserID {
		return false
	}
	if filter.ClassID != "" && rec.ClassID != filter.ClassID {
		return false
	}
	return true
}

// query returns the matching records, oldest first.
func (repo *attendanceRepository) query(filter *attendance.QueryFilter) []attendance.Record {
	recs := make([]attendance.Record, 0)
	for _, rec := range repo.db.attendances {
		if matchRecord(*rec, filter) {
			recs = append(recs, *rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.Before(recs[j].CreatedAt)
		}
		return recs[i].ID < recs[j].ID
	})
	return recs
}

func (repo *attendanceRepository) CreateRecord(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rec.ID = uuid.New().String()
	repo.db.attendances[rec.ID] = &rec
	return rec, nil
}

func (repo *attendanceRepository) QueryRecords(_ context.Context, filter *attendance.QueryFilter) ([]attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(filter), nil
}

func (repo *attendanceRepository) GetRecord(_ context.Context, id string) (attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec, ok := repo.db.attendances[id]; ok {
		return *rec, nil
	}
	return attendance.Record{}, attendance.ErrNotFound
}

func (repo *attendanceRepository) DeleteRecordsByID(_ context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := repo.db.attendances[id]; ok {
			delete(repo.db.attendances, id)
			deleted++
		}
	}
	return deleted, nil
}

func (repo *attendanceRepository) QueryEntries(_ context.Context, filter *attendance.QueryFilter) ([]attendance.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	recs := repo.query(filter)
	entries := make([]attendance.Entry, 0, len(recs))
	for _, rec := range recs {
		usr, okUsr := repo.db.users[rec.UserID]
		cls, okCls := repo.db.classes[rec.ClassID]
		if !okUsr || !okCls {
			continue
		}
		entries = append(entries, attendance.Entry{
			RecordID:  rec.ID,
			UserID:    rec.UserID,
			UserName:  usr.Name,
			ClassID:   rec.ClassID,
			ClassName: cls.Name,
			CreatedAt: rec.CreatedAt,
		})
	}
	return entries, nil
}

func (repo *attendanceRepository) CountRecords(_ context.Context, userID, classID string) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	n := 0
	for _, rec := range repo.db.attendances {
		if rec.UserID == userID && rec.ClassID == classID {
			n++
		}
	}
	return n, nil
}
