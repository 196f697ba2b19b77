package inmemdb

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/class"
)

type classRepository struct {
	db *DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) *classRepository {
	return &classRepository{db: db}
}

func classField(cls class.Class, name string) (string, bool) {
	switch name {
	case "name":
		return cls.Name, true
	case "schedule":
		return cls.Schedule, true
	case "created_at":
		return cls.CreatedAt.Format(sortableTime), true
	case "max_absences":
		return strconv.Itoa(cls.MaxAbsences), true
	}
	return "", false
}

func (repo *classRepository) CreateClass(_ context.Context, cls class.Class) (class.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	cls.ID = uuid.New().String()
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

func (repo *classRepository) QueryClasses(_ context.Context, filter *class.QueryFilter, ordering []core.DBOrdering) ([]class.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	classes := make([]class.Class, 0, len(repo.db.classes))
	for _, cls := range repo.db.classes {
		if filter == nil || matchClass(*cls, filter) {
			classes = append(classes, *cls)
		}
	}
	sortBy(classes, ordering, classField,
		func(c class.Class) time.Time { return c.CreatedAt },
		func(c class.Class) string { return c.ID },
	)
	return classes, nil
}

func matchClass(cls class.Class, filter *class.QueryFilter) bool {
	if len(filter.IDs) > 0 && !inSlice(cls.ID, filter.IDs) {
		return false
	}
	if filter.TeacherID != "" && cls.TeacherID != filter.TeacherID {
		return false
	}
	if filter.Name != "" && !containsFold(cls.Name, filter.Name) {
		return false
	}
	if filter.Search != "" &&
		!containsFold(cls.Name, filter.Search) &&
		!containsFold(cls.Schedule, filter.Search) &&
		!containsFold(cls.Description, filter.Search) {
		return false
	}
	return true
}

func (repo *classRepository) GetClass(_ context.Context, id string) (class.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if cls, ok := repo.db.classes[id]; ok {
		return *cls, nil
	}
	return class.Class{}, class.ErrNotFound
}

func (repo *classRepository) UpdateClass(_ context.Context, cls class.Class) (class.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.classes[cls.ID]; !ok {
		return class.Class{}, class.ErrNotFound
	}
	repo.db.classes[cls.ID] = &cls
	return cls, nil
}

// DeleteClassesByID also deletes the classes' attendances.
func (repo *classRepository) DeleteClassesByID(_ context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := repo.db.classes[id]; !ok {
			continue
		}
		delete(repo.db.classes, id)
		deleted++

		for recID, rec := range repo.db.attendances {
			if rec.ClassID == id {
				delete(repo.db.attendances, recID)
			}
		}
	}
	return deleted, nil
}
