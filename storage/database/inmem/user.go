package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/classtrack/classtrack/core"
	"github.com/classtrack/classtrack/core/user"
)

const sortableTime = "2006-01-02T15:04:05.000000000"

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func userField(usr user.User, name string) (string, bool) {
	switch name {
	case "name":
		return usr.Name, true
	case "email":
		return usr.Email, true
	case "studentID":
		return usr.InstitutionalID, true
	case "role":
		return usr.Role, true
	case "created_at":
		return usr.CreatedAt.Format(sortableTime), true
	case "last_login":
		return usr.LastLogin.Format(sortableTime), true
	}
	return "", false
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, u := range repo.db.users {
		users = append(users, *u)
	}
	return users
}

func (repo *userRepository) CheckUniqueness(_ context.Context, institutionalID, email string, excludedUsers ...user.User) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excluded := make(map[string]bool, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = true
	}

	emailTaken := false
	for _, usr := range repo.db.users {
		if excluded[usr.ID] {
			continue
		}
		if institutionalID != "" && usr.InstitutionalID == institutionalID {
			return user.ErrInstitutionalIDExists
		}
		if usr.Email == email {
			emailTaken = true
		}
	}
	if emailTaken {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr.ID = uuid.New().String()
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	users := make([]user.User, 0, len(repo.db.users))
	for _, usr := range repo.query() {
		if filter == nil || matchUser(usr, filter) {
			users = append(users, usr)
		}
	}
	sortBy(users, ordering, userField,
		func(u user.User) time.Time { return u.CreatedAt },
		func(u user.User) string { return u.ID },
	)
	return users, nil
}

func matchUser(usr user.User, filter *user.QueryFilter) bool {
	if len(filter.IDs) > 0 && !inSlice(usr.ID, filter.IDs) {
		return false
	}
	if filter.Search != "" &&
		!containsFold(usr.Name, filter.Search) &&
		!containsFold(usr.InstitutionalID, filter.Search) &&
		!containsFold(usr.Email, filter.Search) {
		return false
	}
	if len(filter.Roles) > 0 && !inSlice(usr.Role, filter.Roles) {
		return false
	}
	if filter.Name != "" && !containsFold(usr.Name, filter.Name) {
		return false
	}
	if filter.Email != "" && usr.Email != filter.Email {
		return false
	}
	if filter.InstitutionalID != "" && usr.InstitutionalID != filter.InstitutionalID {
		return false
	}
	if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
		return false
	}
	return true
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if usr, ok := repo.db.users[filter.ID]; ok {
			return *usr, nil
		}
		return user.User{}, user.ErrNotFound
	}

	var match func(usr *user.User) bool
	switch {
	case filter.Email != "":
		match = func(usr *user.User) bool { return usr.Email == filter.Email }
	case filter.InstitutionalID != "":
		match = func(usr *user.User) bool { return usr.InstitutionalID == filter.InstitutionalID }
	case filter.EmailOrInstitutionalID != "":
		email := core.CleanString(filter.EmailOrInstitutionalID, true /* lower */)
		for _, usr := range repo.db.users {
			if usr.Email == email {
				return *usr, nil
			}
		}
		match = func(usr *user.User) bool { return usr.InstitutionalID == filter.EmailOrInstitutionalID }
	default:
		return user.User{}, user.ErrNotFound
	}

	for _, usr := range repo.db.users {
		if match(usr) {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.users[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

// DeleteUsersByID also deletes the users' attendances and unassigns them from their classes.
func (repo *userRepository) DeleteUsersByID(_ context.Context, ids ...string) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	deleted := 0
	for _, id := range ids {
		if _, ok := repo.db.users[id]; !ok {
			continue
		}
		delete(repo.db.users, id)
		deleted++

		for recID, rec := range repo.db.attendances {
			if rec.UserID == id {
				delete(repo.db.attendances, recID)
			}
		}
		for _, cls := range repo.db.classes {
			if cls.TeacherID == id {
				cls.TeacherID = ""
			}
		}
	}
	return deleted, nil
}
