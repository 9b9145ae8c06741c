package inmemdb

import (
	"context"
	"sort"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/school"
	"github.com/tmasula/dnevnik/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

// query returns a snapshot of all users; callers must hold at least the read lock.
func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, u := range repo.db.users {
		users = append(users, *u)
	}
	return users
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username string, excludedUsers ...user.User) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.query() {
		if usr.Username != username {
			continue
		}
		if isExcluded(usr, excludedUsers) {
			continue
		}
		return user.ErrUsernameExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr.ID = repo.db.nextID()
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, core.NewNotFoundError(school.EntityUser, id)
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.query() {
		if usr.Username == username {
			return usr, nil
		}
	}
	return user.User{}, core.NewNotFoundError(school.EntityUser, 0)
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, ordering core.DBOrdering, paging core.DBPaging) ([]user.User, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]user.User, 0, len(repo.db.users))
	for _, usr := range repo.query() {
		if filter.Role != "" && usr.Role != filter.Role {
			continue
		}
		matches = append(matches, usr)
	}

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if !ordering.Ascending {
			a, b = b, a
		}
		switch ordering.Field {
		case "username":
			if a.Username != b.Username {
				return a.Username < b.Username
			}
		default: // created_at
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	})

	total := len(matches)
	if paging.Limit > 0 {
		if paging.Offset >= total {
			return []user.User{}, total, nil
		}
		end := paging.Offset + paging.Limit
		if end > total {
			end = total
		}
		matches = matches[paging.Offset:end]
	}
	return matches, total, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// only save set fields
	origUsr, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, core.NewNotFoundError(school.EntityUser, usr.ID)
	}
	if usr.Username != "" {
		origUsr.Username = usr.Username
	}
	if usr.Role != "" {
		origUsr.Role = usr.Role
	}
	if usr.PasswordHash != nil {
		origUsr.PasswordHash = usr.PasswordHash
	}
	origUsr.UpdatedAt = usr.UpdatedAt

	repo.db.users[usr.ID] = origUsr
	return *origUsr, nil
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.users {
		if existing.Username == usr.Username {
			existing.Role = usr.Role
			existing.PasswordHash = usr.PasswordHash
			existing.UpdatedAt = usr.UpdatedAt
			return *existing, nil
		}
	}
	usr.ID = repo.db.nextID()
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

// DeleteUserByID removes the user along with its student profile (and that
// student's grades) and teacher profile (unlinking the teacher's subjects),
// all under a single lock.
func (repo *userRepository) DeleteUserByID(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for sid, std := range repo.db.students {
		if std.UserID != id {
			continue
		}
		for gid, grd := range repo.db.grades {
			if grd.StudentID == sid {
				delete(repo.db.grades, gid)
			}
		}
		delete(repo.db.students, sid)
	}
	for tid, tch := range repo.db.teachers {
		if tch.UserID != id {
			continue
		}
		for _, sub := range repo.db.subjects {
			if sub.TeacherID != nil && *sub.TeacherID == tid {
				sub.TeacherID = nil
			}
		}
		delete(repo.db.teachers, tid)
	}
	delete(repo.db.users, id)
	return nil
}

func isExcluded(usr user.User, excludedUsers []user.User) bool {
	for _, excl := range excludedUsers {
		if excl.ID == usr.ID {
			return true
		}
	}
	return false
}
