package inmemdb

import (
	"context"
	"sort"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/school"
)

type teacherRepository struct {
	db *DB
}

var _ school.TeacherRepository = (*teacherRepository)(nil)

func NewTeacherRepository(db *DB) *teacherRepository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, tch school.Teacher) (school.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	tch.ID = repo.db.nextID()
	repo.db.teachers[tch.ID] = &tch
	return tch, nil
}

func (repo *teacherRepository) GetTeacherByID(ctx context.Context, id int) (school.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if tch, ok := repo.db.teachers[id]; ok {
		return *tch, nil
	}
	return school.Teacher{}, core.NewNotFoundError(school.EntityTeacher, id)
}

func (repo *teacherRepository) GetTeacherByUserID(ctx context.Context, userID int) (school.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, tch := range repo.db.teachers {
		if tch.UserID == userID {
			return *tch, nil
		}
	}
	return school.Teacher{}, core.NewNotFoundError(school.EntityTeacher, 0)
}

func (repo *teacherRepository) QueryAllTeachers(ctx context.Context) ([]school.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	teachers := make([]school.Teacher, 0, len(repo.db.teachers))
	for _, tch := range repo.db.teachers {
		teachers = append(teachers, *tch)
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].ID < teachers[j].ID })
	return teachers, nil
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, tch school.Teacher) (school.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.teachers[tch.ID]; !ok {
		return school.Teacher{}, core.NewNotFoundError(school.EntityTeacher, tch.ID)
	}
	repo.db.teachers[tch.ID] = &tch
	return tch, nil
}

// DeleteTeacherByID unlinks the teacher's subjects before removing the teacher.
func (repo *teacherRepository) DeleteTeacherByID(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.teachers[id]; !ok {
		return core.NewNotFoundError(school.EntityTeacher, id)
	}
	for _, sub := range repo.db.subjects {
		if sub.TeacherID != nil && *sub.TeacherID == id {
			sub.TeacherID = nil
		}
	}
	delete(repo.db.teachers, id)
	return nil
}
