package inmemdb

import (
	"context"
	"sort"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/school"
)

type studentRepository struct {
	db *DB
}

var _ school.StudentRepository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std school.Student) (school.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	std.ID = repo.db.nextID()
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (school.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return *std, nil
	}
	return school.Student{}, core.NewNotFoundError(school.EntityStudent, id)
}

func (repo *studentRepository) GetStudentByUserID(ctx context.Context, userID int) (school.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, std := range repo.db.students {
		if std.UserID == userID {
			return *std, nil
		}
	}
	return school.Student{}, core.NewNotFoundError(school.EntityStudent, 0)
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]school.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]school.Student, 0, len(repo.db.students))
	for _, std := range repo.db.students {
		students = append(students, *std)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (repo *studentRepository) QueryStudentsByGroupID(ctx context.Context, groupID int) ([]school.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]school.Student, 0)
	for _, std := range repo.db.students {
		if std.GroupID != nil && *std.GroupID == groupID {
			students = append(students, *std)
		}
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std school.Student) (school.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[std.ID]; !ok {
		return school.Student{}, core.NewNotFoundError(school.EntityStudent, std.ID)
	}
	repo.db.students[std.ID] = &std
	return std, nil
}

// DeleteStudentByID removes the student and its dependent grades under a
// single lock; no orphan grades survive.
func (repo *studentRepository) DeleteStudentByID(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[id]; !ok {
		return core.NewNotFoundError(school.EntityStudent, id)
	}
	for gid, grd := range repo.db.grades {
		if grd.StudentID == id {
			delete(repo.db.grades, gid)
		}
	}
	delete(repo.db.students, id)
	return nil
}
