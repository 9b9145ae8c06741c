package inmemdb

import (
	"context"
	"sort"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/school"
)

type subjectRepository struct {
	db *DB
}

var _ school.SubjectRepository = (*subjectRepository)(nil)

func NewSubjectRepository(db *DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, sub school.Subject) (school.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	sub.ID = repo.db.nextID()
	repo.db.subjects[sub.ID] = &sub
	return sub, nil
}

func (repo *subjectRepository) GetSubjectByID(ctx context.Context, id int) (school.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sub, ok := repo.db.subjects[id]; ok {
		return *sub, nil
	}
	return school.Subject{}, core.NewNotFoundError(school.EntitySubject, id)
}

func (repo *subjectRepository) QueryAllSubjects(ctx context.Context) ([]school.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subjects := make([]school.Subject, 0, len(repo.db.subjects))
	for _, sub := range repo.db.subjects {
		subjects = append(subjects, *sub)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].ID < subjects[j].ID })
	return subjects, nil
}

func (repo *subjectRepository) QuerySubjectsByTeacherID(ctx context.Context, teacherID int) ([]school.Subject, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	subjects := make([]school.Subject, 0)
	for _, sub := range repo.db.subjects {
		if sub.TeacherID != nil && *sub.TeacherID == teacherID {
			subjects = append(subjects, *sub)
		}
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].ID < subjects[j].ID })
	return subjects, nil
}

func (repo *subjectRepository) UpdateSubject(ctx context.Context, sub school.Subject) (school.Subject, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.subjects[sub.ID]; !ok {
		return school.Subject{}, core.NewNotFoundError(school.EntitySubject, sub.ID)
	}
	repo.db.subjects[sub.ID] = &sub
	return sub, nil
}

// DeleteSubjectByID removes the subject and its dependent grades under a
// single lock; no orphan grades survive.
func (repo *subjectRepository) DeleteSubjectByID(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.subjects[id]; !ok {
		return core.NewNotFoundError(school.EntitySubject, id)
	}
	for gid, grd := range repo.db.grades {
		if grd.SubjectID == id {
			delete(repo.db.grades, gid)
		}
	}
	delete(repo.db.subjects, id)
	return nil
}
