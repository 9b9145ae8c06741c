package inmemdb

import (
	"context"
	"sort"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/school"
)

type gradeRepository struct {
	db *DB
}

var _ school.GradeRepository = (*gradeRepository)(nil)

func NewGradeRepository(db *DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, grd school.Grade) (school.Grade, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	grd.ID = repo.db.nextID()
	repo.db.grades[grd.ID] = &grd
	return grd, nil
}

func (repo *gradeRepository) GetGradeByID(ctx context.Context, id int) (school.Grade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if grd, ok := repo.db.grades[id]; ok {
		return *grd, nil
	}
	return school.Grade{}, core.NewNotFoundError(school.EntityGrade, id)
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter school.GradeFilter) ([]school.Grade, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	grades := make([]school.Grade, 0, len(repo.db.grades))
	for _, grd := range repo.db.grades {
		if filter.Match(*grd) {
			grades = append(grades, *grd)
		}
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].ID < grades[j].ID })
	return grades, nil
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, grd school.Grade) (school.Grade, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.grades[grd.ID]; !ok {
		return school.Grade{}, core.NewNotFoundError(school.EntityGrade, grd.ID)
	}
	repo.db.grades[grd.ID] = &grd
	return grd, nil
}

func (repo *gradeRepository) DeleteGradeByID(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.grades[id]; !ok {
		return core.NewNotFoundError(school.EntityGrade, id)
	}
	delete(repo.db.grades, id)
	return nil
}
