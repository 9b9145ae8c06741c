package sqlxrepos

import (
	"context"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/school"
)

type gradeRepository struct {
	db *sqlx.DB
}

var _ school.GradeRepository = (*gradeRepository)(nil)

func NewGradeRepository(db *sqlx.DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrade(ctx context.Context, grd school.Grade) (school.Grade, error) {
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO grades (grade, student_id, subject_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		grd.Grade, grd.StudentID, grd.SubjectID, grd.CreatedAt, grd.UpdatedAt,
	).Scan(&grd.ID)
	if err != nil {
		return school.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return grd, nil
}

func (repo *gradeRepository) GetGradeByID(ctx context.Context, id int) (school.Grade, error) {
	var grd school.Grade
	err := repo.db.GetContext(ctx, &grd, `SELECT * FROM grades WHERE id = $1`, id)
	if err != nil {
		return school.Grade{}, trapNoRowsErr(err, school.EntityGrade, id, "getting grade by id")
	}
	return grd, nil
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, filter school.GradeFilter) ([]school.Grade, error) {
	query := `SELECT * FROM grades`
	where := []string{}
	args := []interface{}{}
	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		where = append(where, "student_id = $"+strconv.Itoa(len(args)))
	}
	if filter.SubjectID != nil {
		args = append(args, *filter.SubjectID)
		where = append(where, "subject_id = $"+strconv.Itoa(len(args)))
	}
	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY id ASC"

	grades := []school.Grade{}
	if err := repo.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	return grades, nil
}

func (repo *gradeRepository) UpdateGrade(ctx context.Context, grd school.Grade) (school.Grade, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE grades SET grade = $1, updated_at = $2 WHERE id = $3`,
		grd.Grade, grd.UpdatedAt, grd.ID,
	)
	if err != nil {
		return school.Grade{}, errors.Wrap(err, "updating grade")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Grade{}, core.NewNotFoundError(school.EntityGrade, grd.ID)
	}
	return grd, nil
}

func (repo *gradeRepository) DeleteGradeByID(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM grades WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NewNotFoundError(school.EntityGrade, id)
	}
	return nil
}
