package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/school"
)

type subjectRepository struct {
	db *sqlx.DB
}

var _ school.SubjectRepository = (*subjectRepository)(nil)

func NewSubjectRepository(db *sqlx.DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, sub school.Subject) (school.Subject, error) {
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO subjects (name, teacher_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		sub.Name, sub.TeacherID, sub.CreatedAt, sub.UpdatedAt,
	).Scan(&sub.ID)
	if err != nil {
		return school.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo *subjectRepository) GetSubjectByID(ctx context.Context, id int) (school.Subject, error) {
	var sub school.Subject
	err := repo.db.GetContext(ctx, &sub, `SELECT * FROM subjects WHERE id = $1`, id)
	if err != nil {
		return school.Subject{}, trapNoRowsErr(err, school.EntitySubject, id, "getting subject by id")
	}
	return sub, nil
}

func (repo *subjectRepository) QueryAllSubjects(ctx context.Context) ([]school.Subject, error) {
	subjects := []school.Subject{}
	if err := repo.db.SelectContext(ctx, &subjects, `SELECT * FROM subjects ORDER BY id ASC`); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return subjects, nil
}

func (repo *subjectRepository) QuerySubjectsByTeacherID(ctx context.Context, teacherID int) ([]school.Subject, error) {
	subjects := []school.Subject{}
	if err := repo.db.SelectContext(ctx, &subjects, `SELECT * FROM subjects WHERE teacher_id = $1 ORDER BY id ASC`, teacherID); err != nil {
		return nil, errors.Wrap(err, "querying subjects by teacher")
	}
	return subjects, nil
}

func (repo *subjectRepository) UpdateSubject(ctx context.Context, sub school.Subject) (school.Subject, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE subjects SET name = $1, teacher_id = $2, updated_at = $3 WHERE id = $4`,
		sub.Name, sub.TeacherID, sub.UpdatedAt, sub.ID,
	)
	if err != nil {
		return school.Subject{}, errors.Wrap(err, "updating subject")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Subject{}, core.NewNotFoundError(school.EntitySubject, sub.ID)
	}
	return sub, nil
}

func (repo *subjectRepository) DeleteSubjectByID(ctx context.Context, id int) error {
	// dependent grades go with the subject via ON DELETE CASCADE
	res, err := repo.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NewNotFoundError(school.EntitySubject, id)
	}
	return nil
}
