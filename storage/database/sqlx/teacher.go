package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/school"
)

type teacherRepository struct {
	db *sqlx.DB
}

var _ school.TeacherRepository = (*teacherRepository)(nil)

func NewTeacherRepository(db *sqlx.DB) *teacherRepository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, tch school.Teacher) (school.Teacher, error) {
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO teachers (name, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		tch.Name, tch.UserID, tch.CreatedAt, tch.UpdatedAt,
	).Scan(&tch.ID)
	if err != nil {
		return school.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return tch, nil
}

func (repo *teacherRepository) GetTeacherByID(ctx context.Context, id int) (school.Teacher, error) {
	var tch school.Teacher
	err := repo.db.GetContext(ctx, &tch, `SELECT * FROM teachers WHERE id = $1`, id)
	if err != nil {
		return school.Teacher{}, trapNoRowsErr(err, school.EntityTeacher, id, "getting teacher by id")
	}
	return tch, nil
}

func (repo *teacherRepository) GetTeacherByUserID(ctx context.Context, userID int) (school.Teacher, error) {
	var tch school.Teacher
	err := repo.db.GetContext(ctx, &tch, `SELECT * FROM teachers WHERE user_id = $1 ORDER BY id ASC LIMIT 1`, userID)
	if err != nil {
		return school.Teacher{}, trapNoRowsErr(err, school.EntityTeacher, 0, "getting teacher by user id")
	}
	return tch, nil
}

func (repo *teacherRepository) QueryAllTeachers(ctx context.Context) ([]school.Teacher, error) {
	teachers := []school.Teacher{}
	if err := repo.db.SelectContext(ctx, &teachers, `SELECT * FROM teachers ORDER BY id ASC`); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	return teachers, nil
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, tch school.Teacher) (school.Teacher, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE teachers SET name = $1, user_id = $2, updated_at = $3 WHERE id = $4`,
		tch.Name, tch.UserID, tch.UpdatedAt, tch.ID,
	)
	if err != nil {
		return school.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Teacher{}, core.NewNotFoundError(school.EntityTeacher, tch.ID)
	}
	return tch, nil
}

func (repo *teacherRepository) DeleteTeacherByID(ctx context.Context, id int) error {
	// owned subjects fall back to no teacher via ON DELETE SET NULL
	res, err := repo.db.ExecContext(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NewNotFoundError(school.EntityTeacher, id)
	}
	return nil
}
