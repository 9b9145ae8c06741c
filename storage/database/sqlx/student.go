package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/school"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ school.StudentRepository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std school.Student) (school.Student, error) {
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO students (name, group_id, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		std.Name, std.GroupID, std.UserID, std.CreatedAt, std.UpdatedAt,
	).Scan(&std.ID)
	if err != nil {
		return school.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (school.Student, error) {
	var std school.Student
	err := repo.db.GetContext(ctx, &std, `SELECT * FROM students WHERE id = $1`, id)
	if err != nil {
		return school.Student{}, trapNoRowsErr(err, school.EntityStudent, id, "getting student by id")
	}
	return std, nil
}

func (repo *studentRepository) GetStudentByUserID(ctx context.Context, userID int) (school.Student, error) {
	var std school.Student
	err := repo.db.GetContext(ctx, &std, `SELECT * FROM students WHERE user_id = $1`, userID)
	if err != nil {
		return school.Student{}, trapNoRowsErr(err, school.EntityStudent, 0, "getting student by user id")
	}
	return std, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]school.Student, error) {
	students := []school.Student{}
	if err := repo.db.SelectContext(ctx, &students, `SELECT * FROM students ORDER BY id ASC`); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (repo *studentRepository) QueryStudentsByGroupID(ctx context.Context, groupID int) ([]school.Student, error) {
	students := []school.Student{}
	if err := repo.db.SelectContext(ctx, &students, `SELECT * FROM students WHERE group_id = $1 ORDER BY id ASC`, groupID); err != nil {
		return nil, errors.Wrap(err, "querying students by group")
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std school.Student) (school.Student, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE students SET name = $1, group_id = $2, user_id = $3, updated_at = $4 WHERE id = $5`,
		std.Name, std.GroupID, std.UserID, std.UpdatedAt, std.ID,
	)
	if err != nil {
		return school.Student{}, errors.Wrap(err, "updating student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Student{}, core.NewNotFoundError(school.EntityStudent, std.ID)
	}
	return std, nil
}

func (repo *studentRepository) DeleteStudentByID(ctx context.Context, id int) error {
	// dependent grades go with the student via ON DELETE CASCADE
	res, err := repo.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting student")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NewNotFoundError(school.EntityStudent, id)
	}
	return nil
}
