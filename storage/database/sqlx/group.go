package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/school"
)

type groupRepository struct {
	db *sqlx.DB
}

var _ school.GroupRepository = (*groupRepository)(nil)

func NewGroupRepository(db *sqlx.DB) *groupRepository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) CreateGroup(ctx context.Context, grp school.Group) (school.Group, error) {
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO "groups" (name, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id`,
		grp.Name, grp.CreatedAt, grp.UpdatedAt,
	).Scan(&grp.ID)
	if err != nil {
		return school.Group{}, errors.Wrap(err, "inserting group")
	}
	return grp, nil
}

func (repo *groupRepository) GetGroupByID(ctx context.Context, id int) (school.Group, error) {
	var grp school.Group
	err := repo.db.GetContext(ctx, &grp, `SELECT * FROM "groups" WHERE id = $1`, id)
	if err != nil {
		return school.Group{}, trapNoRowsErr(err, school.EntityGroup, id, "getting group by id")
	}
	return grp, nil
}

func (repo *groupRepository) QueryAllGroups(ctx context.Context) ([]school.Group, error) {
	groups := []school.Group{}
	if err := repo.db.SelectContext(ctx, &groups, `SELECT * FROM "groups" ORDER BY id ASC`); err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	return groups, nil
}

func (repo *groupRepository) UpdateGroup(ctx context.Context, grp school.Group) (school.Group, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE "groups" SET name = $1, updated_at = $2 WHERE id = $3`,
		grp.Name, grp.UpdatedAt, grp.ID,
	)
	if err != nil {
		return school.Group{}, errors.Wrap(err, "updating group")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return school.Group{}, core.NewNotFoundError(school.EntityGroup, grp.ID)
	}
	return grp, nil
}

func (repo *groupRepository) DeleteGroupByID(ctx context.Context, id int) error {
	// member students fall back to no group via ON DELETE SET NULL
	res, err := repo.db.ExecContext(ctx, `DELETE FROM "groups" WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting group")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NewNotFoundError(school.EntityGroup, id)
	}
	return nil
}
