package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/school"
	"github.com/tmasula/dnevnik/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to a NotFoundError
func trapNoRowsErr(err error, entity string, id int, msg string) error {
	if err == sql.ErrNoRows {
		return core.NewNotFoundError(entity, id)
	}
	return errors.Wrap(err, msg)
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username string, excludedUsers ...user.User) error {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE username = ?)`
	args := []interface{}{username}
	if len(excludedUsers) > 0 {
		ids := make([]int, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		query = `SELECT EXISTS (SELECT 1 FROM users WHERE username = ? AND id NOT IN (?))`
		var err error
		query, args, err = sqlx.In(query, username, ids)
		if err != nil {
			return errors.Wrap(err, "building uniqueness query")
		}
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	if exists {
		return user.ErrUsernameExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		usr.Username, usr.PasswordHash, usr.Role, usr.CreatedAt, usr.UpdatedAt,
	).Scan(&usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, `SELECT * FROM users WHERE id = $1`, id)
	if err != nil {
		return user.User{}, trapNoRowsErr(err, school.EntityUser, id, "getting user by id")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, `SELECT * FROM users WHERE username = $1`, username)
	if err != nil {
		return user.User{}, trapNoRowsErr(err, school.EntityUser, 0, "getting user by username")
	}
	return usr, nil
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter, ordering core.DBOrdering, paging core.DBPaging) ([]user.User, int, error) {
	where := ""
	args := []interface{}{}
	if filter.Role != "" {
		where = ` WHERE role = $1`
		args = append(args, filter.Role)
	}

	var total int
	if err := repo.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`+where, args...); err != nil {
		return nil, 0, errors.Wrap(err, "counting users")
	}

	// ordering fields are whitelisted by the caller; ids break ties
	orderBy := ` ORDER BY ` + ordering.String() + `, id ASC`

	window := ""
	if paging.Limit > 0 {
		window = ` LIMIT ` + strconv.Itoa(paging.Limit) + ` OFFSET ` + strconv.Itoa(paging.Offset)
	}

	users := []user.User{}
	if err := repo.db.SelectContext(ctx, &users, `SELECT * FROM users`+where+orderBy+window, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering users")
	}
	return users, total, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return user.User{}, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	// read-modify-write; conflicting updates on the same row serialize here
	var orig user.User
	if err = tx.GetContext(ctx, &orig, `SELECT * FROM users WHERE id = $1 FOR UPDATE`, usr.ID); err != nil {
		return user.User{}, trapNoRowsErr(err, school.EntityUser, usr.ID, "locking user row")
	}

	// only save set fields
	if usr.Username != "" {
		orig.Username = usr.Username
	}
	if usr.Role != "" {
		orig.Role = usr.Role
	}
	if usr.PasswordHash != nil {
		orig.PasswordHash = usr.PasswordHash
	}
	orig.UpdatedAt = usr.UpdatedAt

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET username = $1, password_hash = $2, role = $3, updated_at = $4 WHERE id = $5`,
		orig.Username, orig.PasswordHash, orig.Role, orig.UpdatedAt, orig.ID,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if err = tx.Commit(); err != nil {
		return user.User{}, errors.Wrap(err, "committing user update")
	}
	return orig, nil
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	err := repo.db.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash, role, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (username)
		 DO UPDATE SET password_hash = EXCLUDED.password_hash, role = EXCLUDED.role, updated_at = EXCLUDED.updated_at
		 RETURNING id`,
		usr.Username, usr.PasswordHash, usr.Role, usr.CreatedAt, usr.UpdatedAt,
	).Scan(&usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "upserting user")
	}
	return usr, nil
}

func (repo *userRepository) DeleteUserByID(ctx context.Context, id int) error {
	// dependent profiles and grades go with the user via FK actions
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return nil
}
