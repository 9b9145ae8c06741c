package user

import (
	"context"
	"errors"
	"time"

	"github.com/tmasula/dnevnik/core"
)

var (
	// errors
	ErrUsernameExists = errors.New("a user with this username already exists")
)

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		GetUserByUsername(ctx context.Context, username string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields and
		// returns the requested window along with the total match count.
		FilterUsers(ctx context.Context, filter QueryFilter, ordering core.DBOrdering, paging core.DBPaging) ([]User, int, error)
		// UpdateUser only persists set fields; zero-valued fields keep their stored value.
		UpdateUser(ctx context.Context, usr User) (User, error)
		UpdateOrCreateUser(ctx context.Context, usr User) (User, error)
		DeleteUserByID(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
		log  core.Logger
	}
)

func NewService(repo Repository, log core.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (svc *Service) checkUniqueness(uname string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(context.Background(), uname, exclUsers...); err != nil {
		if err == ErrUsernameExists {
			return core.NewValidationError(err, core.FieldError{Field: "username", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Username:  nu.Username,
		Role:      nu.Role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByUsername(ctx context.Context, uname string) (User, error) {
	return svc.repo.GetUserByUsername(ctx, core.CleanString(uname, true /* lower */))
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter, ordering core.DBOrdering, paging core.DBPaging) ([]User, int, error) {
	filter.Clean()
	return svc.repo.FilterUsers(ctx, filter, ordering, paging)
}

// Update modifies a stored user. The password, when provided, is hashed here:
// no path may persist it in cleartext.
func (svc *Service) Update(ctx context.Context, id int, uu UpdateUser) (User, error) {
	usr := User{
		ID:        id,
		Username:  uu.Username,
		Role:      uu.Role,
		UpdatedAt: time.Now().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	updated, err := svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	svc.log.Info("user updated", map[string]interface{}{"id": updated.ID, "username": updated.Username, "role": updated.Role})
	return updated, nil
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := svc.repo.DeleteUserByID(ctx, id); err != nil {
		return err
	}
	svc.log.Info("user deleted", map[string]interface{}{"id": usr.ID, "username": usr.Username})
	return nil
}
