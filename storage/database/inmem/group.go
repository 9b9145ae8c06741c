package inmemdb

import (
	"context"
	"sort"

	"github.com/tmasula/dnevnik/core"
	"github.com/tmasula/dnevnik/core/school"
)

type groupRepository struct {
	db *DB
}

var _ school.GroupRepository = (*groupRepository)(nil)

func NewGroupRepository(db *DB) *groupRepository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) CreateGroup(ctx context.Context, grp school.Group) (school.Group, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	grp.ID = repo.db.nextID()
	repo.db.groups[grp.ID] = &grp
	return grp, nil
}

func (repo *groupRepository) GetGroupByID(ctx context.Context, id int) (school.Group, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if grp, ok := repo.db.groups[id]; ok {
		return *grp, nil
	}
	return school.Group{}, core.NewNotFoundError(school.EntityGroup, id)
}

func (repo *groupRepository) QueryAllGroups(ctx context.Context) ([]school.Group, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	groups := make([]school.Group, 0, len(repo.db.groups))
	for _, grp := range repo.db.groups {
		groups = append(groups, *grp)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

func (repo *groupRepository) UpdateGroup(ctx context.Context, grp school.Group) (school.Group, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.groups[grp.ID]; !ok {
		return school.Group{}, core.NewNotFoundError(school.EntityGroup, grp.ID)
	}
	repo.db.groups[grp.ID] = &grp
	return grp, nil
}

func (repo *groupRepository) DeleteGroupByID(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.groups[id]; !ok {
		return core.NewNotFoundError(school.EntityGroup, id)
	}
	for _, std := range repo.db.students {
		if std.GroupID != nil && *std.GroupID == id {
			std.GroupID = nil
		}
	}
	delete(repo.db.groups, id)
	return nil
}
