package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/devShreyas21/studentPortal/core"
	"github.com/devShreyas21/studentPortal/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) emailTaken(email string, exclID int64) bool {
	for _, usr := range repo.db.users {
		if usr.Email == email && usr.ID != exclID {
			return true
		}
	}
	return false
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	if repo.emailTaken(email, 0) {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if repo.emailTaken(usr.Email, 0) {
		return user.User{}, user.ErrEmailExists
	}
	usr.ID = repo.db.nextID("user")
	repo.db.users[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	users := make([]user.User, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		if filter != nil {
			if filter.Role != "" && usr.Role != filter.Role {
				continue
			}
			if s := strings.ToLower(filter.Search); s != "" &&
				!strings.Contains(strings.ToLower(usr.Name), s) &&
				!strings.Contains(usr.Email, s) {
				continue
			}
		}
		users = append(users, usr)
	}
	sortUsers(users, ordering)
	return users, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if filter.ID != 0 {
		if usr, ok := repo.db.users[filter.ID]; ok {
			return usr, nil
		}
		return user.User{}, user.ErrNotFound
	}
	if filter.Email != "" {
		for _, usr := range repo.db.users {
			if usr.Email == filter.Email {
				return usr, nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUsersByID(_ context.Context, ids []int64) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	users := make([]user.User, 0, len(ids))
	for _, id := range ids {
		if usr, ok := repo.db.users[id]; ok {
			users = append(users, usr)
		}
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if repo.emailTaken(usr.Email, usr.ID) {
		return user.User{}, user.ErrEmailExists
	}
	orig.Name = usr.Name
	orig.Email = usr.Email
	if usr.PasswordHash != nil {
		orig.PasswordHash = usr.PasswordHash
	}
	orig.UpdatedAt = usr.UpdatedAt
	repo.db.users[usr.ID] = orig
	return orig, nil
}

func (repo *userRepository) DeleteUser(_ context.Context, id int64) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(repo.db.users, id)
	return nil
}

// sortUsers applies the first ordering only; ties fall back to ids.
func sortUsers(users []user.User, ordering []core.DBOrdering) {
	less := func(a, b user.User) bool { return a.ID < b.ID }
	if len(ordering) > 0 {
		ord := ordering[0]
		var key func(u user.User) string
		switch ord.Field {
		case "name":
			key = func(u user.User) string { return strings.ToLower(u.Name) }
		case "email":
			key = func(u user.User) string { return u.Email }
		case "role":
			key = func(u user.User) string { return string(u.Role) }
		}
		switch {
		case key != nil:
			less = func(a, b user.User) bool {
				if key(a) == key(b) {
					return a.ID < b.ID
				}
				return (key(a) < key(b)) == ord.Ascending
			}
		case ord.Field == "id" || ord.Field == "created_at":
			less = func(a, b user.User) bool { return (a.ID < b.ID) == ord.Ascending }
		}
	}
	sort.Slice(users, func(i, j int) bool { return less(users[i], users[j]) })
}
