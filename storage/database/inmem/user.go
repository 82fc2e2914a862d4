package inmemdb

import (
	"context"
	"sync"

	"github.com/terakoya-app/terakoya/core/identity"
	authsvc "github.com/terakoya-app/terakoya/services/auth"
)

// User is the full in-memory row: account credentials plus identity profile.
type User struct {
	Account     authsvc.Account
	DisplayName string
	Subjects    []string
	Grades      []string
}

type userRepository struct {
	mutex     sync.RWMutex
	table     map[string]*User
	mutations int
	err       error
}

var (
	_ identity.Repository     = (*userRepository)(nil)
	_ authsvc.AccountStore    = (*userRepository)(nil)
	_ identity.AdminDirectory = (*userRepository)(nil)
)

func NewUserRepository() *userRepository {
	return &userRepository{table: make(map[string]*User)}
}

// Seed installs a user, replacing any previous row with the same ID.
func (repo *userRepository) Seed(users ...User) {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()
	for _, usr := range users {
		usr := usr
		repo.table[usr.Account.ID] = &usr
	}
}

func (repo *userRepository) GetIdentity(_ context.Context, userID string) (identity.Identity, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	usr, ok := repo.table[userID]
	if !ok {
		return identity.Identity{}, identity.ErrNotFound
	}
	return identity.Identity{
		ID:          usr.Account.ID,
		Email:       usr.Account.Email,
		DisplayName: usr.DisplayName,
		Role:        usr.Account.Role,
		Suspended:   usr.Account.Suspended,
		Subjects:    usr.Subjects,
		Grades:      usr.Grades,
	}, nil
}

func (repo *userRepository) GetAccountByEmail(_ context.Context, email string) (authsvc.Account, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	for _, usr := range repo.table {
		if usr.Account.Email == email {
			return usr.Account, nil
		}
	}
	return authsvc.Account{}, authsvc.ErrAccountNotFound
}

func (repo *userRepository) GetAccountByID(_ context.Context, id string) (authsvc.Account, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()

	usr, ok := repo.table[id]
	if !ok {
		return authsvc.Account{}, authsvc.ErrAccountNotFound
	}
	return usr.Account, nil
}

func (repo *userRepository) SuspendUser(_ context.Context, userID string) error {
	return repo.setSuspended(userID, true)
}

func (repo *userRepository) ReinstateUser(_ context.Context, userID string) error {
	return repo.setSuspended(userID, false)
}

// FailWith makes every subsequent mutation return err.
func (repo *userRepository) FailWith(err error) {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()
	repo.err = err
}

// MutationCount reports how many suspension mutations were attempted.
func (repo *userRepository) MutationCount() int {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()
	return repo.mutations
}

func (repo *userRepository) setSuspended(userID string, suspended bool) error {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()
	repo.mutations++
	if repo.err != nil {
		return repo.err
	}

	usr, ok := repo.table[userID]
	if !ok {
		return identity.ErrNotFound
	}
	usr.Account.Suspended = suspended
	return nil
}
