package inmemdb

import (
	"context"
	"sync"

	"github.com/terakoya-app/terakoya/core/audit"
)

type auditRepository struct {
	mutex   sync.RWMutex
	entries []audit.Entry
	err     error
}

var _ audit.Repository = (*auditRepository)(nil)

func NewAuditRepository() *auditRepository {
	return &auditRepository{}
}

func (repo *auditRepository) AppendEntry(_ context.Context, entry audit.Entry) error {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()
	if repo.err != nil {
		return repo.err
	}
	repo.entries = append(repo.entries, entry)
	return nil
}

// Entries snapshots the log for test assertions.
func (repo *auditRepository) Entries() []audit.Entry {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()
	out := make([]audit.Entry, len(repo.entries))
	copy(out, repo.entries)
	return out
}

// FailWith makes every subsequent write return err.
func (repo *auditRepository) FailWith(err error) {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()
	repo.err = err
}
