package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/terakoya-app/terakoya/core/audit"
)

type auditRepository struct {
	db *sqlx.DB
}

var _ audit.Repository = (*auditRepository)(nil)

func NewAuditRepository(db *sqlx.DB) *auditRepository {
	return &auditRepository{db: db}
}

func (repo *auditRepository) AppendEntry(ctx context.Context, entry audit.Entry) error {
	_, err := repo.db.NamedExecContext(ctx,
		`INSERT INTO audit_log (id, actor_id, action, target_table, target_id, created_at)
		 VALUES (:id, :actor_id, :action, :target_table, :target_id, :created_at)`, entry)
	return errors.Wrap(err, "inserting audit entry")
}
