package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/terakoya-app/terakoya/core/identity"
	authsvc "github.com/terakoya-app/terakoya/services/auth"
)

// userRow is the DB shape of a user account.
type userRow struct {
	ID           string         `db:"id"`
	Email        string         `db:"email"`
	PasswordHash []byte         `db:"password_hash"`
	DisplayName  string         `db:"display_name"`
	Role         string         `db:"role"`
	Suspended    bool           `db:"suspended"`
	Subjects     pq.StringArray `db:"subjects"`
	Grades       pq.StringArray `db:"grades"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r userRow) identity() identity.Identity {
	role, _ := identity.ParseRole(r.Role)
	return identity.Identity{
		ID:          r.ID,
		Email:       r.Email,
		DisplayName: r.DisplayName,
		Role:        role,
		Suspended:   r.Suspended,
		Subjects:    r.Subjects,
		Grades:      r.Grades,
	}
}

func (r userRow) account() authsvc.Account {
	role, _ := identity.ParseRole(r.Role)
	return authsvc.Account{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Role:         role,
		Suspended:    r.Suspended,
	}
}

// userRepository reads identities and accounts under normal visibility.
type userRepository struct {
	db *sqlx.DB
}

var (
	_ identity.Repository  = (*userRepository)(nil)
	_ authsvc.AccountStore = (*userRepository)(nil)
)

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, display_name, role, suspended, subjects, grades, created_at, updated_at`

func (repo *userRepository) GetIdentity(ctx context.Context, userID string) (identity.Identity, error) {
	var row userRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return identity.Identity{}, identity.ErrNotFound
		}
		return identity.Identity{}, errors.Wrap(err, "getting identity by ID")
	}
	return row.identity(), nil
}

func (repo *userRepository) GetAccountByEmail(ctx context.Context, email string) (authsvc.Account, error) {
	var row userRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return authsvc.Account{}, authsvc.ErrAccountNotFound
		}
		return authsvc.Account{}, errors.Wrap(err, "getting account by email")
	}
	return row.account(), nil
}

func (repo *userRepository) GetAccountByID(ctx context.Context, id string) (authsvc.Account, error) {
	var row userRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return authsvc.Account{}, authsvc.ErrAccountNotFound
		}
		return authsvc.Account{}, errors.Wrap(err, "getting account by ID")
	}
	return row.account(), nil
}

// adminDirectory is the admin-bypass capability over the users table.
// Deliberately a separate type from userRepository so handlers must hold it
// explicitly to mutate accounts.
type adminDirectory struct {
	db *sqlx.DB
}

var _ identity.AdminDirectory = (*adminDirectory)(nil)

func NewAdminDirectory(db *sqlx.DB) *adminDirectory {
	return &adminDirectory{db: db}
}

func (dir *adminDirectory) SuspendUser(ctx context.Context, userID string) error {
	return dir.setSuspended(ctx, userID, true)
}

func (dir *adminDirectory) ReinstateUser(ctx context.Context, userID string) error {
	return dir.setSuspended(ctx, userID, false)
}

// UpsertAccount creates or updates an account by email. Not part of the
// identity.AdminDirectory capability; reserved for the admin CLI.
func (dir *adminDirectory) UpsertAccount(ctx context.Context, acct authsvc.Account, displayName string) error {
	_, err := dir.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, display_name, role, suspended)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (email) DO UPDATE
		 SET password_hash = EXCLUDED.password_hash,
		     display_name  = EXCLUDED.display_name,
		     role          = EXCLUDED.role,
		     suspended     = EXCLUDED.suspended,
		     updated_at    = now()`,
		uuid.NewString(), acct.Email, acct.PasswordHash, displayName, string(acct.Role), acct.Suspended)
	return errors.Wrap(err, "upserting account")
}

func (dir *adminDirectory) setSuspended(ctx context.Context, userID string, suspended bool) error {
	res, err := dir.db.ExecContext(ctx,
		`UPDATE users SET suspended = $1, updated_at = now() WHERE id = $2`, suspended, userID)
	if err != nil {
		return errors.Wrap(err, "updating suspension flag")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "checking affected rows")
	}
	if n == 0 {
		return identity.ErrNotFound
	}
	return nil
}
