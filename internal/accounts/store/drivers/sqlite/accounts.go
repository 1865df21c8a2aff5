package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/croftbay/accounts/internal/accounts/domain"
	"github.com/croftbay/accounts/internal/accounts/store"
)

type accountsRepo struct {
	db dbtx
}

const accountColumns = `id, login, email, first_name, last_name, image_url, lang_key,
	password_hash, activated, activation_key, reset_key, reset_date, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (domain.Account, error) {
	var (
		a                  domain.Account
		activationKey      sql.NullString
		resetKey           sql.NullString
		resetDate          sql.NullString
		createdAt, updated string
	)
	err := row.Scan(
		&a.ID, &a.Login, &a.Email, &a.FirstName, &a.LastName, &a.ImageURL, &a.LangKey,
		&a.PasswordHash, &a.Activated, &activationKey, &resetKey, &resetDate,
		&createdAt, &updated,
	)
	if err != nil {
		return domain.Account{}, err
	}

	a.ActivationKey = mapNullString(activationKey)
	a.ResetKey = mapNullString(resetKey)
	if a.ResetDate, err = mapNullTime(resetDate); err != nil {
		return domain.Account{}, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Account{}, err
	}
	if a.UpdatedAt, err = parseTime(updated); err != nil {
		return domain.Account{}, err
	}
	return a, nil
}

func (r *accountsRepo) getBy(ctx context.Context, where string, arg any) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE `+where, arg)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	a.Authorities, err = r.loadAuthorities(ctx, a.ID)
	if err != nil {
		return domain.Account{}, err
	}
	return a, nil
}

func (r *accountsRepo) GetByID(ctx context.Context, id string) (domain.Account, error) {
	return r.getBy(ctx, `id = ?`, id)
}

func (r *accountsRepo) GetByLogin(ctx context.Context, login string) (domain.Account, error) {
	// login column is COLLATE NOCASE, so the match is case-insensitive
	return r.getBy(ctx, `login = ?`, login)
}

func (r *accountsRepo) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.getBy(ctx, `email = ?`, email)
}

func (r *accountsRepo) GetByActivationKey(ctx context.Context, key string) (domain.Account, error) {
	return r.getBy(ctx, `activation_key = ?`, key)
}

func (r *accountsRepo) GetByResetKey(ctx context.Context, key string) (domain.Account, error) {
	return r.getBy(ctx, `reset_key = ?`, key)
}

func (r *accountsRepo) ListByLoginNot(ctx context.Context, login string, page store.Page) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE login != ? ORDER BY id`
	args := []any{login}
	if page.Size > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, page.Size, page.Offset())
	}
	return r.list(ctx, query, args...)
}

func (r *accountsRepo) ListUnactivatedCreatedBefore(ctx context.Context, cutoff time.Time) ([]domain.Account, error) {
	return r.list(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE activated = 0 AND created_at < ? ORDER BY id`,
		formatTime(cutoff))
}

func (r *accountsRepo) list(ctx context.Context, query string, args ...any) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range accounts {
		accounts[i].Authorities, err = r.loadAuthorities(ctx, accounts[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return accounts, nil
}

func (r *accountsRepo) Create(ctx context.Context, a domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Login, a.Email, a.FirstName, a.LastName, a.ImageURL, a.LangKey,
		a.PasswordHash, a.Activated,
		mapOptionalString(a.ActivationKey), mapOptionalString(a.ResetKey), mapOptionalTime(a.ResetDate),
		formatTime(a.CreatedAt), formatTime(a.UpdatedAt),
	)
	if err != nil {
		return mapConstraint(err)
	}
	return r.replaceAuthorities(ctx, a.ID, a.Authorities)
}

func (r *accountsRepo) Update(ctx context.Context, a domain.Account) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET login = ?, email = ?, first_name = ?, last_name = ?,
		 image_url = ?, lang_key = ?, password_hash = ?, activated = ?,
		 activation_key = ?, reset_key = ?, reset_date = ?, updated_at = ?
		 WHERE id = ?`,
		a.Login, a.Email, a.FirstName, a.LastName,
		a.ImageURL, a.LangKey, a.PasswordHash, a.Activated,
		mapOptionalString(a.ActivationKey), mapOptionalString(a.ResetKey), mapOptionalTime(a.ResetDate),
		formatTime(a.UpdatedAt),
		a.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return r.replaceAuthorities(ctx, a.ID, a.Authorities)
}

func (r *accountsRepo) Delete(ctx context.Context, id string) error {
	// Explicit link cleanup; the FK cascade only fires when foreign_keys is on
	// for the connection, which isn't guaranteed across the pool.
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM account_authorities WHERE account_id = ?`, id); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	return err
}

func (r *accountsRepo) loadAuthorities(ctx context.Context, accountID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT authority_name FROM account_authorities WHERE account_id = ? ORDER BY authority_name`,
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *accountsRepo) replaceAuthorities(ctx context.Context, accountID string, names []string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM account_authorities WHERE account_id = ?`, accountID); err != nil {
		return err
	}
	for _, name := range names {
		if _, err := r.db.ExecContext(ctx,
			`INSERT INTO account_authorities (account_id, authority_name) VALUES (?, ?)`,
			accountID, name); err != nil {
			return err
		}
	}
	return nil
}
