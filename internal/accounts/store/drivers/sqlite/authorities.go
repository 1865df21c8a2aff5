package sqlite

import (
	"context"

	"github.com/croftbay/accounts/internal/accounts/domain"
)

type authoritiesRepo struct {
	db dbtx
}

func (r *authoritiesRepo) GetByName(ctx context.Context, name string) (domain.Authority, error) {
	row := r.db.QueryRowContext(ctx, `SELECT name FROM authorities WHERE name = ?`, name)

	var a domain.Authority
	if err := row.Scan(&a.Name); err != nil {
		return domain.Authority{}, mapNotFound(err)
	}
	return a, nil
}

func (r *authoritiesRepo) ListAll(ctx context.Context) ([]domain.Authority, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM authorities ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authorities []domain.Authority
	for rows.Next() {
		var a domain.Authority
		if err := rows.Scan(&a.Name); err != nil {
			return nil, err
		}
		authorities = append(authorities, a)
	}
	return authorities, rows.Err()
}
