package store

import (
	"context"
	"fmt"

	"github.com/jonathan/job-aggregator/internal/types"
)

// LoadAliases reads the domain-to-company alias table into the lookup map
// the company resolver consumes. Keys are lowercased hosts.
func (s *Store) LoadAliases(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT domain, name FROM domain_aliases`)
	if err != nil {
		return nil, fmt.Errorf("failed to load domain aliases: %w", err)
	}
	defer rows.Close()

	aliases := make(map[string]string)
	for rows.Next() {
		var a types.DomainAlias
		if err := rows.Scan(&a.Domain, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan domain alias: %w", err)
		}
		aliases[a.Domain] = a.Name
	}
	return aliases, rows.Err()
}

// PutAlias inserts or replaces one alias row.
func (s *Store) PutAlias(ctx context.Context, alias *types.DomainAlias) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO domain_aliases (domain, name) VALUES ($1, $2)
		 ON CONFLICT (domain) DO UPDATE SET name = EXCLUDED.name`,
		alias.Domain, alias.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to put alias %s: %w", alias.Domain, err)
	}
	return nil
}
