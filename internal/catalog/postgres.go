package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/artis-laminates/ledgerimport/internal/model"
)

// Querier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// productsQuery orders by creation so first-seen alias precedence is stable.
const productsQuery = `SELECT id::text, "artisCodes" FROM "Products" ORDER BY "createdAt", id`

// PostgresSource reads products and their artis codes from the Products table.
type PostgresSource struct {
	DB Querier
}

func (s PostgresSource) String() string { return `postgres "Products"` }

// Entries loads every product row.
func (s PostgresSource) Entries(ctx context.Context) ([]model.CatalogEntry, error) {
	rows, err := s.DB.Query(ctx, productsQuery)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var entries []model.CatalogEntry
	for rows.Next() {
		var id string
		var codes []string
		if err := rows.Scan(&id, &codes); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		entries = append(entries, model.CatalogEntry{ID: model.ProductID(id), Aliases: codes})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading products: %w", err)
	}
	return entries, nil
}
