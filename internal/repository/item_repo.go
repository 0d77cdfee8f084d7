package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/Cheertaboi/restaurant-promo-engine/internal/models"
)

type ItemRepo struct {
	db *sql.DB
}

func NewItemRepo(db *sql.DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// GetMenuItems fetches ids in one round trip. Ids that do not exist for the
// tenant are absent from the result.
func (r *ItemRepo) GetMenuItems(ctx context.Context, tenantID int64, ids []int64) (map[int64]models.MenuItem, error) {
	items := make(map[int64]models.MenuItem, len(ids))
	if len(ids) == 0 {
		return items, nil
	}

	query := `
		SELECT id, tenant_id, category_id, name, price, is_available
		FROM menu_items
		WHERE tenant_id = $1 AND id = ANY($2)
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query menu items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it models.MenuItem
		if err := rows.Scan(&it.ID, &it.TenantID, &it.CategoryID, &it.Name, &it.Price, &it.IsAvailable); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items[it.ID] = it
	}
	return items, rows.Err()
}
