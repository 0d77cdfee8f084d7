package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Cheertaboi/restaurant-promo-engine/internal/models"
)

type PriceRuleRepo struct {
	db *sql.DB
}

func NewPriceRuleRepo(db *sql.DB) *PriceRuleRepo {
	return &PriceRuleRepo{db: db}
}

func (r *PriceRuleRepo) FindBaseRule(ctx context.Context, tenantID, baseID int64, scope models.ScopeType, scopeID int64) (*models.PriceRule, error) {
	query := `
		SELECT id, tenant_id, target_type, target_id, scope_type, scope_id, price_delta
		FROM price_rules
		WHERE tenant_id = $1 AND target_type = $2 AND target_id = $3
		  AND scope_type = $4 AND scope_id = $5
		ORDER BY id
		LIMIT 1
	`
	var pr models.PriceRule
	err := r.db.QueryRowContext(ctx, query, tenantID, string(models.TargetBase), baseID, string(scope), scopeID).Scan(
		&pr.ID,
		&pr.TenantID,
		&pr.TargetType,
		&pr.TargetID,
		&pr.ScopeType,
		&pr.ScopeID,
		&pr.PriceDelta,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &pr, nil
}

func (r *PriceRuleRepo) FindBaseRules(ctx context.Context, tenantID int64, baseIDs []int64, scope models.ScopeType, scopeID int64) ([]models.PriceRule, error) {
	rules := []models.PriceRule{}
	if len(baseIDs) == 0 {
		return rules, nil
	}

	query := `
		SELECT id, tenant_id, target_type, target_id, scope_type, scope_id, price_delta
		FROM price_rules
		WHERE tenant_id = $1 AND target_type = $2 AND target_id = ANY($3)
		  AND scope_type = $4 AND scope_id = $5
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID, string(models.TargetBase), pq.Array(baseIDs), string(scope), scopeID)
	if err != nil {
		return nil, fmt.Errorf("query price rules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pr models.PriceRule
		if err := rows.Scan(&pr.ID, &pr.TenantID, &pr.TargetType, &pr.TargetID, &pr.ScopeType, &pr.ScopeID, &pr.PriceDelta); err != nil {
			return nil, fmt.Errorf("scan price rule: %w", err)
		}
		rules = append(rules, pr)
	}
	return rules, rows.Err()
}
