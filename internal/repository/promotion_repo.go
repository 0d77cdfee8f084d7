package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/Cheertaboi/restaurant-promo-engine/internal/models"
)

type PromotionRepo struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPromotionRepo(db *sql.DB, logger *slog.Logger) *PromotionRepo {
	return &PromotionRepo{db: db, logger: logger}
}

// ListPromotions loads the whole catalog of a tenant with rules and rewards,
// in three queries.
func (r *PromotionRepo) ListPromotions(ctx context.Context, tenantID int64) ([]models.Promotion, error) {
	query := `
		SELECT id, tenant_id, name, description, is_active, start_at, end_at,
		       active_hours_start, active_hours_end, active_days,
		       priority, stackable, gift_required
		FROM promotions
		WHERE tenant_id = $1
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query promotions: %w", err)
	}
	defer rows.Close()

	var promos []models.Promotion
	index := make(map[int64]int)
	for rows.Next() {
		var (
			p          models.Promotion
			startAt    sql.NullTime
			endAt      sql.NullTime
			hoursStart sql.NullString
			hoursEnd   sql.NullString
			days       []int64
		)
		if err := rows.Scan(
			&p.ID,
			&p.TenantID,
			&p.Name,
			&p.Description,
			&p.IsActive,
			&startAt,
			&endAt,
			&hoursStart,
			&hoursEnd,
			pq.Array(&days),
			&p.Priority,
			&p.Stackable,
			&p.GiftRequired,
		); err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		if startAt.Valid {
			t := startAt.Time
			p.StartAt = &t
		}
		if endAt.Valid {
			t := endAt.Time
			p.EndAt = &t
		}
		p.ActiveHoursStart = r.parseHours(p.ID, hoursStart)
		p.ActiveHoursEnd = r.parseHours(p.ID, hoursEnd)
		for _, d := range days {
			p.ActiveDays = append(p.ActiveDays, int(d))
		}
		p.Rules = []models.PromotionRule{}
		p.Rewards = []models.PromotionReward{}

		index[p.ID] = len(promos)
		promos = append(promos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(promos) == 0 {
		return promos, nil
	}

	if err := r.attachRules(ctx, tenantID, promos, index); err != nil {
		return nil, err
	}
	if err := r.attachRewards(ctx, tenantID, promos, index); err != nil {
		return nil, err
	}
	return promos, nil
}

func (r *PromotionRepo) attachRules(ctx context.Context, tenantID int64, promos []models.Promotion, index map[int64]int) error {
	query := `
		SELECT pr.id, pr.promotion_id, pr.required_category_id, COALESCE(c.name, ''), pr.min_quantity
		FROM promotion_rules pr
		JOIN promotions p ON p.id = pr.promotion_id
		LEFT JOIN categories c ON c.id = pr.required_category_id
		WHERE p.tenant_id = $1
		ORDER BY pr.promotion_id, pr.id
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return fmt.Errorf("query promotion rules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rule models.PromotionRule
		if err := rows.Scan(&rule.ID, &rule.PromotionID, &rule.RequiredCategoryID, &rule.RequiredCategoryName, &rule.MinQuantity); err != nil {
			return fmt.Errorf("scan promotion rule: %w", err)
		}
		if i, ok := index[rule.PromotionID]; ok {
			promos[i].Rules = append(promos[i].Rules, rule)
		}
	}
	return rows.Err()
}

func (r *PromotionRepo) attachRewards(ctx context.Context, tenantID int64, promos []models.Promotion, index map[int64]int) error {
	query := `
		SELECT rw.id, rw.promotion_id, rw.reward_type,
		       rw.reward_menu_item_id, COALESCE(mi.name, ''),
		       rw.reward_category_id, COALESCE(c.name, ''),
		       rw.reward_value, rw.max_selectable
		FROM promotion_rewards rw
		JOIN promotions p ON p.id = rw.promotion_id
		LEFT JOIN menu_items mi ON mi.id = rw.reward_menu_item_id
		LEFT JOIN categories c ON c.id = rw.reward_category_id
		WHERE p.tenant_id = $1
		ORDER BY rw.promotion_id, rw.id
	`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return fmt.Errorf("query promotion rewards: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id, promotionID int64
			rewardType      string
			itemID          sql.NullInt64
			itemName        string
			categoryID      sql.NullInt64
			categoryName    string
			value           decimal.Decimal
			maxSelectable   sql.NullInt32
		)
		if err := rows.Scan(&id, &promotionID, &rewardType, &itemID, &itemName, &categoryID, &categoryName, &value, &maxSelectable); err != nil {
			return fmt.Errorf("scan promotion reward: %w", err)
		}

		spec := models.RewardSpec{
			Type:               models.RewardType(rewardType),
			RewardItemName:     itemName,
			RewardCategoryName: categoryName,
			Value:              value,
		}
		if itemID.Valid {
			spec.RewardMenuItemID = &itemID.Int64
		}
		if categoryID.Valid {
			spec.RewardCategoryID = &categoryID.Int64
		}
		if maxSelectable.Valid {
			n := int(maxSelectable.Int32)
			spec.MaxSelectable = &n
		}

		reward, err := models.NewReward(spec)
		if err != nil {
			r.logger.WarnContext(ctx, "dropping malformed promotion reward",
				"tenant_id", tenantID, "promotion_id", promotionID, "reward_id", id, "error", err)
			continue
		}
		if i, ok := index[promotionID]; ok {
			promos[i].Rewards = append(promos[i].Rewards, models.PromotionReward{
				ID:          id,
				PromotionID: promotionID,
				Reward:      reward,
			})
		}
	}
	return rows.Err()
}

func (r *PromotionRepo) PromotionExists(ctx context.Context, tenantID, promotionID int64) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM promotions WHERE id = $1 AND tenant_id = $2)`
	if err := r.db.QueryRowContext(ctx, query, promotionID, tenantID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// parseHours drops an unreadable window bound, which leaves the promotion
// without an hour restriction.
func (r *PromotionRepo) parseHours(promotionID int64, v sql.NullString) *models.TimeOfDay {
	if !v.Valid {
		return nil
	}
	t, err := models.ParseTimeOfDay(v.String)
	if err != nil {
		r.logger.Warn("ignoring unreadable active hours", "promotion_id", promotionID, "value", v.String)
		return nil
	}
	return &t
}
