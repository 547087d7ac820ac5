package remote

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/subtrack/internal/dbx"
	"github.com/dmitrijs2005/subtrack/internal/errs"
	"github.com/dmitrijs2005/subtrack/internal/models"
)

// PostgresSubscriptionRepository implements SubscriptionRepository over a
// DBTX (either *sql.DB or *sql.Tx) using the pgx stdlib driver.
type PostgresSubscriptionRepository struct {
	db dbx.DBTX
}

// NewPostgresSubscriptionRepository returns a repository bound to the given DBTX.
func NewPostgresSubscriptionRepository(db dbx.DBTX) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{db: db}
}

func (r *PostgresSubscriptionRepository) List(ctx context.Context, ownerID string) ([]models.Subscription, error) {
	query := `SELECT id, name, cost, renewal_date, cycle, status, category, created_at, updated_at
		 FROM subscriptions
		 WHERE owner_id = $1
		 ORDER BY renewal_date ASC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, mapError("list subscriptions", err)
	}
	defer rows.Close()

	result := make([]models.Subscription, 0)
	for rows.Next() {
		var item models.Subscription
		if err := rows.Scan(&item.ID, &item.Name, &item.Cost, &item.RenewalDate,
			&item.Cycle, &item.Status, &item.Category, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, mapError("scan subscription", err)
		}
		item.OwnerKey = ownerID
		item.RenewalDate = models.NormalizeDate(item.RenewalDate)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("iterate subscriptions", err)
	}
	return result, nil
}

// ReplaceAll deletes every row for ownerID and then inserts the given set.
// The two phases deliberately run as independent statements with no
// surrounding transaction; a failure after the delete leaves the owner's
// remote set empty until the next write.
func (r *PostgresSubscriptionRepository) ReplaceAll(ctx context.Context, ownerID string, subs []models.Subscription) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE owner_id = $1`, ownerID); err != nil {
		return mapError("delete subscriptions", err)
	}

	query := `INSERT INTO subscriptions (id, owner_id, name, cost, renewal_date, cycle, status, category)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, sub := range subs {
		_, err := r.db.ExecContext(ctx, query,
			sub.ID, ownerID, sub.Name, sub.Cost, models.NormalizeDate(sub.RenewalDate),
			string(sub.Cycle), string(sub.Status), string(sub.Category))
		if err != nil {
			return mapError("insert subscription", err)
		}
	}
	return nil
}

func (r *PostgresSubscriptionRepository) UpsertOne(ctx context.Context, ownerID string, sub models.Subscription) error {
	query := `INSERT INTO subscriptions (id, owner_id, name, cost, renewal_date, cycle, status, category)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			cost = excluded.cost,
			renewal_date = excluded.renewal_date,
			cycle = excluded.cycle,
			status = excluded.status,
			category = excluded.category,
			updated_at = now()`

	_, err := r.db.ExecContext(ctx, query,
		sub.ID, ownerID, sub.Name, sub.Cost, models.NormalizeDate(sub.RenewalDate),
		string(sub.Cycle), string(sub.Status), string(sub.Category))
	if err != nil {
		return mapError("upsert subscription", err)
	}
	return nil
}

func (r *PostgresSubscriptionRepository) DeleteOne(ctx context.Context, ownerID string, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return mapError("delete subscription", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return mapError("delete subscription", err)
	}
	if ra == 0 {
		return fmt.Errorf("delete subscription %s: %w", id, errs.ErrNotFound)
	}
	return nil
}
