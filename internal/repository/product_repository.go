package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/lendfast/loan-engine/internal/domain"
)

// productRepository serves the loan product catalog from Postgres with a
// read-through Redis cache. Catalog entries change rarely (admin edits only),
// so a short TTL keeps staleness bounded without an invalidation protocol.
type productRepository struct {
	db       *sqlx.DB
	redis    *redis.Client
	cacheTTL time.Duration
	logger   *logrus.Logger
}

func NewProductRepository(db *sqlx.DB, redisClient *redis.Client, cacheTTL time.Duration, logger *logrus.Logger) ProductRepository {
	return &productRepository{
		db:       db,
		redis:    redisClient,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

func productCacheKey(name string) string {
	return fmt.Sprintf("product:%s", name)
}

func (r *productRepository) GetByName(ctx context.Context, name string) (*domain.LoanProduct, error) {
	if r.redis != nil {
		cached, err := r.redis.Get(ctx, productCacheKey(name)).Result()
		if err == nil {
			var product domain.LoanProduct
			if err := json.Unmarshal([]byte(cached), &product); err == nil {
				return &product, nil
			}
		}
	}

	query := `
		SELECT name, annual_rate_percent, min_term_months, max_term_months, active, created_at, updated_at
		FROM loan_products
		WHERE name = $1 AND active = TRUE
	`

	var product domain.LoanProduct
	if err := r.db.GetContext(ctx, &product, query, name); err != nil {
		return nil, err
	}

	r.cache(ctx, &product)

	return &product, nil
}

func (r *productRepository) List(ctx context.Context) ([]*domain.LoanProduct, error) {
	query := `
		SELECT name, annual_rate_percent, min_term_months, max_term_months, active, created_at, updated_at
		FROM loan_products
		WHERE active = TRUE
		ORDER BY name
	`

	var products []*domain.LoanProduct
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepository) Upsert(ctx context.Context, product *domain.LoanProduct) error {
	query := `
		INSERT INTO loan_products (name, annual_rate_percent, min_term_months, max_term_months, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE
		SET annual_rate_percent = EXCLUDED.annual_rate_percent,
		    min_term_months = EXCLUDED.min_term_months,
		    max_term_months = EXCLUDED.max_term_months,
		    active = EXCLUDED.active,
		    updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		product.Name,
		product.AnnualRatePercent,
		product.MinTermMonths,
		product.MaxTermMonths,
		product.Active,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return err
	}

	if r.redis != nil {
		if err := r.redis.Del(ctx, productCacheKey(product.Name)).Err(); err != nil {
			r.logger.WithError(err).Warn("failed to invalidate product cache")
		}
	}

	return nil
}

func (r *productRepository) cache(ctx context.Context, product *domain.LoanProduct) {
	if r.redis == nil {
		return
	}

	payload, err := json.Marshal(product)
	if err != nil {
		return
	}

	if err := r.redis.Set(ctx, productCacheKey(product.Name), payload, r.cacheTTL).Err(); err != nil {
		r.logger.WithError(err).Warn("failed to cache product")
	}
}
