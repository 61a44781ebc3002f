package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"foodshare/internal/utils"
	"foodshare/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const donationsTableName = "foodshare.donations"

var donationColumns = utils.StructTagValues(types.DonationLog{})

type DonationRepository struct {
	pool *pgxpool.Pool
}

func NewDonationRepository(pool *pgxpool.Pool) *DonationRepository {
	return &DonationRepository{pool: pool}
}

// LogDonation inserts a donation and returns it with its generated id
func (r *DonationRepository) LogDonation(ctx context.Context, donation *types.DonationLog) error {
	if donation.ID == "" {
		donation.ID = utils.NanoID()
	}
	if donation.DonatedAt.IsZero() {
		donation.DonatedAt = time.Now().UTC()
	}
	donation.CreatedAt = time.Now().UTC()
	if donation.Email != nil {
		normalized := normalizeEmail(*donation.Email)
		donation.Email = &normalized
		if normalized == "" {
			donation.Email = nil
		}
	}

	query, args, err := insertDonationQuery(donation)
	if err != nil {
		return fmt.Errorf("failed to generate insert donation query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to insert donation")
}

// LatestByEmail returns the most recent donation logged for email
func (r *DonationRepository) LatestByEmail(ctx context.Context, email string) (*types.DonationLog, error) {
	query, args, err := latestByEmailQuery(email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate latest donation query: %w", err)
	}

	var donation types.DonationLog
	err = pgxscan.Get(ctx, r.pool, &donation, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrDonorNotFound
		}
		return nil, fmt.Errorf("failed to get latest donation: %w", err)
	}

	return &donation, nil
}

// DeleteByEmailSuffix removes donations whose email ends with suffix and
// returns how many were deleted
func (r *DonationRepository) DeleteByEmailSuffix(ctx context.Context, suffix string) (int64, error) {
	query, args, err := psql().
		Delete(donationsTableName).
		Where(sq.Like{"email": "%" + normalizeEmail(suffix)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate delete donations query: %w", err)
	}

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete donations: %w", err)
	}

	return result.RowsAffected(), nil
}

func insertDonationQuery(donation *types.DonationLog) (string, []any, error) {
	return psql().
		Insert(donationsTableName).
		SetMap(utils.StructToMap(donation)).
		ToSql()
}

func latestByEmailQuery(email string) (string, []any, error) {
	return psql().
		Select(donationColumns...).
		From(donationsTableName).
		Where(sq.Eq{"email": normalizeEmail(email)}).
		OrderBy("donated_at DESC", "created_at DESC").
		Limit(1).
		ToSql()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
