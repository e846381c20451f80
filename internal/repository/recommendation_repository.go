package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/triage-service/internal/domain"
)

// RecommendationRepository appends produced recommendations to the archive.
// Every re-routing adds a row; rows are never updated.
type RecommendationRepository interface {
	Append(ctx context.Context, rec *domain.RoutingRecommendation) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.RoutingRecommendation, error)
}

type recommendationRepository struct {
	pool *pgxpool.Pool
}

// NewRecommendationRepository instantiates the repository.
func NewRecommendationRepository(pool *pgxpool.Pool) RecommendationRepository {
	return &recommendationRepository{pool: pool}
}

func (r *recommendationRepository) Append(ctx context.Context, rec *domain.RoutingRecommendation) error {
	const query = `
        INSERT INTO recommendation_archive (ticket_id, decision, target_id, confidence,
            reasoning, estimated_resolution_minutes, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.pool.Exec(ctx, query,
		rec.TicketID,
		rec.Decision,
		rec.TargetID,
		rec.Confidence,
		rec.Reasoning,
		int(rec.EstimatedResolution/time.Minute),
		rec.CreatedAt,
	)
	return err
}

func (r *recommendationRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.RoutingRecommendation, error) {
	const query = `
        SELECT ticket_id, decision, target_id, confidence, reasoning,
               estimated_resolution_minutes, created_at
        FROM recommendation_archive WHERE ticket_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.RoutingRecommendation
	for rows.Next() {
		var rec domain.RoutingRecommendation
		var minutes int
		if err := rows.Scan(
			&rec.TicketID,
			&rec.Decision,
			&rec.TargetID,
			&rec.Confidence,
			&rec.Reasoning,
			&minutes,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec.EstimatedResolution = time.Duration(minutes) * time.Minute
		result = append(result, rec)
	}
	return result, rows.Err()
}
