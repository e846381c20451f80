package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/triage-service/internal/domain"
)

// TicketArchiveRepository persists finished decisions for history and
// reporting. The live decision path never reads it.
type TicketArchiveRepository interface {
	Upsert(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	CountByPriority(ctx context.Context) (map[domain.Priority]int, error)
}

type ticketArchiveRepository struct {
	pool *pgxpool.Pool
}

// NewTicketArchiveRepository instantiates the repository.
func NewTicketArchiveRepository(pool *pgxpool.Pool) TicketArchiveRepository {
	return &ticketArchiveRepository{pool: pool}
}

func (r *ticketArchiveRepository) Upsert(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO ticket_archive (id, subject, content, channel, customer_id, priority,
            sentiment_score, urgency_score, complexity_score, category, keywords, state,
            assigned_agent_id, created_at, updated_at, resolved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        ON CONFLICT (id) DO UPDATE SET
            priority=EXCLUDED.priority, state=EXCLUDED.state,
            assigned_agent_id=EXCLUDED.assigned_agent_id,
            updated_at=EXCLUDED.updated_at, resolved_at=EXCLUDED.resolved_at`
	_, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Subject,
		ticket.Content,
		ticket.Channel,
		ticket.CustomerID,
		ticket.Priority,
		ticket.SentimentScore,
		ticket.UrgencyScore,
		ticket.ComplexityScore,
		ticket.Category,
		ticket.Keywords,
		ticket.State,
		ticket.AssignedAgentID,
		ticket.CreatedAt,
		ticket.UpdatedAt,
		ticket.ResolvedAt,
	)
	return err
}

func (r *ticketArchiveRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, subject, content, channel, customer_id, priority, sentiment_score,
               urgency_score, complexity_score, category, keywords, state,
               assigned_agent_id, created_at, updated_at, resolved_at
        FROM ticket_archive WHERE id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.Subject,
		&ticket.Content,
		&ticket.Channel,
		&ticket.CustomerID,
		&ticket.Priority,
		&ticket.SentimentScore,
		&ticket.UrgencyScore,
		&ticket.ComplexityScore,
		&ticket.Category,
		&ticket.Keywords,
		&ticket.State,
		&ticket.AssignedAgentID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketArchiveRepository) CountByPriority(ctx context.Context) (map[domain.Priority]int, error) {
	const query = `SELECT priority, COUNT(*) FROM ticket_archive GROUP BY priority`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.Priority]int)
	for rows.Next() {
		var priority domain.Priority
		var count int
		if err := rows.Scan(&priority, &count); err != nil {
			return nil, err
		}
		counts[priority] = count
	}
	return counts, rows.Err()
}
