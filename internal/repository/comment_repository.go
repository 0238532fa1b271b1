package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CommentRepository manages ticket thread entries.
type CommentRepository interface {
	// Create appends the comment and advances the ticket's updated_at to at
	// least the comment's creation time in the same transaction.
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTicket(ctx context.Context, ticketID int64, includeInternal bool) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	attachments, err := json.Marshal(nonNilAttachments(comment.Attachments))
	if err != nil {
		return fmt.Errorf("encode attachments: %w", err)
	}

	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var locked int64
		if err := tx.QueryRow(ctx, `SELECT id FROM tickets WHERE id = $1 FOR UPDATE`, comment.TicketID).Scan(&locked); err != nil {
			return translate(err)
		}

		const insert = `
            INSERT INTO ticket_comments (ticket_id, admin_id, author_type, comment, attachments,
                                         is_internal, customer_name, customer_email)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
            RETURNING id, created_at`
		if err := tx.QueryRow(ctx, insert,
			comment.TicketID,
			comment.AdminID,
			comment.AuthorType,
			comment.Body,
			attachments,
			comment.IsInternal,
			comment.CustomerName,
			comment.CustomerEmail,
		).Scan(&comment.ID, &comment.CreatedAt); err != nil {
			return translate(err)
		}

		const touch = `UPDATE tickets SET updated_at = GREATEST(updated_at, $2) WHERE id = $1`
		cmd, err := tx.Exec(ctx, touch, comment.TicketID, comment.CreatedAt)
		if err != nil {
			return translate(err)
		}
		if cmd.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID int64, includeInternal bool) ([]domain.Comment, error) {
	query := `
        SELECT tc.id, tc.ticket_id, tc.admin_id, tc.author_type, tc.comment, tc.attachments,
               tc.is_internal, tc.customer_name, tc.customer_email, tc.created_at, a.name, a.email
        FROM ticket_comments tc
        LEFT JOIN admins a ON a.id = tc.admin_id
        WHERE tc.ticket_id = $1`
	if !includeInternal {
		query += ` AND tc.is_internal = FALSE`
	}
	query += ` ORDER BY tc.created_at ASC, tc.id ASC`

	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var (
			comment     domain.Comment
			attachments []byte
		)
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.AdminID,
			&comment.AuthorType,
			&comment.Body,
			&attachments,
			&comment.IsInternal,
			&comment.CustomerName,
			&comment.CustomerEmail,
			&comment.CreatedAt,
			&comment.AdminName,
			&comment.AdminEmail,
		); err != nil {
			return nil, err
		}
		if len(attachments) > 0 {
			if err := json.Unmarshal(attachments, &comment.Attachments); err != nil {
				return nil, fmt.Errorf("decode attachments for comment %d: %w", comment.ID, err)
			}
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}

func nonNilAttachments(in []domain.Attachment) []domain.Attachment {
	if in == nil {
		return []domain.Attachment{}
	}
	return in
}
