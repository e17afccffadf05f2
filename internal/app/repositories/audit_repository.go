package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tkaraca/registra/internal/app/models"
)

// AuditRepository persists audit records. Audit writes are advisory: callers
// log failures and move on rather than failing the domain operation.
type AuditRepository struct {
	db *pgxpool.Pool
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{
		db: db,
	}
}

// Record inserts one audit record
func (r *AuditRepository) Record(ctx context.Context, record *models.AuditRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	var details []byte
	if record.Details != nil {
		var err error
		details, err = json.Marshal(record.Details)
		if err != nil {
			return fmt.Errorf("error encoding audit details: %w", err)
		}
	}

	query := `
		INSERT INTO audit_records (id, actor_id, action, entity_type, entity_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		record.ID,
		record.ActorID,
		record.Action,
		record.EntityType,
		record.EntityID,
		details,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error recording audit entry: %w", err)
	}

	return nil
}
