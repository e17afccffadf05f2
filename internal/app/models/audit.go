package models

import "time"

// AuditRecord summarizes a domain mutation for the audit trail. Audit writes
// are best-effort: they happen after the domain transaction commits and a
// failed write never rolls the domain change back.
type AuditRecord struct {
	ID         string                 `json:"id" db:"id"` // UUID
	ActorID    int64                  `json:"actorId" db:"actor_id"`
	Action     string                 `json:"action" db:"action"`
	EntityType string                 `json:"entityType" db:"entity_type"`
	EntityID   int64                  `json:"entityId" db:"entity_id"`
	Details    map[string]interface{} `json:"details,omitempty" db:"details"`
	CreatedAt  time.Time              `json:"createdAt" db:"created_at"`
}
