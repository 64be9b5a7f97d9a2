// Package audit records who did what to which record. Entries land in the
// store's audit trail; recording never fails the calling operation.
package audit

import (
	"log/slog"

	"github.com/rhodessheriff/sheriffd/internal/logging"
	"github.com/rhodessheriff/sheriffd/internal/store"
)

// Entity names used in the audit trail.
const (
	EntityUser    = "user"
	EntityCase    = "case"
	EntityJail    = "jail"
	EntityFine    = "fine"
	EntityLaws    = "laws"
	EntityWeapon  = "weapon"
	EntityTask    = "task"
	EntityNote    = "note"
	EntitySession = "session"
)

// Recorder appends entries to the store's audit trail and mirrors them to the
// structured log.
type Recorder struct {
	store  *store.Store
	logger *slog.Logger
}

// NewRecorder creates a recorder writing to the given store.
func NewRecorder(s *store.Store) *Recorder {
	return &Recorder{
		store:  s,
		logger: logging.ForService("audit"),
	}
}

// Record appends one audit entry. The write goes through the store and cannot
// fail the mutation it documents.
func (r *Recorder) Record(action, entity, entityID, details, username string) {
	r.store.CreateAuditLog(store.AuditLogInput{
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  details,
		Username: username,
	})
	r.logger.Info("audit",
		"action", action,
		"entity", entity,
		"entityId", entityID,
		"username", username,
	)
}
