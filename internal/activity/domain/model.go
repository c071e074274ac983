package domain

import "time"

// Activity kinds written by the workflow.
const (
	ActionStatusChange           = "status_change"
	ActionContentUpdate          = "content_update"
	ActionCreated                = "created"
	ActionObservationAdded       = "observation_added"
	ActionDocumentGenerated      = "document_generated"
	ActionStoragePlacementFailed = "storage_placement_failed"
	ActionMigration              = "migration"
)

// Entry is one immutable row of the activity log.
type Entry struct {
	ID         string                 `json:"id"`
	ConvenioID string                 `json:"convenio_id"`
	ActorID    string                 `json:"user_id"`
	Action     string                 `json:"action"`
	PrevStatus *string                `json:"status_from,omitempty"`
	NewStatus  *string                `json:"status_to,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	IPAddress  string                 `json:"ip_address,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}
