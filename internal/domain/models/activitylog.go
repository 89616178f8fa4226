// internal/domain/models/activitylog.go
package models

import "time"

// Activity actions.
const (
	ActionCreate         = "create"
	ActionUpdate         = "update"
	ActionDelete         = "delete"
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionPasswordChange = "password_change"
	ActionPublish        = "publish"
	ActionValidate       = "validate"
	ActionReject         = "reject"
	ActionExport         = "export"
)

// Changes is the optional before/after payload of an ActivityLog.
type Changes struct {
	Before map[string]any `bson:"before,omitempty" json:"before,omitempty"`
	After  map[string]any `bson:"after,omitempty" json:"after,omitempty"`
	Fields []string       `bson:"fields,omitempty" json:"fields,omitempty"`
}

// ActivityLog is an append-only audit record. The application never updates
// or deletes one.
type ActivityLog struct {
	ID          string    `bson:"_id" json:"id"`
	UserID      string    `bson:"user_id" json:"userId"`
	UserEmail   string    `bson:"user_email,omitempty" json:"userEmail,omitempty"`
	UserRole    string    `bson:"user_role,omitempty" json:"userRole,omitempty"`
	Action      string    `bson:"action" json:"action"`
	Description string    `bson:"description" json:"description"`
	EntityType  string    `bson:"entity_type,omitempty" json:"entityType,omitempty"`
	EntityID    string    `bson:"entity_id,omitempty" json:"entityId,omitempty"`
	EntityName  string    `bson:"entity_name,omitempty" json:"entityName,omitempty"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
	IP          string    `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent   string    `bson:"user_agent,omitempty" json:"userAgent,omitempty"`
	Changes     *Changes  `bson:"changes,omitempty" json:"changes,omitempty"`
}
