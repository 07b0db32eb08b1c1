package domain

import "go.mongodb.org/mongo-driver/v2/bson"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionLogin  AuditAction = "login"
	AuditActionLogout AuditAction = "logout"
)

type AuditCollection string

const (
	AuditCollectionUser   AuditCollection = "User"
	AuditCollectionMember AuditCollection = "Member"
	AuditCollectionRole   AuditCollection = "Role"
)

// FieldChange records an old/new value pair for one audited field.
type FieldChange struct {
	From any `bson:"from" json:"from"`
	To   any `bson:"to" json:"to"`
}

// AuditLog is append-only: records are never updated or deleted once written.
type AuditLog struct {
	ID         bson.ObjectID   `bson:"_id,omitempty"`
	Action     AuditAction     `bson:"action,omitempty"`
	Collection AuditCollection `bson:"collection,omitempty"`
	DocumentID bson.ObjectID   `bson:"documentID,omitempty"`
	UserID     bson.ObjectID   `bson:"userID,omitempty"`
	Changes    map[string]any  `bson:"changes,omitempty"`
	IP         string          `bson:"ip,omitempty"`
	UserAgent  string          `bson:"userAgent,omitempty"`
	RequestID  string          `bson:"requestID,omitempty"`
	Timestamp  int64           `bson:"timestamp,omitempty"`
}

// ActivityEntry joins an audit record with its actor's username for
// dashboard listings.
type ActivityEntry struct {
	AuditLog `bson:",inline"`
	UserName string `bson:"userName,omitempty"`
}
