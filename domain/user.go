package domain

import "go.mongodb.org/mongo-driver/v2/bson"

type User struct {
	BaseEntity `bson:",inline"`
	UserName   string            `bson:"username,omitempty"`
	Email      string            `bson:"email,omitempty"`
	Password   EncryptedPassword `bson:"password,omitempty"`
	RoleID     bson.ObjectID     `bson:"roleID,omitempty"`
	IsActive   bool              `bson:"isActive"`
	LastLogin  int64             `bson:"lastLogin,omitempty"`
}

type Role struct {
	BaseEntity  `bson:",inline"`
	Name        string   `bson:"name,omitempty"`
	Description string   `bson:"description,omitempty"`
	Permissions []string `bson:"permissions,omitempty"`
}

const (
	AdminRole   = "admin"
	DefaultRole = "member"
)
