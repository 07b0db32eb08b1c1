package domain

import "go.mongodb.org/mongo-driver/v2/bson"

type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInactive MemberStatus = "inactive"
	MemberStatusPending  MemberStatus = "pending"
)

func (s MemberStatus) Valid() bool {
	switch s {
	case MemberStatusActive, MemberStatusInactive, MemberStatusPending:
		return true
	}
	return false
}

type Member struct {
	BaseEntity     `bson:",inline"`
	FirstName      string        `bson:"firstName,omitempty"`
	LastName       string        `bson:"lastName,omitempty"`
	Email          string        `bson:"email,omitempty"`
	Phone          string        `bson:"phone,omitempty"`
	Address        string        `bson:"address,omitempty"`
	City           string        `bson:"city,omitempty"`
	State          string        `bson:"state,omitempty"`
	ZipCode        string        `bson:"zipCode,omitempty"`
	DateOfBirth    int64         `bson:"dateOfBirth,omitempty"`
	Gender         string        `bson:"gender,omitempty"`
	Status         MemberStatus  `bson:"status,omitempty"`
	RoleID         bson.ObjectID `bson:"roleID,omitempty"`
	ProfilePicture string        `bson:"profilePicture,omitempty"`
	Notes          string        `bson:"notes,omitempty"`
}
