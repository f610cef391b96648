package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	VisibilityPublic  = "PUBLIC"
	VisibilityPrivate = "PRIVATE"
)

const (
	JoinRequestPending  = "PENDING"
	JoinRequestApproved = "APPROVED"
	JoinRequestRejected = "REJECTED"
)

const (
	InviteSent     = "SENT"
	InviteAccepted = "ACCEPTED"
	InviteDeclined = "DECLINED"
)

type Group struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	MaxCapacity int       `json:"max_capacity"`
	Visibility  string    `json:"visibility"`
	InviteCode  *string   `json:"invite_code,omitempty"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// MemberCount is derived from group_members; queries that need it compute
	// it as a live aggregate, it is never stored.
	MemberCount int   `json:"member_count"`
	Owner       *User `json:"owner,omitempty"`
}

type GroupMember struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	GroupID  uuid.UUID `json:"group_id"`
	JoinedAt time.Time `json:"joined_at"`
	User     *User     `json:"user,omitempty"`
}

type JoinRequest struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	GroupID   uuid.UUID `json:"group_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      *User     `json:"user,omitempty"`
	Group     *Group    `json:"group,omitempty"`
}

type Invite struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	GroupID    uuid.UUID `json:"group_id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Sender     *User     `json:"sender,omitempty"`
	Group      *Group    `json:"group,omitempty"`
}
