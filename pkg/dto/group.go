package dto

import "github.com/google/uuid"

type CreateGroupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MaxCapacity int    `json:"max_capacity"`
	Visibility  string `json:"visibility"`
}

type HandleJoinRequestRequest struct {
	Action string `json:"action"`
}

type InviteUserRequest struct {
	Email string `json:"email"`
}

type JoinWithCodeRequest struct {
	InviteCode string `json:"invite_code"`
}

type GroupResponse struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	MaxCapacity int           `json:"max_capacity"`
	Visibility  string        `json:"visibility"`
	InviteCode  *string       `json:"invite_code,omitempty"`
	OwnerID     uuid.UUID     `json:"owner_id"`
	MemberCount int           `json:"member_count"`
	CreatedAt   string        `json:"created_at"`
	Owner       *UserResponse `json:"owner,omitempty"`
}

type GroupMemberResponse struct {
	ID       uuid.UUID     `json:"id"`
	UserID   uuid.UUID     `json:"user_id"`
	GroupID  uuid.UUID     `json:"group_id"`
	JoinedAt string        `json:"joined_at"`
	User     *UserResponse `json:"user,omitempty"`
}

type JoinRequestResponse struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"user_id"`
	GroupID   uuid.UUID     `json:"group_id"`
	Status    string        `json:"status"`
	CreatedAt string        `json:"created_at"`
	User      *UserResponse `json:"user,omitempty"`
}

type InviteResponse struct {
	ID         uuid.UUID      `json:"id"`
	SenderID   uuid.UUID      `json:"sender_id"`
	ReceiverID uuid.UUID      `json:"receiver_id"`
	GroupID    uuid.UUID      `json:"group_id"`
	Status     string         `json:"status"`
	CreatedAt  string         `json:"created_at"`
	Sender     *UserResponse  `json:"sender,omitempty"`
	Group      *GroupResponse `json:"group,omitempty"`
}
