package dto

import "github.com/google/uuid"

type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
}

type ProfileResponse struct {
	User         UserResponse    `json:"user"`
	CurrentGroup *GroupResponse  `json:"current_group,omitempty"`
	OwnedGroups  []GroupResponse `json:"owned_groups"`
}

type RespondInviteRequest struct {
	Accept *bool `json:"accept"`
}
