package handlers

import (
	"time"

	"github.com/esusuconfam/esusu-api/internal/models"
	"github.com/esusuconfam/esusu-api/pkg/dto"
)

func toUserResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		PhoneNumber: u.PhoneNumber,
	}
}

// toGroupResponse converts a group for the wire. The invite code is included
// only when includeCode is set; everyone else gets the group without it.
func toGroupResponse(g *models.Group, includeCode bool) dto.GroupResponse {
	resp := dto.GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		MaxCapacity: g.MaxCapacity,
		Visibility:  g.Visibility,
		OwnerID:     g.OwnerID,
		MemberCount: g.MemberCount,
		CreatedAt:   g.CreatedAt.Format(time.RFC3339),
	}
	if includeCode {
		resp.InviteCode = g.InviteCode
	}
	if g.Owner != nil {
		owner := toUserResponse(g.Owner)
		resp.Owner = &owner
	}
	return resp
}

func toGroupMemberResponse(m *models.GroupMember) dto.GroupMemberResponse {
	resp := dto.GroupMemberResponse{
		ID:       m.ID,
		UserID:   m.UserID,
		GroupID:  m.GroupID,
		JoinedAt: m.JoinedAt.Format(time.RFC3339),
	}
	if m.User != nil {
		user := toUserResponse(m.User)
		resp.User = &user
	}
	return resp
}

func toJoinRequestResponse(r *models.JoinRequest) dto.JoinRequestResponse {
	resp := dto.JoinRequestResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		GroupID:   r.GroupID,
		Status:    r.Status,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
	}
	if r.User != nil {
		user := toUserResponse(r.User)
		resp.User = &user
	}
	return resp
}

func toInviteResponse(i *models.Invite) dto.InviteResponse {
	resp := dto.InviteResponse{
		ID:         i.ID,
		SenderID:   i.SenderID,
		ReceiverID: i.ReceiverID,
		GroupID:    i.GroupID,
		Status:     i.Status,
		CreatedAt:  i.CreatedAt.Format(time.RFC3339),
	}
	if i.Sender != nil {
		sender := toUserResponse(i.Sender)
		resp.Sender = &sender
	}
	if i.Group != nil {
		group := toGroupResponse(i.Group, false)
		resp.Group = &group
	}
	return resp
}
