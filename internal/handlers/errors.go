package handlers

import (
	"errors"

	"github.com/esusuconfam/esusu-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
)

// respondServiceError maps service sentinel errors onto the HTTP error
// taxonomy. Anything unmapped is a 500 with a generic message; internals
// never leak to clients.
func respondServiceError(c *drift.Context, err error) {
	switch {
	case errors.Is(err, services.ErrGroupNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrInviteNotFound),
		errors.Is(err, services.ErrNotAMember):
		c.NotFound(err.Error())
	case errors.Is(err, services.ErrNotGroupOwner),
		errors.Is(err, services.ErrNotPublicGroup):
		c.Forbidden(err.Error())
	case errors.Is(err, services.ErrAlreadyInGroup),
		errors.Is(err, services.ErrGroupFull),
		errors.Is(err, services.ErrDuplicateJoinRequest),
		errors.Is(err, services.ErrDuplicateInvite),
		errors.Is(err, services.ErrRequestProcessed),
		errors.Is(err, services.ErrInviteProcessed),
		errors.Is(err, services.ErrEmailTaken):
		_ = c.JSON(409, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrCannotRemoveSelf),
		errors.Is(err, services.ErrPrivateOnlyInvites):
		c.BadRequest(err.Error())
	default:
		c.InternalServerError("internal server error")
	}
}
