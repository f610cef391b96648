package handlers

import (
	"testing"
	"time"

	"github.com/esusuconfam/esusu-api/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *services.JWTService {
	return services.NewJWTService("test-secret-key", time.Hour)
}

func generateTestToken(t *testing.T, jwtSvc *services.JWTService, userID uuid.UUID, email string) string {
	t.Helper()
	token, err := jwtSvc.GenerateToken(userID, email)
	require.NoError(t, err)
	return token
}
