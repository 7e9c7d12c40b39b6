package jwtoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "tome/pkg/domain"
	dErrors "tome/pkg/domainerrors"
)

func newTestService() *Service {
	return NewService("test-signing-key", "tome", "tome-api")
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService()
	userID := id.NewUserID()

	token, err := svc.GenerateAccessToken(userID, time.Minute)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.NotEmpty(t, claims.ID, "jti must be set for revocation tracking")
}

func TestValidate_ExpiredToken(t *testing.T) {
	svc := newTestService()

	token, err := svc.GenerateAccessToken(id.NewUserID(), -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidate_WrongKey(t *testing.T) {
	token, err := newTestService().GenerateAccessToken(id.NewUserID(), time.Minute)
	require.NoError(t, err)

	other := NewService("different-key", "tome", "tome-api")
	_, err = other.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidate_WrongAudience(t *testing.T) {
	minted := NewService("test-signing-key", "tome", "other-api")
	token, err := minted.GenerateAccessToken(id.NewUserID(), time.Minute)
	require.NoError(t, err)

	_, err = newTestService().ValidateToken(token)
	require.Error(t, err)
}

func TestValidate_Garbage(t *testing.T) {
	_, err := newTestService().ValidateToken("not.a.token")
	require.Error(t, err)
}
