package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateDetails_EmptyFieldsKeepCurrentValues(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	authSvc := newAuthService(users, &fakeNotifier{})
	u, err := authSvc.Register(context.Background(), "Alice", "alice@example.com", "", "secret123")
	require.NoError(t, err)

	svc := NewUserService(users)

	got, err := svc.UpdateDetails(context.Background(), u.ID, "Alice B", "")
	require.NoError(t, err)
	assert.Equal(t, "Alice B", got.Name)
	assert.Equal(t, "alice@example.com", got.Email)

	got, err = svc.UpdateDetails(context.Background(), u.ID, "", "alice.b@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice B", got.Name)
	assert.Equal(t, "alice.b@example.com", got.Email)
}

func TestMe_UnknownUser(t *testing.T) {
	t.Parallel()

	svc := NewUserService(newFakeUserRepo())
	_, err := svc.Me(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}
