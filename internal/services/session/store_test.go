package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-ordering/internal/logger"
	"food-ordering/internal/models"
)

func TestStore_SignInOut(t *testing.T) {
	s := NewStore(logger.Discard())

	_, ok := s.Current()
	assert.False(t, ok)

	require.NoError(t, s.SignIn(models.User{ID: "u1", Name: "Ada", Email: "ada@example.com"}))
	u, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "Ada", u.Name)

	s.SignOut()
	_, ok = s.Current()
	assert.False(t, ok)
	assert.ErrorIs(t, s.UpdateProfile("Ada", "ada@example.com", ""), ErrNotSignedIn)
}

func TestStore_Validation(t *testing.T) {
	s := NewStore(logger.Discard())

	assert.Error(t, s.SignIn(models.User{Name: "Ada", Email: "ada@example.com"}))
	assert.Error(t, s.SignIn(models.User{ID: "u1", Email: "ada@example.com"}))
	assert.Error(t, s.SignIn(models.User{ID: "u1", Name: "Ada", Email: "not-an-email"}))

	require.NoError(t, s.SignIn(models.User{ID: "u1", Name: "Ada", Email: "ada@example.com"}))
	assert.Error(t, s.UpdateProfile("Ada", "broken", ""))

	require.NoError(t, s.UpdateProfile(" Ada L. ", "ada@example.org", "555-0100"))
	u, _ := s.Current()
	assert.Equal(t, "Ada L.", u.Name)
	assert.Equal(t, "555-0100", u.Phone)
}
