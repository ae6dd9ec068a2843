package httpapi_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korylprince/dental-receptionist/httpapi"
)

func TestMemorySessionStore(t *testing.T) {
	s := httpapi.NewMemorySessionStore(time.Hour)
	defer s.Close()

	id, err := s.Create()
	require.NoError(t, err)
	require.NotEmpty(t, id)

	other, err := s.Create()
	require.NoError(t, err)
	assert.NotEqual(t, id, other)

	sess, err := s.Check(id)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, id, sess.ID)

	sess, err = s.Touch(id)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.Turns)
	sess, err = s.Touch(id)
	require.NoError(t, err)
	assert.Equal(t, 2, sess.Turns)

	sess, err = s.Check("unknown")
	require.NoError(t, err)
	assert.Nil(t, sess)

	// chatting on an unknown id starts a session
	sess, err = s.Touch("unknown")
	require.NoError(t, err)
	assert.Equal(t, 1, sess.Turns)

	s.Close()
	s.Close()
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	s := httpapi.NewMemorySessionStore(-time.Second)
	defer s.Close()

	id, err := s.Create()
	require.NoError(t, err)

	sess, err := s.Check(id)
	require.NoError(t, err)
	assert.Nil(t, sess)

	s.Touch(id)
	sess, err = s.Touch(id)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.Turns)
}
