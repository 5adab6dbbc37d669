package model_test

import (
	"context"
	"strings"
	"testing"

	"eventdesk/src-server/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	userModel, err := model.CreateUser(ctx, db, "organizer", "s3cret-pass")
	require.NoError(t, err)
	assert.NotZero(t, userModel.ID)
	assert.NotEqual(t, "s3cret-pass", userModel.Password)
	assert.True(t, strings.HasPrefix(userModel.Password, "argon2$argon2id$v=19$"))

	_, err = model.CreateUser(ctx, db, "organizer", "another")
	assert.ErrorIs(t, err, model.ErrUsernameTaken)

	stored, err := model.GetUserByUsername(ctx, db, "organizer")
	require.NoError(t, err)
	assert.True(t, model.CheckPassword(stored.Password, "s3cret-pass"))
	assert.False(t, model.CheckPassword(stored.Password, "wrong"))
}

func TestCheckPasswordRejectsGarbage(t *testing.T) {
	for _, encoded := range []string{
		"",
		"pbkdf2_sha256$1$salt$hash",
		"argon2$argon2id$v=19$m=1,t=1,p=1$!!$!!",
		"argon2$argon2i$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
	} {
		assert.False(t, model.CheckPassword(encoded, "whatever"), encoded)
	}
}
