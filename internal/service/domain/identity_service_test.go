package domain

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/qs-lzh/troupe/internal/model"
	"github.com/qs-lzh/troupe/internal/repository"
	"github.com/qs-lzh/troupe/internal/service"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	user, err := f.identity.Register(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, model.RoleActor, user.Role)
	assert.Equal(t, model.PartNo, user.IsPart)
	assert.NotEqual(t, "secret", user.PasswordHash)

	_, err = f.identity.Register(ctx, "alice", "other")
	assert.True(t, errors.Is(err, service.ErrConflict))
	_, err = f.identity.Register(ctx, "", "secret")
	assert.True(t, errors.Is(err, service.ErrValidation))

	_, err = f.identity.Login(ctx, "alice", "wrong")
	assert.True(t, errors.Is(err, service.ErrUnauthorized))
	_, err = f.identity.Login(ctx, "nobody", "secret")
	assert.True(t, errors.Is(err, service.ErrUnauthorized))

	result, err := f.identity.Login(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, model.RoleActor, result.User.Role)
	require.NotNil(t, result.User.LastLoginAt)

	current, err := f.identity.CurrentUser(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", current.Username)
}

func TestSessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.identity.Register(ctx, "alice", "secret")
	require.NoError(t, err)
	_, err = f.identity.Register(ctx, "bob", "secret")
	require.NoError(t, err)

	alice, err := f.identity.Login(ctx, "alice", "secret")
	require.NoError(t, err)
	bob, err := f.identity.Login(ctx, "bob", "secret")
	require.NoError(t, err)

	// a second login does not displace the first
	current, err := f.identity.CurrentUser(ctx, alice.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", current.Username)

	require.NoError(t, f.identity.Logout(ctx, alice.Token))
	_, err = f.identity.CurrentUser(ctx, alice.Token)
	assert.True(t, errors.Is(err, service.ErrUnauthorized))

	current, err = f.identity.CurrentUser(ctx, bob.Token)
	require.NoError(t, err)
	assert.Equal(t, "bob", current.Username)

	_, err = f.identity.CurrentUser(ctx, "")
	assert.True(t, errors.Is(err, service.ErrUnauthorized))
}

func TestRegisterPasswordLength(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.identity.Register(ctx, "alice", strings.Repeat("x", 73))
	assert.True(t, errors.Is(err, service.ErrValidation))
	assert.Equal(t, int64(0), countRows(t, f, &model.User{}, "username = ?", "alice"))

	longest := strings.Repeat("x", 72)
	_, err = f.identity.Register(ctx, "alice", longest)
	require.NoError(t, err)
	_, err = f.identity.Login(ctx, "alice", longest)
	require.NoError(t, err)
}

func TestOrganizerBootstrapSuffix(t *testing.T) {
	for _, tc := range []struct {
		name     string
		password string
		want     model.UserRole
	}{
		{name: "suffix", password: "pw20041889", want: model.RoleOrganizer},
		{name: "exact suffix", password: "20041889", want: model.RoleOrganizer},
		{name: "suffix not at end", password: "20041889pw", want: model.RoleActor},
		{name: "partial suffix", password: "pw2004188", want: model.RoleActor},
		{name: "plain", password: "secret", want: model.RoleActor},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)

			_, err := f.identity.Register(ctx, "alice", tc.password)
			require.NoError(t, err)
			result, err := f.identity.Login(ctx, "alice", tc.password)
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.User.Role)

			stored, err := f.identity.GetUser(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, tc.want, stored.Role)
		})
	}
}

func TestOrganizerBootstrapDisabled(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	identity := NewIdentityService(repository.NewUserRepoGorm(f.db), f.cache, IdentityOptions{SessionTTL: time.Minute}, zaptest.NewLogger(t))

	_, err := identity.Register(ctx, "alice", "pw20041889")
	require.NoError(t, err)
	result, err := identity.Login(ctx, "alice", "pw20041889")
	require.NoError(t, err)
	assert.Equal(t, model.RoleActor, result.User.Role)
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.identity.Register(ctx, "alice", "secret")
	require.NoError(t, err)
	_, err = f.identity.Register(ctx, "director", "secret20041889")
	require.NoError(t, err)
	_, err = f.identity.Login(ctx, "director", "secret20041889")
	require.NoError(t, err)

	avatar, err := f.identity.GetAvatar(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, avatar)
	require.NoError(t, f.identity.SetAvatar(ctx, "alice", []byte{1, 2, 3}))
	avatar, err = f.identity.GetAvatar(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, avatar)
	_, err = f.identity.GetAvatar(ctx, "ghost")
	assert.True(t, errors.Is(err, service.ErrNotFound))

	err = f.identity.SetParticipation(ctx, "alice", "maybe")
	assert.True(t, errors.Is(err, service.ErrValidation))
	require.NoError(t, f.identity.SetParticipation(ctx, "alice", model.PartYes))
	isPart, err := f.identity.GetParticipation(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.PartYes, isPart)

	organizers, err := f.identity.ListOrganizers(ctx)
	require.NoError(t, err)
	assert.Empty(t, organizers, "organizers must opt in")

	require.NoError(t, f.identity.SetParticipation(ctx, "director", model.PartYes))
	organizers, err = f.identity.ListOrganizers(ctx)
	require.NoError(t, err)
	require.Len(t, organizers, 1)
	assert.Equal(t, "director", organizers[0].Username)
}
