package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/stockpile-ims/stockpile/internal/shared"
)

type captureEnqueuer struct {
	tasks []*asynq.Task
}

func (c *captureEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	c.tasks = append(c.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func newServiceFixture(t *testing.T, users ...*User) (*Service, *captureEnqueuer) {
	t.Helper()
	repo := &stubUserRepo{users: map[int64]*User{}}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	throttle := NewLoginThrottle(client, nil, 3, time.Minute)
	enqueuer := &captureEnqueuer{}
	return NewService(repo, throttle, enqueuer, nil), enqueuer
}

func activeUser(t *testing.T, id int64, email, username, password string) *User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return &User{ID: id, Email: email, Username: username, PasswordHash: hash, IsActive: true}
}

func TestAuthenticateSuccess(t *testing.T) {
	svc, _ := newServiceFixture(t, activeUser(t, 1, "user@test.local", "user1", "correctpass"))

	got, err := svc.Authenticate(context.Background(), "user@test.local", "correctpass")
	require.NoError(t, err)
	require.Equal(t, int64(1), got.ID)

	// Username works as identifier too.
	got, err = svc.Authenticate(context.Background(), "user1", "correctpass")
	require.NoError(t, err)
	require.Equal(t, int64(1), got.ID)
}

func TestAuthenticateUniformFailure(t *testing.T) {
	svc, _ := newServiceFixture(t, activeUser(t, 1, "user@test.local", "user1", "correctpass"))

	// Wrong password and unknown identifier yield the identical error: the
	// caller cannot tell which part was wrong.
	_, err := svc.Authenticate(context.Background(), "user@test.local", "wrongpass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@test.local", "whatever1")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactiveAccount(t *testing.T) {
	user := activeUser(t, 2, "off@test.local", "", "correctpass")
	user.IsActive = false
	svc, _ := newServiceFixture(t, user)

	_, err := svc.Authenticate(context.Background(), "off@test.local", "correctpass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateThrottlesRepeatedFailures(t *testing.T) {
	svc, _ := newServiceFixture(t, activeUser(t, 1, "user@test.local", "user1", "correctpass"))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Authenticate(ctx, "user@test.local", "wrongpass")
		require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	}

	// Limit reached: even the correct password is rejected until the window
	// passes.
	_, err := svc.Authenticate(ctx, "user@test.local", "correctpass")
	require.ErrorIs(t, err, shared.ErrTooManyAttempts)
}

func TestAuthenticateSuccessResetsThrottle(t *testing.T) {
	svc, _ := newServiceFixture(t, activeUser(t, 1, "user@test.local", "user1", "correctpass"))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Authenticate(ctx, "user@test.local", "wrongpass")
		require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	}
	_, err := svc.Authenticate(ctx, "user@test.local", "correctpass")
	require.NoError(t, err)

	// Counter was reset; failures start from zero again.
	for i := 0; i < 2; i++ {
		_, err := svc.Authenticate(ctx, "user@test.local", "wrongpass")
		require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	}
	_, err = svc.Authenticate(ctx, "user@test.local", "correctpass")
	require.NoError(t, err)
}

func TestRequestPasswordResetHidesAccountExistence(t *testing.T) {
	svc, enqueuer := newServiceFixture(t, activeUser(t, 1, "user@test.local", "user1", "correctpass"))
	ctx := context.Background()

	require.NoError(t, svc.RequestPasswordReset(ctx, "user@test.local"))
	require.Len(t, enqueuer.tasks, 1)

	// Unknown account: same nil result, no task.
	require.NoError(t, svc.RequestPasswordReset(ctx, "nobody@test.local"))
	require.Len(t, enqueuer.tasks, 1)
}
