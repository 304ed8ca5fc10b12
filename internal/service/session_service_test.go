package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestSessions(t *testing.T, ttl time.Duration) (*sessionService, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := NewSessionService(client, "test-secret", ttl, zerolog.Nop()).(*sessionService)
	svc.now = func() time.Time { return fixedNow }
	return svc, mr
}

func TestSessionIssueValidateRevoke(t *testing.T) {
	svc, mr := newTestSessions(t, time.Hour)
	ctx := context.Background()

	token, session, err := svc.Issue(ctx, 42, RoleTeacher)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, uint(42), session.SubjectID)
	require.True(t, mr.Exists(sessionKey(session.ID)))
	require.Equal(t, time.Hour, mr.TTL(sessionKey(session.ID)))

	validated, err := svc.Validate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, session.ID, validated.ID)
	require.Equal(t, RoleTeacher, validated.Role)
	require.Equal(t, uint(42), validated.SubjectID)

	require.NoError(t, svc.Revoke(ctx, token))
	require.False(t, mr.Exists(sessionKey(session.ID)))

	_, err = svc.Validate(ctx, token)
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func TestSessionRejectsTamperedAndExpiredTokens(t *testing.T) {
	svc, mr := newTestSessions(t, time.Hour)
	ctx := context.Background()

	token, session, err := svc.Issue(ctx, 7, RoleStudent)
	require.NoError(t, err)

	_, err = svc.Validate(ctx, token+"x")
	require.ErrorIs(t, err, ErrSessionInvalid)

	_, err = svc.Validate(ctx, "")
	require.ErrorIs(t, err, ErrSessionInvalid)

	forged := NewSessionService(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "other-secret", time.Hour, zerolog.Nop())
	forgedToken, _, err := forged.Issue(ctx, 7, RoleStudent)
	require.NoError(t, err)
	_, err = svc.Validate(ctx, forgedToken)
	require.ErrorIs(t, err, ErrSessionInvalid)

	mr.FastForward(2 * time.Hour)
	require.False(t, mr.Exists(sessionKey(session.ID)))
	_, err = svc.Validate(ctx, token)
	require.ErrorIs(t, err, ErrSessionInvalid)

	svc.now = func() time.Time { return fixedNow.Add(2 * time.Hour) }
	fresh, _, err := svc.Issue(ctx, 7, RoleStudent)
	require.NoError(t, err)
	svc.now = func() time.Time { return fixedNow.Add(4 * time.Hour) }
	_, err = svc.Validate(ctx, fresh)
	require.ErrorIs(t, err, ErrSessionInvalid)

	require.NoError(t, svc.Revoke(ctx, "garbage"))
}

func TestSessionRevokeSubjectDropsEveryAccountSession(t *testing.T) {
	svc, mr := newTestSessions(t, time.Hour)
	ctx := context.Background()

	first, _, err := svc.Issue(ctx, 9, RoleStudent)
	require.NoError(t, err)
	second, _, err := svc.Issue(ctx, 9, RoleStudent)
	require.NoError(t, err)
	other, _, err := svc.Issue(ctx, 9, RoleTeacher)
	require.NoError(t, err)

	members, err := mr.Members(subjectKey(RoleStudent, 9))
	require.NoError(t, err)
	require.Len(t, members, 2)

	require.NoError(t, svc.Revoke(ctx, first))
	members, err = mr.Members(subjectKey(RoleStudent, 9))
	require.NoError(t, err)
	require.Len(t, members, 1)

	require.NoError(t, svc.RevokeSubject(ctx, 9, RoleStudent))
	_, err = svc.Validate(ctx, second)
	require.ErrorIs(t, err, ErrSessionInvalid)
	require.False(t, mr.Exists(subjectKey(RoleStudent, 9)))

	_, err = svc.Validate(ctx, other)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeSubject(ctx, 404, RoleStudent))
}
