package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Session roles.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

const sessionKeyPrefix = "session:"

// Session is the server-side record behind a session token.
type Session struct {
	ID        string    `json:"-"`
	SubjectID uint      `json:"subject"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires"`
}

// SessionClaims are carried by the signed session token.
type SessionClaims struct {
	SessionID string `json:"sid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// SessionService issues and validates portal sessions.
type SessionService interface {
	Issue(ctx context.Context, subjectID uint, role string) (string, Session, error)
	Validate(ctx context.Context, token string) (Session, error)
	Revoke(ctx context.Context, token string) error
	RevokeSubject(ctx context.Context, subjectID uint, role string) error
}

type sessionService struct {
	client *redis.Client
	secret []byte
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

// NewSessionService builds a redis backed session service signing tokens with secret.
func NewSessionService(client *redis.Client, secret string, ttl time.Duration, logger zerolog.Logger) SessionService {
	return &sessionService{
		client: client,
		secret: []byte(secret),
		ttl:    ttl,
		logger: logger.With().Str("component", "session_service").Logger(),
		now:    time.Now,
	}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// subjectKey indexes the live session ids of one portal account.
func subjectKey(role string, subjectID uint) string {
	return sessionKeyPrefix + "subject:" + role + ":" + strconv.FormatUint(uint64(subjectID), 10)
}

func (s *sessionService) Issue(ctx context.Context, subjectID uint, role string) (string, Session, error) {
	issuedAt := s.now()
	session := Session{
		ID:        uuid.NewString(),
		SubjectID: subjectID,
		Role:      role,
		ExpiresAt: issuedAt.Add(s.ttl),
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return "", Session{}, fmt.Errorf("encode session: %w", err)
	}
	index := subjectKey(role, subjectID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(session.ID), payload, s.ttl)
		pipe.SAdd(ctx, index, session.ID)
		pipe.Expire(ctx, index, s.ttl)
		return nil
	})
	if err != nil {
		return "", Session{}, fmt.Errorf("store session: %w", err)
	}

	claims := SessionClaims{
		SessionID: session.ID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(subjectID), 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("sign session: %w", err)
	}

	s.logger.Debug().Str("role", role).Uint("subject", subjectID).Msg("session issued")
	return token, session, nil
}

func (s *sessionService) Validate(ctx context.Context, token string) (Session, error) {
	claims, err := s.parse(token)
	if err != nil {
		return Session{}, err
	}

	raw, err := s.client.Get(ctx, sessionKey(claims.SessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, ErrSessionInvalid
		}
		return Session{}, fmt.Errorf("load session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return Session{}, ErrSessionInvalid
	}
	session.ID = claims.SessionID

	subject, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || uint(subject) != session.SubjectID || claims.Role != session.Role {
		return Session{}, ErrSessionInvalid
	}
	if !session.ExpiresAt.After(s.now()) {
		return Session{}, ErrSessionInvalid
	}

	return session, nil
}

func (s *sessionService) Revoke(ctx context.Context, token string) error {
	claims, err := s.parse(token)
	if err != nil {
		if errors.Is(err, ErrSessionInvalid) {
			return nil
		}
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(claims.SessionID))
		if subject, convErr := strconv.ParseUint(claims.Subject, 10, 64); convErr == nil {
			pipe.SRem(ctx, subjectKey(claims.Role, uint(subject)), claims.SessionID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// RevokeSubject drops every live session of one account.
func (s *sessionService) RevokeSubject(ctx context.Context, subjectID uint, role string) error {
	index := subjectKey(role, subjectID)
	ids, err := s.client.SMembers(ctx, index).Result()
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
	}
	keys = append(keys, index)
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	s.logger.Info().Str("role", role).Uint("subject", subjectID).Int("sessions", len(ids)).Msg("sessions revoked")
	return nil
}

func (s *sessionService) parse(token string) (*SessionClaims, error) {
	if token == "" {
		return nil, ErrSessionInvalid
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid || claims.SessionID == "" {
		return nil, ErrSessionInvalid
	}

	return claims, nil
}
