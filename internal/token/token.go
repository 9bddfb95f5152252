// Package token issues and checks the short-lived credentials observers
// present to subscribe to a debate channel.
package token

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultIssuer = "debate-arena"

var (
	// ErrInvalid is returned for malformed or badly signed tokens.
	ErrInvalid = errors.New("token: invalid")
	// ErrExpired is returned once a token is past its expiry.
	ErrExpired = errors.New("token: expired")
	// ErrScope is returned when a token does not grant the requested
	// channel or topic.
	ErrScope = errors.New("token: not valid for this channel")
)

// Token is an issued credential.
type Token struct {
	Value     string    `json:"token"`
	Channel   string    `json:"channel"`
	Topics    []string  `json:"topics"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Claims are the validated contents of a token.
type Claims struct {
	ID        string
	Channel   string
	Topics    []string
	ExpiresAt time.Time
}

type claims struct {
	jwt.RegisteredClaims
	Channel string   `json:"channel"`
	Topics  []string `json:"topics"`
}

// Issuer signs and verifies HS256 tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer. The secret must not be empty.
func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("token: secret is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for channel limited to topics.
func (i *Issuer) Issue(channel string, topics []string) (Token, error) {
	if channel == "" {
		return Token{}, fmt.Errorf("token: channel is required")
	}
	if len(topics) == 0 {
		return Token{}, fmt.Errorf("token: at least one topic is required")
	}
	now := i.now().UTC()
	exp := now.Add(i.ttl)
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    defaultIssuer,
			Subject:   channel,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Channel: channel,
		Topics:  append([]string(nil), topics...),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return Token{}, fmt.Errorf("token: sign: %w", err)
	}
	return Token{Value: signed, Channel: channel, Topics: c.Topics, ExpiresAt: exp.Truncate(time.Second)}, nil
}

// Validate verifies raw and checks that it grants topic on channel.
func (i *Issuer) Validate(raw, channel, topic string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, fmt.Errorf("%w: token is required", ErrInvalid)
	}
	var parsed claims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(defaultIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Claims{}, mapJWTError(err)
	}
	if parsed.Channel != channel || !slices.Contains(parsed.Topics, topic) {
		return Claims{}, ErrScope
	}
	return Claims{
		ID:        parsed.ID,
		Channel:   parsed.Channel,
		Topics:    parsed.Topics,
		ExpiresAt: parsed.ExpiresAt.Time.UTC(),
	}, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	default:
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
}
