package auth

import (
    "crypto/rand"   // secure random generation for refresh secrets
    "crypto/sha256" // one-way hashing of refresh secrets
    "encoding/hex"
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/google/uuid"
)

// Token type discriminants.  A signed token carries exactly one of these
// in its "type" claim; tokens of different purposes are never
// interchangeable, so a password-reset token presented as a bearer
// credential is rejected at the codec.
const (
    TokenTypeAccess        = "access"
    TokenTypePasswordReset = "password_reset"
    TokenTypeEmailVerify   = "email_verification"
)

// Claims is the decoded payload of a signed token: the standard
// registered claims (subject, issued-at, expiry, jti) plus the type
// discriminant.  Claims are ephemeral, nothing here is persisted; the
// jti only reappears as a denylist key when a token is revoked early.
type Claims struct {
    TokenType string `json:"type"`
    jwt.RegisteredClaims
}

// Codec signs and verifies HS256 tokens.  It is a pure function of the
// signing secret and the clock; it performs no I/O.
type Codec struct {
    secret []byte
    now    func() time.Time
}

// NewCodec builds a Codec for the given signing secret.
func NewCodec(secret string) *Codec {
    return &Codec{secret: []byte(secret), now: time.Now}
}

// Sign issues a token of the given type for a subject with the given
// lifetime.  Each token receives a fresh uuid jti so that individual
// tokens can be denylisted without storing any token material.
func (c *Codec) Sign(subject, tokenType string, ttl time.Duration) (string, time.Time, error) {
    now := c.now().UTC()
    exp := now.Add(ttl)
    claims := Claims{
        TokenType: tokenType,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   subject,
            IssuedAt:  jwt.NewNumericDate(now),
            ExpiresAt: jwt.NewNumericDate(exp),
            ID:        uuid.NewString(),
        },
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString(c.secret)
    if err != nil {
        return "", time.Time{}, err
    }
    return signed, exp, nil
}

// Verify checks signature, expiry and token type.  It returns
// ErrTokenExpired for a well-formed token past its expiry and
// ErrInvalidToken for everything else that is wrong: bad signature,
// malformed payload, unexpected signing method or wrong type.
func (c *Codec) Verify(token, wantType string) (*Claims, error) {
    parsed, err := jwt.ParseWithClaims(token, &Claims{}, c.keyFunc,
        jwt.WithTimeFunc(c.now),
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return nil, ErrTokenExpired
        }
        return nil, ErrInvalidToken
    }
    claims, ok := parsed.Claims.(*Claims)
    if !ok || !parsed.Valid {
        return nil, ErrInvalidToken
    }
    if claims.TokenType != wantType {
        return nil, ErrInvalidToken
    }
    return claims, nil
}

// DecodeUnsafe verifies the signature but skips claim validation, so an
// expired token still yields its claims.  Logout needs this: revoking an
// access token requires its jti and expiry even when the token has only
// seconds left to live.
func (c *Codec) DecodeUnsafe(token string) (*Claims, error) {
    parsed, err := jwt.ParseWithClaims(token, &Claims{}, c.keyFunc,
        jwt.WithTimeFunc(c.now),
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
        jwt.WithoutClaimsValidation())
    if err != nil {
        return nil, ErrInvalidToken
    }
    claims, ok := parsed.Claims.(*Claims)
    if !ok {
        return nil, ErrInvalidToken
    }
    return claims, nil
}

func (c *Codec) keyFunc(t *jwt.Token) (interface{}, error) {
    if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
        return nil, ErrInvalidToken
    }
    return c.secret, nil
}

// NewRefreshSecret returns a cryptographically random refresh secret as
// a 96-character hex string.  The raw value exists only in the response
// to the client; everywhere else it is represented by its hash.
func NewRefreshSecret() (string, error) {
    return randomHex(48)
}

// HashRefreshSecret returns the SHA-256 hash of a raw refresh secret as
// a hex string.  Storing only the hash means a stolen database dump
// cannot be replayed as live sessions.  Hashing is deterministic: the
// same raw secret always maps to the same column value.
func HashRefreshSecret(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
    buf := make([]byte, n)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}
