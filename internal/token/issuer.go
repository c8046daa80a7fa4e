// Package token issues and verifies user session tokens and manages the
// service credential used by internal tooling.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kinds of session tokens.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// ErrInvalid is returned for any token that fails verification.
var ErrInvalid = errors.New("invalid token")

// Claims carried by every session token.
type Claims struct {
	UserID int64  `json:"uid"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

// Pair is what a successful register, login or refresh hands back.
type Pair struct {
	Access  string `json:"token"`
	Refresh string `json:"refresh"`
}

// Issuer signs HS256 session tokens.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewIssuer creates an Issuer. The secret must not be empty.
func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token: empty signing secret")
	}
	return &Issuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// Issue returns a fresh access and refresh token for userID.
func (i *Issuer) Issue(userID int64) (Pair, error) {
	access, err := i.sign(userID, KindAccess, i.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := i.sign(userID, KindRefresh, i.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// ParseAccess verifies an access token and returns its user id.
func (i *Issuer) ParseAccess(tokenStr string) (int64, error) {
	c, err := i.parse(tokenStr, KindAccess)
	if err != nil {
		return 0, err
	}
	return c.UserID, nil
}

// Refresh verifies a refresh token and issues a new pair for its user.
func (i *Issuer) Refresh(refreshToken string) (int64, Pair, error) {
	c, err := i.parse(refreshToken, KindRefresh)
	if err != nil {
		return 0, Pair{}, err
	}
	p, err := i.Issue(c.UserID)
	return c.UserID, p, err
}

func (i *Issuer) sign(userID int64, kind string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := &Claims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return s, nil
}

func (i *Issuer) parse(tokenStr, kind string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || c.Kind != kind || c.UserID <= 0 {
		return nil, ErrInvalid
	}
	return c, nil
}
