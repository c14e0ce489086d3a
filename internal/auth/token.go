package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nurpe/liftcare/internal/model"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrRevoked      = errors.New("session signed out")
)

// Claims are embedded in every access token.
type Claims struct {
	UserID     string `json:"user_id"`
	Role       string `json:"role"`
	CustomerID string `json:"customer_id,omitempty"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

func (c *Claims) Principal() (model.Principal, error) {
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return model.Principal{}, fmt.Errorf("%w: user id", ErrInvalidToken)
	}
	role, ok := model.ParseRole(c.Role)
	if !ok {
		return model.Principal{}, fmt.Errorf("%w: role", ErrInvalidToken)
	}
	principal := model.Principal{UserID: userID, Role: role, Email: c.Email}
	if c.CustomerID != "" {
		customerID, err := uuid.Parse(c.CustomerID)
		if err != nil {
			return model.Principal{}, fmt.Errorf("%w: customer id", ErrInvalidToken)
		}
		principal.CustomerID = &customerID
	}
	return principal, nil
}

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

func (p *Parser) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return p.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs an HS256 access token for principal and returns it with its expiry.
func (i *Issuer) Issue(principal model.Principal) (string, time.Time, error) {
	issuedAt := i.now().UTC()
	expiresAt := issuedAt.Add(i.ttl)
	claims := Claims{
		UserID: principal.UserID.String(),
		Role:   string(principal.Role),
		Email:  principal.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   principal.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if principal.CustomerID != nil {
		claims.CustomerID = principal.CustomerID.String()
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}
