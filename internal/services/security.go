package services

import (
	"crypto/rsa"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher is the two-method contract for password storage.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

const HasherBcrypt = "bcrypt"

type bcryptHasher struct {
	cost int
}

// NewPasswordHasher selects a hasher by tag. Only "bcrypt" exists today.
func NewPasswordHasher(tag string, cost int) (PasswordHasher, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "", HasherBcrypt:
		if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
			cost = bcrypt.DefaultCost
		}
		return bcryptHasher{cost: cost}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", tag)
	}
}

func (h bcryptHasher) Hash(plain string) (string, error) {
	raw, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (h bcryptHasher) Compare(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Claims are the access token claims. Subject carries the user id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenSigner issues and verifies access tokens.
type TokenSigner interface {
	Sign(userID uuid.UUID, role string) (token string, expiresAt time.Time, err error)
	Verify(token string) (*Claims, error)
}

const (
	SignerHS256 = "HS256"
	SignerRS256 = "RS256"
)

type SignerConfig struct {
	Algorithm      string
	SecretKey      string
	PrivateKeyPath string
	PublicKeyPath  string
	Issuer         string
	Audience       string
	TTL            time.Duration
}

type jwtSigner struct {
	method   jwt.SigningMethod
	signKey  any
	verifyFn jwt.Keyfunc
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenSigner builds an HS256 or RS256 signer from cfg.
func NewTokenSigner(cfg SignerConfig) (TokenSigner, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	s := &jwtSigner{
		issuer:   strings.TrimSpace(cfg.Issuer),
		audience: strings.TrimSpace(cfg.Audience),
		ttl:      ttl,
		now:      time.Now,
	}
	switch strings.ToUpper(strings.TrimSpace(cfg.Algorithm)) {
	case "", SignerHS256:
		if strings.TrimSpace(cfg.SecretKey) == "" {
			return nil, fmt.Errorf("HS256 signer requires a secret key")
		}
		secret := []byte(cfg.SecretKey)
		s.method = jwt.SigningMethodHS256
		s.signKey = secret
		s.verifyFn = func(t *jwt.Token) (any, error) { return secret, nil }
	case SignerRS256:
		priv, pub, err := loadRSAKeys(cfg.PrivateKeyPath, cfg.PublicKeyPath)
		if err != nil {
			return nil, err
		}
		s.method = jwt.SigningMethodRS256
		s.signKey = priv
		s.verifyFn = func(t *jwt.Token) (any, error) { return pub, nil }
	default:
		return nil, fmt.Errorf("unknown token signer %q", cfg.Algorithm)
	}
	return s, nil
}

func loadRSAKeys(privPath, pubPath string) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	privPEM, err := os.ReadFile(strings.TrimSpace(privPath))
	if err != nil {
		return nil, nil, fmt.Errorf("read RS256 private key: %w", err)
	}
	priv, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, nil, fmt.Errorf("parse RS256 private key: %w", err)
	}
	if strings.TrimSpace(pubPath) == "" {
		return priv, &priv.PublicKey, nil
	}
	pubPEM, err := os.ReadFile(strings.TrimSpace(pubPath))
	if err != nil {
		return nil, nil, fmt.Errorf("read RS256 public key: %w", err)
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, nil, fmt.Errorf("parse RS256 public key: %w", err)
	}
	return priv, pub, nil
}

func (s *jwtSigner) Sign(userID uuid.UUID, role string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}
	tok, err := jwt.NewWithClaims(s.method, claims).SignedString(s.signKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, exp, nil
}

func (s *jwtSigner) Verify(token string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, s.verifyFn, opts...)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
