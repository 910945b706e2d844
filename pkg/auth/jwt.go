package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenNotValid = errors.New("token is not valid")
	ErrTokenExpired  = errors.New("token expired")
)

// Claims 会话令牌载荷；Subject 为用户 ID，ID(jti) 用于登出吊销
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserID 解析 Subject
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse subject: %w", ErrTokenNotValid)
	}
	return uint(id), nil
}

// JWTService 签发与校验 HS256 会话令牌
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTService(secret []byte, ttl time.Duration) *JWTService {
	return &JWTService{secret: secret, ttl: ttl, now: time.Now}
}

// TTL 令牌有效期
func (s *JWTService) TTL() time.Duration { return s.ttl }

// Issue 签发令牌
func (s *JWTService) Issue(userID uint, role string) (string, *Claims, error) {
	now := s.now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, claims, nil
}

// Parse 校验签名与过期时间
func (s *JWTService) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("jwt parse: %w: %w", err, ErrTokenNotValid)
	}
	if !parsed.Valid {
		return nil, ErrTokenNotValid
	}
	return claims, nil
}
