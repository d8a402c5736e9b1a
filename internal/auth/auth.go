package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/goobits/storefront/internal/config"
	"github.com/goobits/storefront/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrSecretMissing JWT 密钥未配置
	ErrSecretMissing = errors.New("auth: jwt secret missing")
	// ErrTokenInvalid 令牌无效
	ErrTokenInvalid = errors.New("auth: token invalid")
)

// SessionClaims 店面会话声明。令牌包裹商城后端的访问令牌，
// 前端只持有单个凭证。
type SessionClaims struct {
	CustomerID   string `json:"customer_id"`
	Email        string `json:"email"`
	BackendToken string `json:"backend_token"`
	jwt.RegisteredClaims
}

// Service 会话令牌服务
type Service struct {
	cfg config.JWTConfig
}

// NewService 创建会话令牌服务
func NewService(cfg config.JWTConfig) *Service {
	return &Service{cfg: cfg}
}

// GenerateSessionToken 签发店面会话令牌
func (s *Service) GenerateSessionToken(customer *models.Customer, backendToken string) (string, time.Time, error) {
	if strings.TrimSpace(s.cfg.SecretKey) == "" {
		return "", time.Time{}, ErrSecretMissing
	}
	if customer == nil {
		return "", time.Time{}, ErrTokenInvalid
	}
	expireHours := s.cfg.ExpireHours
	if expireHours <= 0 {
		expireHours = 24
	}
	expiresAt := time.Now().Add(time.Duration(expireHours) * time.Hour)
	claims := SessionClaims{
		CustomerID:   customer.ID,
		Email:        customer.Email,
		BackendToken: backendToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseSessionToken 解析并校验会话令牌
func (s *Service) ParseSessionToken(tokenString string) (*SessionClaims, error) {
	if strings.TrimSpace(s.cfg.SecretKey) == "" {
		return nil, ErrSecretMissing
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &SessionClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrTokenInvalid
}
