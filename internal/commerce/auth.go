package commerce

import (
	"context"
	"net/http"
	"strings"

	"github.com/goobits/storefront/internal/constants"
	"github.com/goobits/storefront/internal/models"
)

// AuthService 顾客认证接口
type AuthService struct {
	client *Client
}

// Authenticate 邮箱密码认证，返回后端签发的访问令牌
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", newAPIError(constants.ErrorKindValidation, 0, "email and password are required", nil)
	}
	var envelope struct {
		AccessToken string `json:"access_token"`
	}
	err := s.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/store/auth/token",
		body: map[string]string{
			"email":    email,
			"password": password,
		},
		kind: constants.ErrorKindValidation,
	}, &envelope)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(envelope.AccessToken) == "" {
		return "", newAPIError(constants.ErrorKindServer, 0, "", ErrResponseInvalid)
	}
	return envelope.AccessToken, nil
}

// GetSession 获取当前会话对应的顾客
func (s *AuthService) GetSession(ctx context.Context, token string) (*models.Customer, error) {
	var envelope customerEnvelope
	err := s.client.do(ctx, request{
		method: http.MethodGet,
		path:   "/store/auth",
		token:  token,
		kind:   constants.ErrorKindValidation,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.Customer, nil
}

// DeleteSession 注销当前会话
func (s *AuthService) DeleteSession(ctx context.Context, token string) error {
	return s.client.do(ctx, request{
		method: http.MethodDelete,
		path:   "/store/auth",
		token:  token,
		kind:   constants.ErrorKindValidation,
	}, nil)
}
