package commerce

import (
	"context"
	"net/http"
	"strings"

	"github.com/goobits/storefront/internal/constants"
	"github.com/goobits/storefront/internal/models"
)

// CustomersService 顾客接口
type CustomersService struct {
	client *Client
}

// customerEnvelope 顾客响应包裹
type customerEnvelope struct {
	Customer *models.Customer `json:"customer"`
}

// CreateCustomerInput 注册顾客输入
type CreateCustomerInput struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Password  string `json:"password"`
}

// UpdateCustomerInput 更新顾客输入
type UpdateCustomerInput struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Create 注册顾客
func (s *CustomersService) Create(ctx context.Context, input CreateCustomerInput) (*models.Customer, error) {
	if strings.TrimSpace(input.Email) == "" {
		return nil, newAPIError(constants.ErrorKindValidation, 0, "email is required", nil)
	}
	var envelope customerEnvelope
	err := s.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/store/customers",
		body:   input,
		kind:   constants.ErrorKindValidation,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.Customer, nil
}

// Update 更新当前顾客资料
func (s *CustomersService) Update(ctx context.Context, token string, input UpdateCustomerInput) (*models.Customer, error) {
	var envelope customerEnvelope
	err := s.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/store/customers/me",
		body:   input,
		token:  token,
		kind:   constants.ErrorKindValidation,
	}, &envelope)
	if err != nil {
		return nil, err
	}
	return envelope.Customer, nil
}
