package queue

import (
	"encoding/json"

	"github.com/goobits/storefront/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderConfirmation 订单确认通知任务
	TaskOrderConfirmation = constants.TaskOrderConfirmation
)

// OrderConfirmationPayload 订单确认通知任务载荷
type OrderConfirmationPayload struct {
	OrderID   string `json:"order_id"`
	DisplayID int64  `json:"display_id"`
	CartID    string `json:"cart_id"`
	Email     string `json:"email"`
}

// NewOrderConfirmationTask 创建订单确认通知任务
func NewOrderConfirmationTask(payload OrderConfirmationPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderConfirmation, body), nil
}
