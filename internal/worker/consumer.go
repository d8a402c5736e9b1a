package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goobits/storefront/internal/i18n"
	"github.com/goobits/storefront/internal/logger"
	"github.com/goobits/storefront/internal/queue"

	"github.com/hibiken/asynq"
)

// NotificationSender 订单确认通知投递接口
type NotificationSender interface {
	Send(ctx context.Context, email, subject, body string) error
}

// LogSender 结构化日志投递，未接入邮件网关时的默认实现
type LogSender struct{}

// Send 以日志形式记录通知
func (LogSender) Send(_ context.Context, email, subject, body string) error {
	logger.Infow("order_confirmation_notified",
		"email", email,
		"subject", subject,
		"body", body,
	)
	return nil
}

// Consumer 异步任务消费者
type Consumer struct {
	sender NotificationSender
	locale string
}

// NewConsumer 创建消费者；sender 为 nil 时使用日志投递
func NewConsumer(sender NotificationSender, locale string) *Consumer {
	if sender == nil {
		sender = LogSender{}
	}
	return &Consumer{sender: sender, locale: locale}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderConfirmation, c.handleOrderConfirmation)
}

func (c *Consumer) handleOrderConfirmation(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_confirmation_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderConfirmationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_confirmation_unmarshal_failed", "error", err)
		return err
	}
	if strings.TrimSpace(payload.OrderID) == "" {
		logger.Debugw("worker_order_confirmation_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	email := strings.TrimSpace(payload.Email)
	if email == "" {
		logger.Debugw("worker_order_confirmation_skip_empty_receiver", "order_id", payload.OrderID)
		return nil
	}

	subject := buildConfirmationSubject(payload)
	body := i18n.T(c.locale, "checkout.order_confirmed")
	if err := c.sender.Send(ctx, email, subject, body); err != nil {
		logger.Warnw("worker_order_confirmation_send_failed",
			"order_id", payload.OrderID,
			"email", email,
			"error", err,
		)
		return err
	}
	return nil
}

func buildConfirmationSubject(payload queue.OrderConfirmationPayload) string {
	if payload.DisplayID > 0 {
		return fmt.Sprintf("Order #%d", payload.DisplayID)
	}
	return fmt.Sprintf("Order %s", payload.OrderID)
}
