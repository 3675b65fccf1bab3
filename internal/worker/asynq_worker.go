package worker

import (
	"context"
	"errors"

	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/provider"
	"github.com/dujiao-next/storefront/internal/queue"
	"github.com/dujiao-next/storefront/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskNewsletterWelcome, c.handleNewsletterWelcome)
}

func (c *Consumer) handleNewsletterWelcome(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || c.NewsletterService == nil || task == nil {
		logger.Debugw("worker_newsletter_welcome_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseNewsletterWelcomePayload(task)
	if err != nil {
		logger.Warnw("worker_newsletter_welcome_unmarshal_failed", "error", err)
		return err
	}
	if payload.SubscriberID == 0 {
		logger.Debugw("worker_newsletter_welcome_skip_invalid_payload", "subscriber_id", payload.SubscriberID)
		return nil
	}
	if err := c.NewsletterService.MarkWelcomed(ctx, payload.SubscriberID); err != nil {
		if errors.Is(err, service.ErrSubscriberNotFound) {
			logger.Debugw("worker_newsletter_welcome_skip_not_found", "subscriber_id", payload.SubscriberID)
			return nil
		}
		logger.Warnw("worker_newsletter_welcome_failed", "subscriber_id", payload.SubscriberID, "error", err)
		return err
	}
	logger.Infow("worker_newsletter_welcome_done", "subscriber_id", payload.SubscriberID)
	return nil
}
