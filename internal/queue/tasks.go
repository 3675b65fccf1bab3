package queue

import (
	"encoding/json"
	"fmt"

	"github.com/dujiao-next/storefront/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskNewsletterWelcome 订阅欢迎任务
	TaskNewsletterWelcome = constants.TaskNewsletterWelcome
)

// NewsletterWelcomePayload 订阅欢迎任务载荷
type NewsletterWelcomePayload struct {
	SubscriberID uint `json:"subscriber_id"`
}

// NewNewsletterWelcomeTask 创建订阅欢迎任务
func NewNewsletterWelcomeTask(payload NewsletterWelcomePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNewsletterWelcome, body), nil
}

// ParseNewsletterWelcomePayload 解析订阅欢迎任务载荷
func ParseNewsletterWelcomePayload(task *asynq.Task) (NewsletterWelcomePayload, error) {
	var payload NewsletterWelcomePayload
	if task == nil {
		return payload, fmt.Errorf("newsletter welcome task is nil")
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("decode newsletter welcome payload: %w", err)
	}
	return payload, nil
}
