package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dujiao-next/storefront/internal/constants"
	"github.com/dujiao-next/storefront/internal/logger"
	"github.com/dujiao-next/storefront/internal/models"
	"github.com/dujiao-next/storefront/internal/queue"
	"github.com/dujiao-next/storefront/internal/repository"

	"github.com/hibiken/asynq"
)

// 订阅字段校验错误码
const (
	FieldCodeRequired = "required"
	FieldCodeInvalid  = "invalid"
	FieldCodeTooLong  = "too_long"
)

const maxEmailLength = 254

// SubscriptionInput 订阅输入
type SubscriptionInput struct {
	Email  string
	Source string
}

// FieldError 字段校验错误
type FieldError struct {
	Field string `json:"field"`
	Code  string `json:"code"`
}

// ValidationResult 校验结果：Valid 为 true 时 Value 为归一化后的输入，否则 Errors 非空
type ValidationResult struct {
	Valid  bool
	Value  SubscriptionInput
	Errors []FieldError
}

// ValidateSubscription 校验并归一化订阅输入，不产生副作用
func ValidateSubscription(input SubscriptionInput) ValidationResult {
	var fieldErrors []FieldError
	email := strings.ToLower(strings.TrimSpace(input.Email))
	switch {
	case email == "":
		fieldErrors = append(fieldErrors, FieldError{Field: "email", Code: FieldCodeRequired})
	case len(email) > maxEmailLength:
		fieldErrors = append(fieldErrors, FieldError{Field: "email", Code: FieldCodeTooLong})
	default:
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			fieldErrors = append(fieldErrors, FieldError{Field: "email", Code: FieldCodeInvalid})
		}
	}

	source := strings.ToLower(strings.TrimSpace(input.Source))
	switch source {
	case "":
		source = constants.NewsletterSourceFooter
	case constants.NewsletterSourceFooter, constants.NewsletterSourceHome:
	default:
		fieldErrors = append(fieldErrors, FieldError{Field: "source", Code: FieldCodeInvalid})
	}

	if len(fieldErrors) > 0 {
		return ValidationResult{Errors: fieldErrors}
	}
	return ValidationResult{Valid: true, Value: SubscriptionInput{Email: email, Source: source}}
}

// ValidationError 携带字段错误的校验失败
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, field.Field+":"+field.Code)
	}
	return fmt.Sprintf("%s (%s)", ErrSubscriptionInvalid.Error(), strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrSubscriptionInvalid
}

// NewsletterQueue 订阅欢迎任务入队
type NewsletterQueue interface {
	EnqueueNewsletterWelcome(payload queue.NewsletterWelcomePayload, opts ...asynq.Option) error
}

// NewsletterService 邮件订阅服务
type NewsletterService struct {
	repo  repository.NewsletterRepository
	queue NewsletterQueue
}

// NewNewsletterService 创建邮件订阅服务
func NewNewsletterService(repo repository.NewsletterRepository, queueClient NewsletterQueue) *NewsletterService {
	return &NewsletterService{repo: repo, queue: queueClient}
}

// Subscribe 订阅；同一邮箱重复订阅返回已有记录，created 为 false
func (s *NewsletterService) Subscribe(ctx context.Context, input SubscriptionInput) (subscriber *models.NewsletterSubscriber, created bool, err error) {
	result := ValidateSubscription(input)
	if !result.Valid {
		return nil, false, &ValidationError{Fields: result.Errors}
	}

	existing, err := s.repo.GetByEmail(ctx, result.Value.Email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	subscriber = &models.NewsletterSubscriber{
		Email:  result.Value.Email,
		Source: result.Value.Source,
	}
	if err := s.repo.Create(ctx, subscriber); err != nil {
		// 唯一索引冲突时按已订阅处理
		if again, lookupErr := s.repo.GetByEmail(ctx, result.Value.Email); lookupErr == nil && again != nil {
			return again, false, nil
		}
		return nil, false, err
	}

	if s.queue != nil {
		if err := s.queue.EnqueueNewsletterWelcome(queue.NewsletterWelcomePayload{SubscriberID: subscriber.ID}); err != nil {
			logger.Warnw("newsletter_welcome_enqueue_failed",
				"subscriber_id", subscriber.ID,
				"error", err,
			)
		}
	}
	return subscriber, true, nil
}

// MarkWelcomed 标记欢迎任务完成，重复执行时保持幂等
func (s *NewsletterService) MarkWelcomed(ctx context.Context, subscriberID uint) error {
	if subscriberID == 0 {
		return ErrSubscriberNotFound
	}
	subscriber, err := s.repo.GetByID(ctx, subscriberID)
	if err != nil {
		return err
	}
	if subscriber == nil {
		return ErrSubscriberNotFound
	}
	affected, err := s.repo.MarkWelcomed(ctx, subscriberID, time.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		logger.Debugw("newsletter_welcome_already_done", "subscriber_id", subscriberID)
	}
	return nil
}

// IsValidationError 判断是否为订阅校验错误
func IsValidationError(err error) (*ValidationError, bool) {
	var target *ValidationError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// RequeuePendingWelcomes 为超过 olderThan 仍未完成欢迎任务的订阅重新入队
func (s *NewsletterService) RequeuePendingWelcomes(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	if s.queue == nil {
		return 0, ErrQueueUnavailable
	}
	pending, err := s.repo.ListUnwelcomed(ctx, time.Now().Add(-olderThan), limit)
	if err != nil {
		return 0, err
	}
	requeued := 0
	for _, subscriber := range pending {
		if err := s.queue.EnqueueNewsletterWelcome(queue.NewsletterWelcomePayload{SubscriberID: subscriber.ID}); err != nil {
			return requeued, err
		}
		requeued++
	}
	return requeued, nil
}
