package models

import "time"

// NewsletterSubscriber 邮件订阅
type NewsletterSubscriber struct {
	ID         uint       `gorm:"primarykey" json:"id"`
	Email      string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Source     string     `gorm:"type:varchar(32)" json:"source"`
	WelcomedAt *time.Time `json:"welcomed_at,omitempty"` // 欢迎邮件任务完成时间
	CreatedAt  time.Time  `json:"created_at"`
}

// TableName 指定表名
func (NewsletterSubscriber) TableName() string {
	return "newsletter_subscribers"
}
