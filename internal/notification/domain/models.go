package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

const (
	TypeTask     = "task"
	TypeProject  = "project"
	TypePayment  = "payment"
	TypeDeal     = "deal"
	TypeSystem   = "system"
	TypeReminder = "reminder"
	TypeMention  = "mention"
	TypeContact  = "contact"
	TypeDeadline = "deadline"
	TypeMessage  = "message"
)

var Types = []string{
	TypeTask, TypeProject, TypePayment, TypeDeal, TypeSystem,
	TypeReminder, TypeMention, TypeContact, TypeDeadline, TypeMessage,
}

func ValidType(t string) bool {
	for _, candidate := range Types {
		if candidate == t {
			return true
		}
	}
	return false
}

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

type Notification struct {
	ID          snowflake.ID      `gorm:"primaryKey" json:"id"`
	UserID      snowflake.ID      `gorm:"not null;index" json:"user_id"`
	Type        string            `gorm:"type:varchar(20);not null" json:"type"`
	Title       string            `gorm:"type:varchar(255);not null" json:"title"`
	Message     string            `gorm:"type:text;not null" json:"message"`
	ActionURL   *string           `gorm:"type:text;column:action_url" json:"action_url"`
	RelatedType *string           `gorm:"type:varchar(50)" json:"related_type"`
	RelatedID   *string           `gorm:"type:varchar(64)" json:"related_id"`
	RelatedName *string           `gorm:"type:varchar(255)" json:"related_name"`
	Metadata    datatypes.JSONMap `json:"metadata"`
	IsRead      bool              `gorm:"not null;default:false;index" json:"is_read"`
	ReadAt      *time.Time        `json:"read_at"`
	CreatedAt   time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
