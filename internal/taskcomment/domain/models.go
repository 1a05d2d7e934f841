package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Reactions maps an emoji to the users who reacted with it.
type Reactions map[string][]string

type Comment struct {
	ID              snowflake.ID                  `gorm:"primaryKey" json:"id"`
	TaskID          snowflake.ID                  `gorm:"not null;index" json:"taskId"`
	MyCompanyID     snowflake.ID                  `gorm:"not null;index" json:"myCompanyId"`
	UserID          snowflake.ID                  `gorm:"not null" json:"userId"`
	Content         string                        `gorm:"type:text;not null" json:"content"`
	ContentHTML     *string                       `gorm:"type:text;column:content_html" json:"contentHtml"`
	ParentCommentID *snowflake.ID                 `gorm:"index" json:"parentCommentId"`
	MentionedUsers  datatypes.JSONSlice[string]   `json:"mentionedUsers"`
	Attachments     datatypes.JSON                `json:"attachments"`
	Reactions       datatypes.JSONType[Reactions] `json:"reactions"`
	IsEdited        bool                          `gorm:"not null;default:false" json:"isEdited"`
	EditedAt        *time.Time                    `json:"editedAt"`
	CreatedAt       time.Time                     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt       time.Time                     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

func (Comment) TableName() string { return "task_comments" }

// Add records userID under emoji once. It reports whether anything changed.
func (r Reactions) Add(emoji, userID string) bool {
	for _, existing := range r[emoji] {
		if existing == userID {
			return false
		}
	}
	r[emoji] = append(r[emoji], userID)
	return true
}

// Remove drops userID from emoji and deletes emojis nobody uses.
func (r Reactions) Remove(emoji, userID string) bool {
	users, ok := r[emoji]
	if !ok {
		return false
	}
	kept := users[:0]
	removed := false
	for _, existing := range users {
		if existing == userID {
			removed = true
			continue
		}
		kept = append(kept, existing)
	}
	if len(kept) == 0 {
		delete(r, emoji)
	} else {
		r[emoji] = kept
	}
	return removed
}
