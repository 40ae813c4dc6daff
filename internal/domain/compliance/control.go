package compliance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Control is a single yes/partial/no question. Key is unique within its
// regulation.
type Control struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RegulationID   uuid.UUID  `gorm:"type:uuid;column:regulation_id;not null;uniqueIndex:idx_controls_regulation_key,priority:1" json:"regulationId"`
	ArticleID      *uuid.UUID `gorm:"type:uuid;column:article_id;index" json:"articleId,omitempty"`
	Key            string     `gorm:"column:control_key;not null;uniqueIndex:idx_controls_regulation_key,priority:2" json:"key"`
	Question       string     `gorm:"column:question;type:text;not null" json:"question"`
	Recommendation *string    `gorm:"column:recommendation;type:text" json:"recommendation,omitempty"`
	Weight         float64    `gorm:"column:weight;not null;default:1" json:"weight"`
	IsActive       bool       `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (Control) TableName() string { return "controls" }

func (c *Control) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
