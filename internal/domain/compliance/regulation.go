package compliance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Regulation is a compliance framework such as GDPR or SOX. Only IsActive
// changes once controls or evaluations reference it.
type Regulation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code      string    `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Version   *string   `gorm:"column:version" json:"version,omitempty"`
	SourceURL *string   `gorm:"column:source_url" json:"sourceUrl,omitempty"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (Regulation) TableName() string { return "regulations" }

func (r *Regulation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Article is a citable section of a regulation's source text.
type Article struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RegulationID uuid.UUID `gorm:"type:uuid;column:regulation_id;not null;index" json:"regulationId"`
	Code         string    `gorm:"column:code" json:"code"`
	Title        *string   `gorm:"column:title" json:"title,omitempty"`
	Body         string    `gorm:"column:body;type:text;not null" json:"body"`
	SortIndex    *int      `gorm:"column:sort_index" json:"sortIndex,omitempty"`
	IsEnabled    bool      `gorm:"column:is_enabled;not null;default:true" json:"isEnabled"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (Article) TableName() string { return "articles" }

func (a *Article) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
