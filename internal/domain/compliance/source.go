package compliance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RegulationSource records one text import for a regulation.
type RegulationSource struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RegulationID uuid.UUID      `gorm:"type:uuid;column:regulation_id;not null;index" json:"regulationId"`
	FileName     string         `gorm:"column:file_name" json:"fileName"`
	MimeType     string         `gorm:"column:mime_type" json:"mimeType"`
	CharCount    int            `gorm:"column:char_count" json:"charCount"`
	Parsed       bool           `gorm:"column:parsed;not null;default:false" json:"parsed"`
	Stats        datatypes.JSON `gorm:"column:stats" json:"stats"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (RegulationSource) TableName() string { return "regulation_sources" }

func (s *RegulationSource) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
