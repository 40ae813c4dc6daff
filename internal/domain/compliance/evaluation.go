package compliance

import (
	"time"

	"github.com/google/uuid"
)

const (
	EvaluationStatusOpen = "open"

	// EvaluationDueAfter is the policy window between start and due date.
	EvaluationDueAfter = 7 * 24 * time.Hour
)

// Evaluation is one assessment run. Its percentage and level are derived from
// the stored answers on every read and are never columns of this table.
//
// The struct describes the canonical layout created by migrations; the
// persistence engine reads and writes through resolved column names so that
// older layouts keep working.
type Evaluation struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyID      uuid.UUID  `gorm:"type:uuid;column:company_id;not null;index" json:"companyId"`
	CompanyName    string     `gorm:"column:company_name" json:"companyName"`
	RegulationCode string     `gorm:"column:regulation_code;not null;index" json:"regulationCode"`
	StartedAt      time.Time  `gorm:"column:started_at;not null;index" json:"startedAt"`
	DueAt          *time.Time `gorm:"column:due_at" json:"dueAt,omitempty"`
	Status         string     `gorm:"column:status;not null;default:open" json:"status"`
}

func (Evaluation) TableName() string { return "evaluations" }

// EvaluationAnswer is one evaluation's response to one control.
type EvaluationAnswer struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	EvaluationID uuid.UUID `gorm:"type:uuid;column:evaluation_id;not null;uniqueIndex:idx_answers_evaluation_key,priority:1" json:"evaluationId"`
	ControlKey   string    `gorm:"column:control_key;not null;uniqueIndex:idx_answers_evaluation_key,priority:2" json:"controlKey"`
	Value        string    `gorm:"column:value;not null;default:''" json:"value"`
	Comment      *string   `gorm:"column:comment;type:text" json:"comment,omitempty"`
	ArticleCode  *string   `gorm:"column:article_code" json:"articleCode,omitempty"`
	UpdatedAt    time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (EvaluationAnswer) TableName() string { return "evaluation_answers" }
