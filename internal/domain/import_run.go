package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ImportRun is the audit record written after each spreadsheet import.
// Errors/Headers/ColumnMap keep the operator-facing debug info from the
// import response so /api/v1/import/runs can show past batches.
type ImportRun struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Filename  string         `gorm:"column:filename" json:"filename"`
	Success   int            `gorm:"column:success;not null" json:"success"`
	Failed    int            `gorm:"column:failed;not null" json:"failed"`
	Errors    datatypes.JSON `gorm:"column:errors;type:json" json:"errors"`
	Headers   datatypes.JSON `gorm:"column:headers;type:json" json:"headers"`
	ColumnMap datatypes.JSON `gorm:"column:column_map;type:json" json:"column_map"`
	CreatedAt time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (ImportRun) TableName() string {
	return "import_runs"
}

func (r *ImportRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
