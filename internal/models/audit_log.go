package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditLog struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`

	// nil для самостоятельной регистрации
	ActorID *string `gorm:"type:uuid" json:"actorId"`

	Entity   string `gorm:"size:50;not null" json:"entity"` // "user", "store", "rating"
	EntityID string `gorm:"size:64" json:"entityId"`
	Action   string `gorm:"size:50;not null" json:"action"` // "create", "update"
	Details  string `gorm:"type:text" json:"details"`
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
