package dbmodels

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type BaseModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// BaseCompanyModel - базовая модель для записей, принадлежащих компании.
// Все запросы по таким записям обязаны фильтровать по company_id.
type BaseCompanyModel struct {
	BaseModel
	CompanyID string `gorm:"type:varchar(36);index" json:"company_id"`
}

func (m BaseCompanyModel) Validate() error {
	if m.CompanyID == "" {
		return errors.New("не указана компания")
	}
	return nil
}
