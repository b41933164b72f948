package dbmodels

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"travel-tools-backend/models"
)

type TravelRequest struct {
	BaseCompanyModel
	EmployeeCompanyUserID string       `gorm:"type:varchar(36);index"`
	Employee              *CompanyUser `gorm:"foreignKey:EmployeeCompanyUserID"`
	PolicyID              *string      `gorm:"type:varchar(36)"`
	Policy                *TravelPolicy
	Reference             string          `gorm:"type:varchar(64);uniqueIndex"`
	Status                models.TRStatus `gorm:"type:varchar(32);default:draft"`
	TripType              models.TripType `gorm:"type:varchar(32)"`
	Origin                string          `gorm:"type:varchar(8)"`
	Destination           string          `gorm:"type:varchar(8)"`
	DepartureDate         *time.Time
	ReturnDate            *time.Time
	Justification         string
	TravelerCount         int `gorm:"default:1"`
	BudgetMinor           *int64
	Currency              string            `gorm:"type:varchar(3)"`
	RequestedItineraries  ItinerarySegments `gorm:"type:jsonb"`
	OfferSnapshot         JSONMap           `gorm:"type:jsonb"`
	ApprovalState         ApprovalState     `gorm:"type:jsonb"`
	SubmittedAt           *time.Time
	ApprovedAt            *time.Time
	RejectedAt            *time.Time
	CancelledAt           *time.Time
	// LockVersion защищает перечитывание оставшихся согласований и смену статуса
	// от параллельных решений по одной заявке
	LockVersion int                    `gorm:"default:0"`
	Approvals   []TravelApproval       `gorm:"foreignKey:TravelRequestID"`
	Comments    []TravelRequestComment `gorm:"foreignKey:TravelRequestID"`
}

func (t *TravelRequest) AfterDelete(tx *gorm.DB) (err error) {
	if t.ID == "" {
		return nil
	}
	tx.Clauses(clause.Returning{}).Where("travel_request_id = ?", t.ID).Delete(&TravelApproval{})
	return
}

type TravelApproval struct {
	BaseModel
	TravelRequestID       string                `gorm:"type:varchar(36);index"`
	Level                 int                   `gorm:"index"`
	ApproverCompanyUserID string                `gorm:"type:varchar(36);index"`
	Approver              *CompanyUser          `gorm:"foreignKey:ApproverCompanyUserID"`
	Status                models.ApprovalStatus `gorm:"type:varchar(32);default:pending"`
	Decision              models.ApprovalStatus `gorm:"type:varchar(32)"`
	DecidedAt             *time.Time
	Comment               string
}

type TravelRequestComment struct {
	BaseModel
	TravelRequestID     string       `gorm:"type:varchar(36);index"`
	AuthorCompanyUserID string       `gorm:"type:varchar(36)"`
	Author              *CompanyUser `gorm:"foreignKey:AuthorCompanyUserID"`
	Visibility          string       `gorm:"type:varchar(16);default:internal"`
	Body                string
}

// ApprovalState - денормализованный снимок цепочки согласования, формируется
// один раз при отправке заявки и не перечитывается из справочника членств
type ApprovalState struct {
	Levels []ApprovalLevelState `json:"levels"`
}

type ApprovalLevelState struct {
	Level       int                   `json:"level"`
	Role        models.CompanyRole    `json:"role"`
	Status      models.ApprovalStatus `json:"status"`
	ApproverIDs []string              `json:"approver_ids"`
}

func (j ApprovalState) Value() (driver.Value, error) {
	if j.Levels == nil {
		j.Levels = []ApprovalLevelState{}
	}
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *ApprovalState) Scan(value any) error {
	return scanJSON(value, j)
}

// SetLevelStatus обновляет статус уровня в снимке
func (j *ApprovalState) SetLevelStatus(level int, status models.ApprovalStatus) {
	for k := range j.Levels {
		if j.Levels[k].Level == level {
			j.Levels[k].Status = status
			return
		}
	}
}
