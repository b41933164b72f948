package dbmodels

import (
	"github.com/pkg/errors"
	"travel-tools-backend/models"
)

type TravelPolicy struct {
	BaseCompanyModel
	Name                   string              `gorm:"type:varchar(150)"`
	Description            string
	Status                 models.PolicyStatus `gorm:"type:varchar(32);default:active"`
	RequireManagerApproval bool
	RequireFinanceApproval bool
	MaxBudgetMinor         *int64
	Currency               string     `gorm:"type:varchar(3)"`
	AllowedCabinClasses    StringList `gorm:"type:jsonb"`
	PreferredAirlines      StringList `gorm:"type:jsonb"`
	ExcludedAirlines       StringList `gorm:"type:jsonb"`
	AdvancePurchaseDays    *int
}

func (p *TravelPolicy) Validate() error {
	if err := p.BaseCompanyModel.Validate(); err != nil {
		return err
	}
	if p.Name == "" {
		return errors.New("не указано название политики")
	}
	return nil
}

func (p TravelPolicy) IsActive() bool {
	return p.Status == models.PolicyStatusActive
}

// RequiredLevels - уровни согласования, требуемые политикой, по порядку
func (p TravelPolicy) RequiredLevels() []int {
	levels := []int{}
	if p.RequireManagerApproval {
		levels = append(levels, models.ApprovalLevelManager)
	}
	if p.RequireFinanceApproval {
		levels = append(levels, models.ApprovalLevelFinance)
	}
	return levels
}
