package companyapimodels

import (
	"github.com/pkg/errors"
	"travel-tools-backend/models"
	dbmodels "travel-tools-backend/models/db"
)

type PolicyData struct {
	Name                   string   `json:"name"`                     // название политики
	Description            string   `json:"description"`              // описание
	RequireManagerApproval bool     `json:"require_manager_approval"` // требуется согласование руководителя
	RequireFinanceApproval bool     `json:"require_finance_approval"` // требуется согласование финансов
	MaxBudgetMinor         *int64   `json:"max_budget_minor"`         // потолок бюджета в минорных единицах
	Currency               string   `json:"currency"`
	AllowedCabinClasses    []string `json:"allowed_cabin_classes"`
	PreferredAirlines      []string `json:"preferred_airlines"`
	ExcludedAirlines       []string `json:"excluded_airlines"`
	AdvancePurchaseDays    *int     `json:"advance_purchase_days"`
}

func (p PolicyData) Validate() error {
	if p.Name == "" {
		return errors.New("не указано название политики")
	}
	if p.MaxBudgetMinor != nil && *p.MaxBudgetMinor < 0 {
		return errors.New("потолок бюджета не может быть отрицательным")
	}
	return nil
}

type PolicyView struct {
	PolicyData
	ID     string              `json:"id"`
	Status models.PolicyStatus `json:"status"`
}

func PolicyConvert(rec dbmodels.TravelPolicy) PolicyView {
	return PolicyView{
		PolicyData: PolicyData{
			Name:                   rec.Name,
			Description:            rec.Description,
			RequireManagerApproval: rec.RequireManagerApproval,
			RequireFinanceApproval: rec.RequireFinanceApproval,
			MaxBudgetMinor:         rec.MaxBudgetMinor,
			Currency:               rec.Currency,
			AllowedCabinClasses:    rec.AllowedCabinClasses,
			PreferredAirlines:      rec.PreferredAirlines,
			ExcludedAirlines:       rec.ExcludedAirlines,
			AdvancePurchaseDays:    rec.AdvancePurchaseDays,
		},
		ID:     rec.ID,
		Status: rec.Status,
	}
}
