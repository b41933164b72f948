package companyapimodels

import (
	"time"

	"github.com/pkg/errors"
	"travel-tools-backend/models"
	dbmodels "travel-tools-backend/models/db"
)

type CompanyOnboardData struct {
	Name          string `json:"name"`           // название компании
	Slug          string `json:"slug"`           // слаг (если пустой - генерируется из названия)
	Domain        string `json:"domain"`         // корпоративный домен
	Country       string `json:"country"`        // страна (ISO 3166-1 alpha-2)
	Currency      string `json:"currency"`       // валюта по умолчанию
	AdminEmail    string `json:"admin_email"`    // email администратора
	AdminName     string `json:"admin_name"`     // имя администратора
	AdminPassword string `json:"admin_password"` // пароль администратора
}

func (c CompanyOnboardData) Validate() error {
	if c.Name == "" {
		return errors.New("не указано название компании")
	}
	if c.AdminEmail == "" {
		return errors.New("не указан email администратора")
	}
	if c.AdminPassword == "" {
		return errors.New("не указан пароль администратора")
	}
	return nil
}

type CompanyView struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Slug     string               `json:"slug"`
	Domain   string               `json:"domain"`
	Country  string               `json:"country"`
	Currency string               `json:"currency"`
	Status   models.CompanyStatus `json:"status"`
}

func CompanyConvert(rec dbmodels.Company) CompanyView {
	return CompanyView{
		ID:       rec.ID,
		Name:     rec.Name,
		Slug:     rec.Slug,
		Domain:   rec.Domain,
		Country:  rec.Country,
		Currency: rec.Currency,
		Status:   rec.Status,
	}
}

type CompanyOnboardedView struct {
	Company         CompanyView `json:"company"`
	AdminUserID     string      `json:"admin_user_id"`
	MembershipID    string      `json:"membership_id"`
	DefaultPolicyID string      `json:"default_policy_id"`
}

type MemberView struct {
	ID             string                   `json:"id"`
	UserID         string                   `json:"user_id"`
	Email          string                   `json:"email"`
	Name           string                   `json:"name"`
	Role           models.CompanyRole       `json:"role"`
	RoleName       string                   `json:"role_name"`
	Status         models.CompanyUserStatus `json:"status"`
	Title          string                   `json:"title"`
	CostCenterCode string                   `json:"cost_center_code"`
	JoinedAt       *time.Time               `json:"joined_at"`
}

func MemberConvert(rec dbmodels.CompanyUser) MemberView {
	result := MemberView{
		ID:             rec.ID,
		UserID:         rec.UserID,
		Role:           rec.Role,
		RoleName:       rec.Role.ToHuman(),
		Status:         rec.Status,
		Title:          rec.Title,
		CostCenterCode: rec.CostCenterCode,
		JoinedAt:       rec.JoinedAt,
	}
	if rec.User != nil {
		result.Email = rec.User.Email
		result.Name = rec.User.Name
	}
	return result
}
