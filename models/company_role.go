package models

type CompanyRole string

const (
	CompanyRoleAdmin    CompanyRole = "company_admin"
	CompanyRoleManager  CompanyRole = "manager"
	CompanyRoleEmployee CompanyRole = "employee"
	CompanyRoleFinance  CompanyRole = "finance"
)

var companyRoleHumanName = map[CompanyRole]string{
	CompanyRoleAdmin:    "Администратор компании",
	CompanyRoleManager:  "Руководитель",
	CompanyRoleEmployee: "Сотрудник",
	CompanyRoleFinance:  "Финансовый контролёр",
}

func (r CompanyRole) ToHuman() string {
	if human, exist := companyRoleHumanName[r]; exist {
		return human
	}
	return string(r)
}

func (r CompanyRole) Validate() error {
	if _, exist := companyRoleHumanName[r]; !exist {
		return ErrUnknownRole
	}
	return nil
}

func (r CompanyRole) IsCompanyAdmin() bool {
	return r == CompanyRoleAdmin
}

type CompanyUserStatus string

const (
	CompanyUserStatusActive   CompanyUserStatus = "active"
	CompanyUserStatusInactive CompanyUserStatus = "inactive"
)

var companyUserStatusHumanName = map[CompanyUserStatus]string{
	CompanyUserStatusActive:   "Активен",
	CompanyUserStatusInactive: "Отключен",
}

func (s CompanyUserStatus) ToHuman() string {
	if human, exist := companyUserStatusHumanName[s]; exist {
		return human
	}
	return string(s)
}

type CompanyStatus string

const (
	CompanyStatusActive    CompanyStatus = "active"
	CompanyStatusSuspended CompanyStatus = "suspended"
)

type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusExpired  InvitationStatus = "expired"
	InvitationStatusRevoked  InvitationStatus = "revoked"
)
