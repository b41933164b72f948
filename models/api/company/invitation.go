package companyapimodels

import (
	"time"

	"github.com/pkg/errors"
	"travel-tools-backend/models"
	dbmodels "travel-tools-backend/models/db"
)

type InvitationData struct {
	Email string             `json:"email"` // email приглашаемого
	Role  models.CompanyRole `json:"role"`  // роль в компании
}

func (i InvitationData) Validate() error {
	if i.Email == "" {
		return errors.New("не указан email приглашаемого")
	}
	return i.Role.Validate()
}

type InvitationAcceptData struct {
	Token    string `json:"token"`     // токен приглашения
	FullName string `json:"full_name"` // имя нового пользователя
	Password string `json:"password"`  // пароль (новый или существующей учётной записи)
}

func (i InvitationAcceptData) Validate() error {
	if i.Token == "" {
		return errors.New("не указан токен приглашения")
	}
	if i.Password == "" {
		return errors.New("не указан пароль")
	}
	return nil
}

type InvitationView struct {
	ID        string                  `json:"id"`
	Email     string                  `json:"email"`
	Role      models.CompanyRole      `json:"role"`
	Token     string                  `json:"token"`
	Status    models.InvitationStatus `json:"status"`
	ExpiresAt time.Time               `json:"expires_at"`
}

func InvitationConvert(rec dbmodels.CompanyInvitation) InvitationView {
	return InvitationView{
		ID:        rec.ID,
		Email:     rec.Email,
		Role:      rec.Role,
		Token:     rec.Token,
		Status:    rec.Status,
		ExpiresAt: rec.ExpiresAt,
	}
}

type InvitationAcceptedView struct {
	UserID       string `json:"user_id"`
	MembershipID string `json:"membership_id"`
	CompanyID    string `json:"company_id"`
}
