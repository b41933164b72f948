package notify

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"travel-tools-backend/config"
	smtphandler "travel-tools-backend/lib/smtp"
	dbmodels "travel-tools-backend/models/db"
)

var Instance Provider

type Provider interface {
	ApprovalRequested(rec dbmodels.TravelRequest, approvers []dbmodels.CompanyUser)
	RequestFinalized(rec dbmodels.TravelRequest, employee *dbmodels.CompanyUser)
	InvitationCreated(invitation dbmodels.CompanyInvitation, companyName string)
}

func NewHandler() {
	Instance = impl{
		sender: smtphandler.Instance,
		from:   config.Conf.Smtp.From,
	}
}

type impl struct {
	sender smtphandler.Provider
	from   string
}

// ApprovalRequested уведомляет назначенных согласующих о новой заявке.
// Отправка не влияет на результат операции, ошибки только логируются.
func (i impl) ApprovalRequested(rec dbmodels.TravelRequest, approvers []dbmodels.CompanyUser) {
	logger := log.
		WithField("company_id", rec.CompanyID).
		WithField("rec_id", rec.ID)
	message := fmt.Sprintf("Заявка на поездку %s (%s -> %s) ожидает вашего решения", rec.Reference, rec.Origin, rec.Destination)
	for _, approver := range approvers {
		if approver.User == nil || approver.User.Email == "" {
			continue
		}
		err := i.sender.SendEMail(i.from, approver.User.Email, message, "Требуется согласование")
		if err != nil {
			logger.WithError(err).Error("ошибка уведомления согласующего")
		}
	}
}

func (i impl) RequestFinalized(rec dbmodels.TravelRequest, employee *dbmodels.CompanyUser) {
	if employee == nil || employee.User == nil || employee.User.Email == "" {
		return
	}
	message := fmt.Sprintf("Заявка на поездку %s: %s", rec.Reference, rec.Status.ToHuman())
	err := i.sender.SendEMail(i.from, employee.User.Email, message, "Решение по заявке")
	if err != nil {
		log.
			WithField("company_id", rec.CompanyID).
			WithField("rec_id", rec.ID).
			WithError(err).
			Error("ошибка уведомления сотрудника")
	}
}

func (i impl) InvitationCreated(invitation dbmodels.CompanyInvitation, companyName string) {
	message := fmt.Sprintf("Вас пригласили в компанию %s. Токен приглашения: %s", companyName, invitation.Token)
	err := i.sender.SendEMail(i.from, invitation.Email, message, "Приглашение в компанию")
	if err != nil {
		log.
			WithField("company_id", invitation.CompanyID).
			WithError(err).
			Error("ошибка отправки приглашения")
	}
}
