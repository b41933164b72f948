package audit

import (
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"travel-tools-backend/db"
	dbmodels "travel-tools-backend/models/db"
)

var Instance Provider

type Provider interface {
	Record(companyID, event, actor string, details map[string]interface{})
}

func NewHandler() {
	Instance = &impl{
		db: db.DB,
	}
}

type impl struct {
	db *gorm.DB
}

// Record пишет событие в журнал вне транзакции вызывающего.
// Ошибка записи не прерывает бизнес-операцию, только логируется.
func (i impl) Record(companyID, event, actor string, details map[string]interface{}) {
	rec := dbmodels.AuditLog{
		CompanyID: companyID,
		Event:     event,
		Actor:     actor,
		Details:   details,
	}
	err := i.db.Save(&rec).Error
	if err != nil {
		log.
			WithError(err).
			WithField("company_id", companyID).
			WithField("event", event).
			Error("ошибка записи в журнал аудита")
	}
}
