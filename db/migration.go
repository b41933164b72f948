package db

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	dbmodels "travel-tools-backend/models/db"
)

func AutoMigrateDB() error {
	log.Info("Запуск миграций")
	if err := DB.AutoMigrate(&dbmodels.Company{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры Company")
	}
	if err := DB.AutoMigrate(&dbmodels.User{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры User")
	}
	if err := DB.AutoMigrate(&dbmodels.CompanyUser{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры CompanyUser")
	}
	if err := DB.AutoMigrate(&dbmodels.CompanyInvitation{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры CompanyInvitation")
	}
	if err := DB.AutoMigrate(&dbmodels.TravelPolicy{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры TravelPolicy")
	}
	if err := DB.AutoMigrate(&dbmodels.TravelRequest{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры TravelRequest")
	}
	if err := DB.AutoMigrate(&dbmodels.TravelApproval{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры TravelApproval")
	}
	if err := DB.AutoMigrate(&dbmodels.TravelRequestComment{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры TravelRequestComment")
	}
	if err := DB.AutoMigrate(&dbmodels.AuditLog{}); err != nil {
		return errors.Wrap(err, "ошибка создания структуры AuditLog")
	}
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS uq_company_user_membership ON company_users (company_id, user_id);")
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS uq_travel_approval_assignment ON travel_approvals (travel_request_id, level, approver_company_user_id);")
	log.Info("Миграция прошла успешно")
	return nil
}
