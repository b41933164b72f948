package invitestore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"travel-tools-backend/models"
	dbmodels "travel-tools-backend/models/db"
)

type Provider interface {
	Create(rec dbmodels.CompanyInvitation) (id string, err error)
	GetByToken(token string) (rec *dbmodels.CompanyInvitation, err error)
	FindPendingByEmail(companyID, email string) (rec *dbmodels.CompanyInvitation, err error)
	GetByID(companyID, id string) (rec *dbmodels.CompanyInvitation, err error)
	List(companyID string) (list []dbmodels.CompanyInvitation, err error)
	Update(id string, updMap map[string]interface{}) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.CompanyInvitation) (id string, err error) {
	err = i.db.
		Omit("Inviter").
		Save(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByToken(token string) (*dbmodels.CompanyInvitation, error) {
	rec := dbmodels.CompanyInvitation{}
	err := i.db.
		Where("token = ?", token).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) FindPendingByEmail(companyID, email string) (*dbmodels.CompanyInvitation, error) {
	rec := dbmodels.CompanyInvitation{}
	err := i.db.
		Where("company_id = ?", companyID).
		Where("email = ?", email).
		Where("status = ?", models.InvitationStatusPending).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) GetByID(companyID, id string) (*dbmodels.CompanyInvitation, error) {
	rec := dbmodels.CompanyInvitation{}
	err := i.db.
		Where("id = ?", id).
		Where("company_id = ?", companyID).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) List(companyID string) (list []dbmodels.CompanyInvitation, err error) {
	list = []dbmodels.CompanyInvitation{}
	err = i.db.
		Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&list).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return list, nil
}

func (i impl) Update(id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	err := i.db.
		Model(&dbmodels.CompanyInvitation{}).
		Where("id = ?", id).
		Updates(updMap).
		Error
	if err != nil {
		return err
	}
	return nil
}
