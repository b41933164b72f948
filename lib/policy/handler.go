package policyhandler

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"travel-tools-backend/db"
	policystore "travel-tools-backend/lib/policy/store"
	"travel-tools-backend/models"
	companyapimodels "travel-tools-backend/models/api/company"
	dbmodels "travel-tools-backend/models/db"
)

type Provider interface {
	Create(companyID string, data companyapimodels.PolicyData) (id string, err error)
	GetByID(companyID, id string) (item companyapimodels.PolicyView, err error)
	List(companyID string) (list []companyapimodels.PolicyView, err error)
	Update(companyID, id string, data companyapimodels.PolicyData) error
	Archive(companyID, id string) error
	Resolve(companyID, policyID string) (rec *dbmodels.TravelPolicy, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store: policystore.NewInstance(db.DB),
	}
}

func NewHandlerWithTx(tx *gorm.DB) Provider {
	return impl{
		store: policystore.NewInstance(tx),
	}
}

type impl struct {
	store policystore.Provider
}

func (i impl) Create(companyID string, data companyapimodels.PolicyData) (id string, err error) {
	rec := dbmodels.TravelPolicy{
		BaseCompanyModel: dbmodels.BaseCompanyModel{
			CompanyID: companyID,
		},
		Name:                   data.Name,
		Description:            data.Description,
		Status:                 models.PolicyStatusActive,
		RequireManagerApproval: data.RequireManagerApproval,
		RequireFinanceApproval: data.RequireFinanceApproval,
		MaxBudgetMinor:         data.MaxBudgetMinor,
		Currency:               data.Currency,
		AllowedCabinClasses:    data.AllowedCabinClasses,
		PreferredAirlines:      data.PreferredAirlines,
		ExcludedAirlines:       data.ExcludedAirlines,
		AdvancePurchaseDays:    data.AdvancePurchaseDays,
	}
	if err := rec.Validate(); err != nil {
		return "", err
	}
	exists, err := i.store.NameExists(companyID, data.Name, "")
	if err != nil {
		return "", err
	}
	if exists {
		return "", errors.New("политика с таким названием уже существует")
	}
	return i.store.Create(rec)
}

func (i impl) GetByID(companyID, id string) (item companyapimodels.PolicyView, err error) {
	rec, err := i.store.GetByID(companyID, id)
	if err != nil {
		return item, err
	}
	if rec == nil {
		return item, models.ErrNotFound
	}
	return companyapimodels.PolicyConvert(*rec), nil
}

func (i impl) List(companyID string) (list []companyapimodels.PolicyView, err error) {
	recs, err := i.store.List(companyID)
	if err != nil {
		return nil, err
	}
	list = make([]companyapimodels.PolicyView, 0, len(recs))
	for _, rec := range recs {
		list = append(list, companyapimodels.PolicyConvert(rec))
	}
	return list, nil
}

func (i impl) Update(companyID, id string, data companyapimodels.PolicyData) error {
	rec, err := i.store.GetByID(companyID, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return models.ErrNotFound
	}
	if data.Name != rec.Name {
		exists, err := i.store.NameExists(companyID, data.Name, id)
		if err != nil {
			return err
		}
		if exists {
			return errors.New("политика с таким названием уже существует")
		}
	}
	updMap := map[string]interface{}{
		"name":                     data.Name,
		"description":              data.Description,
		"require_manager_approval": data.RequireManagerApproval,
		"require_finance_approval": data.RequireFinanceApproval,
		"max_budget_minor":         data.MaxBudgetMinor,
		"currency":                 data.Currency,
		"allowed_cabin_classes":    dbmodels.StringList(data.AllowedCabinClasses),
		"preferred_airlines":       dbmodels.StringList(data.PreferredAirlines),
		"excluded_airlines":        dbmodels.StringList(data.ExcludedAirlines),
		"advance_purchase_days":    data.AdvancePurchaseDays,
	}
	return i.store.Update(companyID, id, updMap)
}

func (i impl) Archive(companyID, id string) error {
	rec, err := i.store.GetByID(companyID, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return models.ErrNotFound
	}
	return i.store.Update(companyID, id, map[string]interface{}{"status": models.PolicyStatusArchived})
}

// Resolve выбирает политику для заявки. Явно указанная политика обязана
// существовать в компании и быть активной. Без указания берётся самая
// ранняя активная политика компании. nil без ошибки означает, что политик
// нет и заявка согласуется автоматически.
func (i impl) Resolve(companyID, policyID string) (*dbmodels.TravelPolicy, error) {
	if policyID != "" {
		rec, err := i.store.GetByID(companyID, policyID)
		if err != nil {
			return nil, err
		}
		if rec == nil || !rec.IsActive() {
			return nil, models.ErrPolicyNotAvailable
		}
		return rec, nil
	}
	return i.store.OldestActive(companyID)
}
