package companyhandler

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"travel-tools-backend/config"
	"travel-tools-backend/db"
	"travel-tools-backend/lib/audit"
	invitestore "travel-tools-backend/lib/company/invite-store"
	companystore "travel-tools-backend/lib/company/store"
	companyusersstore "travel-tools-backend/lib/company/users/store"
	"travel-tools-backend/lib/notify"
	policystore "travel-tools-backend/lib/policy/store"
	usersstore "travel-tools-backend/lib/users/store"
	authutils "travel-tools-backend/lib/utils/auth-utils"
	"travel-tools-backend/models"
	companyapimodels "travel-tools-backend/models/api/company"
	dbmodels "travel-tools-backend/models/db"
)

type Provider interface {
	Onboard(data companyapimodels.CompanyOnboardData) (view companyapimodels.CompanyOnboardedView, err error)
	Login(data companyapimodels.LoginData) (view companyapimodels.TokenView, err error)
	RefreshToken(refreshToken string) (view companyapimodels.TokenView, err error)
	GetCompany(companyID string) (view companyapimodels.CompanyView, err error)
	Members(companyID string) (list []companyapimodels.MemberView, err error)
	Invite(companyID, inviterCompanyUserID string, data companyapimodels.InvitationData) (view companyapimodels.InvitationView, err error)
	Invitations(companyID string) (list []companyapimodels.InvitationView, err error)
	AcceptInvitation(data companyapimodels.InvitationAcceptData) (view companyapimodels.InvitationAcceptedView, err error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		store:       companystore.NewInstance(db.DB),
		usersStore:  usersstore.NewInstance(db.DB),
		memberStore: companyusersstore.NewInstance(db.DB),
		inviteStore: invitestore.NewInstance(db.DB),
	}
}

type impl struct {
	store       companystore.Provider
	usersStore  usersstore.Provider
	memberStore companyusersstore.Provider
	inviteStore invitestore.Provider
}

var slugCleanRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugCleanRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func (i impl) uniqueSlug(base string) (string, error) {
	if base == "" {
		base = "company"
	}
	slug := base
	for n := 2; ; n++ {
		exists, err := i.store.SlugExists(slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%v", base, n)
	}
}

// Onboard регистрирует компанию вместе с администратором и политикой
// по умолчанию. Всё создаётся в одной транзакции.
func (i impl) Onboard(data companyapimodels.CompanyOnboardData) (view companyapimodels.CompanyOnboardedView, err error) {
	logger := log.WithField("company_name", data.Name)
	slugBase := data.Slug
	if slugBase == "" {
		slugBase = slugify(data.Name)
	} else {
		slugBase = slugify(slugBase)
	}
	slug, err := i.uniqueSlug(slugBase)
	if err != nil {
		return view, errors.Wrap(err, "ошибка подбора слага компании")
	}

	existingUser, err := i.usersStore.GetByEmail(data.AdminEmail)
	if err != nil {
		return view, err
	}
	if existingUser != nil {
		return view, models.ErrEmailAlreadyRegistered
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		companyStore := companystore.NewInstance(tx)
		userStore := usersstore.NewInstance(tx)
		memberStore := companyusersstore.NewInstance(tx)
		policyStore := policystore.NewInstance(tx)

		companyRec := dbmodels.Company{
			Name:     data.Name,
			Slug:     slug,
			Domain:   data.Domain,
			Country:  data.Country,
			Currency: data.Currency,
			Status:   models.CompanyStatusActive,
		}
		companyID, err := companyStore.Create(companyRec)
		if err != nil {
			return errors.Wrap(err, "ошибка создания компании")
		}
		companyRec.ID = companyID

		userRec := dbmodels.User{
			Email:        data.AdminEmail,
			Name:         data.AdminName,
			PasswordHash: authutils.GetMD5Hash(data.AdminPassword),
			IsActive:     true,
		}
		userID, err := userStore.Create(userRec)
		if err != nil {
			return errors.Wrap(err, "ошибка создания пользователя")
		}

		now := time.Now()
		membershipID, err := memberStore.Create(dbmodels.CompanyUser{
			BaseCompanyModel: dbmodels.BaseCompanyModel{
				CompanyID: companyID,
			},
			UserID:   userID,
			Role:     models.CompanyRoleAdmin,
			Status:   models.CompanyUserStatusActive,
			JoinedAt: &now,
		})
		if err != nil {
			return errors.Wrap(err, "ошибка создания членства администратора")
		}

		policyID, err := policyStore.Create(dbmodels.TravelPolicy{
			BaseCompanyModel: dbmodels.BaseCompanyModel{
				CompanyID: companyID,
			},
			Name:                   "Default Policy",
			Status:                 models.PolicyStatusActive,
			RequireManagerApproval: true,
			Currency:               data.Currency,
		})
		if err != nil {
			return errors.Wrap(err, "ошибка создания политики по умолчанию")
		}

		view = companyapimodels.CompanyOnboardedView{
			Company:         companyapimodels.CompanyConvert(companyRec),
			AdminUserID:     userID,
			MembershipID:    membershipID,
			DefaultPolicyID: policyID,
		}
		return nil
	})
	if err != nil {
		return companyapimodels.CompanyOnboardedView{}, err
	}
	logger.WithField("company_id", view.Company.ID).Info("компания зарегистрирована")
	audit.Instance.Record(view.Company.ID, models.AuditCompanyOnboarded, view.MembershipID, map[string]interface{}{
		"slug": view.Company.Slug,
	})
	return view, nil
}

func (i impl) Login(data companyapimodels.LoginData) (view companyapimodels.TokenView, err error) {
	companyRec, err := i.store.GetBySlug(data.CompanySlug)
	if err != nil {
		return view, err
	}
	if companyRec == nil {
		return view, models.ErrForbidden
	}
	userRec, err := i.usersStore.GetByEmail(data.Email)
	if err != nil {
		return view, err
	}
	if userRec == nil || !userRec.IsActive {
		return view, models.ErrForbidden
	}
	if authutils.GetMD5Hash(data.Password) != userRec.PasswordHash {
		return view, models.ErrForbidden
	}
	memberRec, err := i.memberStore.FindByUser(companyRec.ID, userRec.ID)
	if err != nil {
		return view, err
	}
	if memberRec == nil || memberRec.Status != models.CompanyUserStatusActive {
		return view, models.ErrForbidden
	}
	view, err = i.issueTokens(*userRec, companyRec.ID, *memberRec)
	if err != nil {
		return view, err
	}
	err = i.usersStore.SetLastLogin(userRec.ID)
	if err != nil {
		log.WithError(err).WithField("user_id", userRec.ID).Warn("ошибка обновления времени входа")
	}
	return view, nil
}

func (i impl) issueTokens(userRec dbmodels.User, companyID string, memberRec dbmodels.CompanyUser) (view companyapimodels.TokenView, err error) {
	token, err := authutils.GetToken(userRec.ID, userRec.GetFullName(), companyID, memberRec.ID, memberRec.Role)
	if err != nil {
		return view, errors.Wrap(err, "ошибка выпуска токена")
	}
	refresh, err := authutils.GetRefreshToken(userRec.ID, userRec.GetFullName(), companyID)
	if err != nil {
		return view, errors.Wrap(err, "ошибка выпуска refresh токена")
	}
	return companyapimodels.TokenView{AccessToken: token, RefreshToken: refresh}, nil
}

func (i impl) RefreshToken(refreshToken string) (view companyapimodels.TokenView, err error) {
	claims, err := authutils.ParseRefreshToken(refreshToken)
	if err != nil {
		return view, err
	}
	userID, _ := claims["sub"].(string)
	companyID, _ := claims["company"].(string)
	if userID == "" || companyID == "" {
		return view, models.ErrForbidden
	}
	userRec, err := i.usersStore.GetByID(userID)
	if err != nil {
		return view, err
	}
	if userRec == nil || !userRec.IsActive {
		return view, models.ErrForbidden
	}
	memberRec, err := i.memberStore.FindByUser(companyID, userID)
	if err != nil {
		return view, err
	}
	if memberRec == nil || memberRec.Status != models.CompanyUserStatusActive {
		return view, models.ErrForbidden
	}
	return i.issueTokens(*userRec, companyID, *memberRec)
}

func (i impl) GetCompany(companyID string) (view companyapimodels.CompanyView, err error) {
	rec, err := i.store.GetByID(companyID)
	if err != nil {
		return view, err
	}
	if rec == nil {
		return view, models.ErrNotFound
	}
	return companyapimodels.CompanyConvert(*rec), nil
}

func (i impl) Members(companyID string) (list []companyapimodels.MemberView, err error) {
	recs, err := i.memberStore.List(companyID)
	if err != nil {
		return nil, err
	}
	list = make([]companyapimodels.MemberView, 0, len(recs))
	for _, rec := range recs {
		list = append(list, companyapimodels.MemberConvert(rec))
	}
	return list, nil
}

func (i impl) Invite(companyID, inviterCompanyUserID string, data companyapimodels.InvitationData) (view companyapimodels.InvitationView, err error) {
	companyRec, err := i.store.GetByID(companyID)
	if err != nil {
		return view, err
	}
	if companyRec == nil {
		return view, models.ErrNotFound
	}
	existing, err := i.memberStore.FindByEmail(companyID, data.Email)
	if err != nil {
		return view, err
	}
	if existing != nil {
		return view, errors.New("пользователь уже состоит в компании")
	}
	pending, err := i.inviteStore.FindPendingByEmail(companyID, data.Email)
	if err != nil {
		return view, err
	}
	if pending != nil {
		return view, errors.New("приглашение для этой почты уже отправлено")
	}
	rec := dbmodels.CompanyInvitation{
		BaseCompanyModel: dbmodels.BaseCompanyModel{
			CompanyID: companyID,
		},
		InviterCompanyUserID: inviterCompanyUserID,
		Email:                data.Email,
		Role:                 data.Role,
		Token:                uuid.NewString(),
		ExpiresAt:            time.Now().Add(time.Hour * 24 * time.Duration(config.Conf.Auth.InviteExpiresDays)),
		Status:               models.InvitationStatusPending,
	}
	id, err := i.inviteStore.Create(rec)
	if err != nil {
		return view, errors.Wrap(err, "ошибка создания приглашения")
	}
	rec.ID = id
	audit.Instance.Record(companyID, models.AuditInvitationCreated, inviterCompanyUserID, map[string]interface{}{
		"email": data.Email,
		"role":  string(data.Role),
	})
	go notify.Instance.InvitationCreated(rec, companyRec.Name)
	return companyapimodels.InvitationConvert(rec), nil
}

func (i impl) Invitations(companyID string) (list []companyapimodels.InvitationView, err error) {
	recs, err := i.inviteStore.List(companyID)
	if err != nil {
		return nil, err
	}
	list = make([]companyapimodels.InvitationView, 0, len(recs))
	for _, rec := range recs {
		list = append(list, companyapimodels.InvitationConvert(rec))
	}
	return list, nil
}

// AcceptInvitation превращает приглашение в членство. Для новой почты
// создаётся учётная запись, для существующей проверяется пароль.
func (i impl) AcceptInvitation(data companyapimodels.InvitationAcceptData) (view companyapimodels.InvitationAcceptedView, err error) {
	invitation, err := i.inviteStore.GetByToken(data.Token)
	if err != nil {
		return view, err
	}
	if invitation == nil || invitation.Status != models.InvitationStatusPending {
		return view, models.ErrInviteNotAvailable
	}
	if time.Now().After(invitation.ExpiresAt) {
		updErr := i.inviteStore.Update(invitation.ID, map[string]interface{}{"status": models.InvitationStatusExpired})
		if updErr != nil {
			log.WithError(updErr).WithField("rec_id", invitation.ID).Warn("ошибка пометки приглашения просроченным")
		}
		return view, models.ErrInviteNotAvailable
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		userStore := usersstore.NewInstance(tx)
		memberStore := companyusersstore.NewInstance(tx)
		inviteStore := invitestore.NewInstance(tx)

		userRec, err := userStore.GetByEmail(invitation.Email)
		if err != nil {
			return err
		}
		if userRec == nil {
			userID, err := userStore.Create(dbmodels.User{
				Email:        invitation.Email,
				Name:         data.FullName,
				PasswordHash: authutils.GetMD5Hash(data.Password),
				IsActive:     true,
			})
			if err != nil {
				return errors.Wrap(err, "ошибка создания пользователя")
			}
			userRec = &dbmodels.User{BaseModel: dbmodels.BaseModel{ID: userID}}
		} else {
			if authutils.GetMD5Hash(data.Password) != userRec.PasswordHash {
				return models.ErrForbidden
			}
		}

		existing, err := memberStore.FindByUser(invitation.CompanyID, userRec.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return errors.New("пользователь уже состоит в компании")
		}

		now := time.Now()
		membershipID, err := memberStore.Create(dbmodels.CompanyUser{
			BaseCompanyModel: dbmodels.BaseCompanyModel{
				CompanyID: invitation.CompanyID,
			},
			UserID:    userRec.ID,
			Role:      invitation.Role,
			Status:    models.CompanyUserStatusActive,
			InvitedAt: &invitation.CreatedAt,
			JoinedAt:  &now,
		})
		if err != nil {
			return errors.Wrap(err, "ошибка создания членства")
		}

		err = inviteStore.Update(invitation.ID, map[string]interface{}{"status": models.InvitationStatusAccepted})
		if err != nil {
			return errors.Wrap(err, "ошибка закрытия приглашения")
		}

		view = companyapimodels.InvitationAcceptedView{
			UserID:       userRec.ID,
			MembershipID: membershipID,
			CompanyID:    invitation.CompanyID,
		}
		return nil
	})
	if err != nil {
		return companyapimodels.InvitationAcceptedView{}, err
	}
	audit.Instance.Record(invitation.CompanyID, models.AuditInvitationAccepted, view.MembershipID, map[string]interface{}{
		"email": invitation.Email,
	})
	return view, nil
}
