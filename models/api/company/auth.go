package companyapimodels

import (
	"strings"

	"github.com/pkg/errors"
)

type LoginData struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	CompanySlug string `json:"company_slug"` // компания, в контексте которой выполняется вход
}

func (l LoginData) Validate() error {
	if l.Email == "" || l.Password == "" {
		return errors.New("не указаны email или пароль")
	}
	if l.CompanySlug == "" {
		return errors.New("не указана компания")
	}
	return nil
}

type RefreshData struct {
	RefreshToken string `json:"refresh_token"`
}

func (r RefreshData) Validate() error {
	if strings.TrimSpace(r.RefreshToken) == "" {
		return errors.New("не указан refresh токен")
	}
	return nil
}

type TokenView struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
