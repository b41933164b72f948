package authutils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"travel-tools-backend/config"
	"travel-tools-backend/models"
)

func GetToken(userID, name, companyID, companyUserID string, role models.CompanyRole) (tokenString string, err error) {
	claims := jwt.MapClaims{
		"name":         name,
		"sub":          userID,
		"company":      companyID,
		"company_user": companyUserID,
		"role":         string(role),
		"exp":          time.Now().Add(time.Hour * time.Duration(config.Conf.Auth.TokenExpiresHours)).Unix(),
		"iat":          time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Conf.Auth.JWTSecret))
}

func GetRefreshToken(userID, name, companyID string) (tokenString string, err error) {
	claims := jwt.MapClaims{
		"name":    name,
		"sub":     userID,
		"company": companyID,
		"exp":     time.Now().Add(time.Hour * time.Duration(config.Conf.Auth.RefreshExpiresHours)).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.Conf.Auth.JWTSecret))
}

func ParseRefreshToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return []byte(config.Conf.Auth.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, models.ErrForbidden
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.ErrForbidden
	}
	return claims, nil
}

func GetClaims(ctx *fiber.Ctx) jwt.MapClaims {
	token, ok := ctx.Locals("user").(*jwt.Token)
	if !ok {
		return jwt.MapClaims{}
	}
	return token.Claims.(jwt.MapClaims)
}
