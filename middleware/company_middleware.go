package middleware

import (
	"github.com/gofiber/fiber/v2"
	authutils "travel-tools-backend/lib/utils/auth-utils"
	"travel-tools-backend/models"
	apimodels "travel-tools-backend/models/api"
)

func GetUserCompany(ctx *fiber.Ctx) string {
	return claimString(ctx, "company")
}

func GetUserID(ctx *fiber.Ctx) string {
	return claimString(ctx, "sub")
}

// GetCompanyUserID - ид членства в компании, на него ссылаются заявки
func GetCompanyUserID(ctx *fiber.Ctx) string {
	return claimString(ctx, "company_user")
}

func claimString(ctx *fiber.Ctx, key string) string {
	claims := authutils.GetClaims(ctx)
	if value, exist := claims[key]; exist {
		if stringValue, ok := value.(string); ok {
			return stringValue
		}
	}
	return ""
}

func GetCompanyRole(ctx *fiber.Ctx) models.CompanyRole {
	claims := authutils.GetClaims(ctx)
	if role, exist := claims["role"]; exist {
		if stringRole, ok := role.(string); ok && stringRole != "" {
			return models.CompanyRole(stringRole)
		}
	}
	return ""
}

func CompanyAdminRequired() fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		if !GetCompanyRole(ctx).IsCompanyAdmin() {
			return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError("операция недоступна"))
		}
		return ctx.Next()
	}
}

// CompanyContextRequired отклоняет токены без контекста компании
func CompanyContextRequired() fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		if GetUserCompany(ctx) == "" || GetCompanyUserID(ctx) == "" {
			return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError("операция недоступна"))
		}
		return ctx.Next()
	}
}
