package apiv1

import (
	"github.com/gofiber/fiber/v2"
	"travel-tools-backend/controllers"
	companyhandler "travel-tools-backend/lib/company"
	apimodels "travel-tools-backend/models/api"
	companyapimodels "travel-tools-backend/models/api/company"
)

type authApiController struct {
	controllers.BaseAPIController
}

func InitAuthApiRouters(app *fiber.App) {
	controller := authApiController{}
	app.Route("auth", func(router fiber.Router) {
		router.Post("register", controller.register)
		router.Post("login", controller.login)
		router.Post("refresh-token", controller.refreshToken)
		router.Post("invitation/accept", controller.acceptInvitation)
	})
}

// @Summary Регистрация компании
// @Tags Авторизация
// @Description Регистрация компании с администратором и политикой по умолчанию
// @Param	body body	 companyapimodels.CompanyOnboardData	true	"request body"
// @Success 200 {object} apimodels.Response{data=companyapimodels.CompanyOnboardedView}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/auth/register [post]
func (c *authApiController) register(ctx *fiber.Ctx) error {
	var payload companyapimodels.CompanyOnboardData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := companyhandler.Instance.Onboard(payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка регистрации компании")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Вход
// @Tags Авторизация
// @Description Вход в контексте компании
// @Param	body body	 companyapimodels.LoginData	true	"request body"
// @Success 200 {object} apimodels.Response{data=companyapimodels.TokenView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/auth/login [post]
func (c *authApiController) login(ctx *fiber.Ctx) error {
	var payload companyapimodels.LoginData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := companyhandler.Instance.Login(payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка входа")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Обновить JWT
// @Tags Авторизация
// @Description Обновить JWT по refresh токену
// @Param	body body	 companyapimodels.RefreshData	true	"request body"
// @Success 200 {object} apimodels.Response{data=companyapimodels.TokenView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/auth/refresh-token [post]
func (c *authApiController) refreshToken(ctx *fiber.Ctx) error {
	var payload companyapimodels.RefreshData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := companyhandler.Instance.RefreshToken(payload.RefreshToken)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка обновления токена")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Принятие приглашения
// @Tags Авторизация
// @Description Принятие приглашения в компанию по токену
// @Param	body body	 companyapimodels.InvitationAcceptData	true	"request body"
// @Success 200 {object} apimodels.Response{data=companyapimodels.InvitationAcceptedView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/auth/invitation/accept [post]
func (c *authApiController) acceptInvitation(ctx *fiber.Ctx) error {
	var payload companyapimodels.InvitationAcceptData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	resp, err := companyhandler.Instance.AcceptInvitation(payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка принятия приглашения")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}
