package apiv1

import (
	"github.com/gofiber/fiber/v2"
	"travel-tools-backend/controllers"
	companyhandler "travel-tools-backend/lib/company"
	policyhandler "travel-tools-backend/lib/policy"
	"travel-tools-backend/middleware"
	apimodels "travel-tools-backend/models/api"
	companyapimodels "travel-tools-backend/models/api/company"
)

type companyApiController struct {
	controllers.BaseAPIController
}

func InitCompanyApiRouters(app fiber.Router) {
	controller := companyApiController{}
	app.Route("company", func(router fiber.Router) {
		router.Get("", controller.get)
		router.Get("members", controller.members)
		router.Route("invitations", func(inviteRoute fiber.Router) {
			inviteRoute.Use(middleware.CompanyAdminRequired())
			inviteRoute.Get("", controller.invitations)
			inviteRoute.Post("", controller.invite)
		})
		router.Route("policies", func(policyRoute fiber.Router) {
			policyRoute.Get("", controller.policyList)
			policyRoute.Get(":id", controller.policyGet)
			policyRoute.Use(middleware.CompanyAdminRequired())
			policyRoute.Post("", controller.policyCreate)
			policyRoute.Put(":id", controller.policyUpdate)
			policyRoute.Delete(":id", controller.policyArchive)
		})
	})
}

// @Summary Профиль компании
// @Tags Компания
// @Description Профиль текущей компании
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=companyapimodels.CompanyView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/company [get]
func (c *companyApiController) get(ctx *fiber.Ctx) error {
	companyID := middleware.GetUserCompany(ctx)
	resp, err := companyhandler.Instance.GetCompany(companyID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения компании")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Список участников
// @Tags Компания
// @Description Список участников компании
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]companyapimodels.MemberView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/company/members [get]
func (c *companyApiController) members(ctx *fiber.Ctx) error {
	companyID := middleware.GetUserCompany(ctx)
	resp, err := companyhandler.Instance.Members(companyID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения участников")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Список приглашений
// @Tags Компания
// @Description Список приглашений компании
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]companyapimodels.InvitationView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/company/invitations [get]
func (c *companyApiController) invitations(ctx *fiber.Ctx) error {
	companyID := middleware.GetUserCompany(ctx)
	resp, err := companyhandler.Instance.Invitations(companyID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения приглашений")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Приглашение участника
// @Tags Компания
// @Description Приглашение участника в компанию
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 companyapimodels.InvitationData	true	"request body"
// @Success 200 {object} apimodels.Response{data=companyapimodels.InvitationView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/company/invitations [post]
func (c *companyApiController) invite(ctx *fiber.Ctx) error {
	var payload companyapimodels.InvitationData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	companyID := middleware.GetUserCompany(ctx)
	companyUserID := middleware.GetCompanyUserID(ctx)
	resp, err := companyhandler.Instance.Invite(companyID, companyUserID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка создания приглашения")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Список политик
// @Tags Политики
// @Description Список политик поездок компании
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]companyapimodels.PolicyView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/company/policies [get]
func (c *companyApiController) policyList(ctx *fiber.Ctx) error {
	companyID := middleware.GetUserCompany(ctx)
	resp, err := policyhandler.Instance.List(companyID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения политик")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Получение политики
// @Tags Политики
// @Description Получение политики по ИД
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=companyapimodels.PolicyView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/company/policies/{id} [get]
func (c *companyApiController) policyGet(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	companyID := middleware.GetUserCompany(ctx)
	resp, err := policyhandler.Instance.GetByID(companyID, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения политики")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Создание политики
// @Tags Политики
// @Description Создание политики поездок
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 companyapimodels.PolicyData	true	"request body"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/company/policies [post]
func (c *companyApiController) policyCreate(ctx *fiber.Ctx) error {
	var payload companyapimodels.PolicyData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	companyID := middleware.GetUserCompany(ctx)
	id, err := policyhandler.Instance.Create(companyID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка создания политики")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary Обновление политики
// @Tags Политики
// @Description Обновление политики поездок
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 companyapimodels.PolicyData	true	"request body"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/company/policies/{id} [put]
func (c *companyApiController) policyUpdate(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload companyapimodels.PolicyData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	companyID := middleware.GetUserCompany(ctx)
	err = policyhandler.Instance.Update(companyID, id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка обновления политики")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Архивация политики
// @Tags Политики
// @Description Архивация политики поездок
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/company/policies/{id} [delete]
func (c *companyApiController) policyArchive(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	companyID := middleware.GetUserCompany(ctx)
	err = policyhandler.Instance.Archive(companyID, id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка архивации политики")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}
