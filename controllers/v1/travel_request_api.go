package apiv1

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"travel-tools-backend/controllers"
	travelrequesthandler "travel-tools-backend/lib/travel-request"
	"travel-tools-backend/middleware"
	apimodels "travel-tools-backend/models/api"
	travelapimodels "travel-tools-backend/models/api/travel"
)

type travelRequestApiController struct {
	controllers.BaseAPIController
}

func InitTravelRequestApiRouters(app fiber.Router) {
	controller := travelRequestApiController{}
	app.Route("travel_request", func(router fiber.Router) {
		router.Post("list", controller.list)
		router.Post("inbox", controller.inbox)
		router.Post("export", middleware.CompanyAdminRequired(), controller.export)
		router.Post("", controller.create)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Put("", controller.update)
			idRoute.Put("submit", controller.submit)   // отправить на согласование
			idRoute.Put("approve", controller.approve) // согласовать
			idRoute.Put("reject", controller.reject)   // отклонить
			idRoute.Put("cancel", controller.cancel)   // отменить
			idRoute.Get("comments", controller.comments)
			idRoute.Post("comments", controller.addComment)
		})
	})
}

// @Summary Создание
// @Tags Заявка на поездку
// @Description Создание заявки на поездку
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 travelapimodels.TravelRequestCreateData	true	"request body"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/travel_request [post]
func (c *travelRequestApiController) create(ctx *fiber.Ctx) error {
	var payload travelapimodels.TravelRequestCreateData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	companyID := middleware.GetUserCompany(ctx)
	companyUserID := middleware.GetCompanyUserID(ctx)
	id, err := travelrequesthandler.Instance.Create(companyID, companyUserID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка создания заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary Обновление
// @Tags Заявка на поездку
// @Description Обновление черновика заявки
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 travelapimodels.TravelRequestData	true	"request body"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/travel_request/{id} [put]
func (c *travelRequestApiController) update(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload travelapimodels.TravelRequestData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	companyID := middleware.GetUserCompany(ctx)
	companyUserID := middleware.GetCompanyUserID(ctx)
	err = travelrequesthandler.Instance.Update(companyID, id, companyUserID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка обновления заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Получение по ИД
// @Tags Заявка на поездку
// @Description Получение заявки по ИД
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=travelapimodels.TravelRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/travel_request/{id} [get]
func (c *travelRequestApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	companyID := middleware.GetUserCompany(ctx)
	companyUserID := middleware.GetCompanyUserID(ctx)
	role := middleware.GetCompanyRole(ctx)
	resp, err := travelrequesthandler.Instance.GetByID(companyID, id, companyUserID, role)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Список
// @Tags Заявка на поездку
// @Description Список заявок с фильтром
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 travelapimodels.TrFilter	true	"request body"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]travelapimodels.TravelRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/travel_request/list [post]
func (c *travelRequestApiController) list(ctx *fiber.Ctx) error {
	var payload travelapimodels.TrFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	companyID := middleware.GetUserCompany(ctx)
	companyUserID := middleware.GetCompanyUserID(ctx)
	role := middleware.GetCompanyRole(ctx)
	resp, rowCount, err := travelrequesthandler.Instance.List(companyID, companyUserID, role, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка заявок")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(resp, rowCount))
}

// @Summary Входящие на согласование
// @Tags Заявка на поездку
// @Description Заявки, ожидающие решения текущего пользователя
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 travelapimodels.TrFilter	true	"request body"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]travelapimodels.TravelRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/travel_request/inbox [post]
func (c *travelRequestApiController) inbox(ctx *fiber.Ctx) error {
	var payload travelapimodels.TrFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	companyID := middleware.GetUserCompany(ctx)
	companyUserID := middleware.GetCompanyUserID(ctx)
	resp, rowCount, err := travelrequesthandler.Instance.Inbox(companyID, companyUserID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения входящих заявок")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(resp, rowCount))
}

// @Summary Выгрузка в XLSX
// @Tags Заявка на поездку
// @Description Выгрузка реестра заявок компании в xlsx
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 travelapimodels.TrFilter	true	"request body"
// @Success 200 {file} file
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/travel_request/export [post]
func (c *travelRequestApiController) export(ctx *fiber.Ctx) error {
	var payload travelapimodels.TrFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	companyID := middleware.GetUserCompany(ctx)
	file, err := travelrequesthandler.Instance.Export(companyID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка выгрузки заявок")
	}
	ctx.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "travel_requests.xlsx"))
	return ctx.Status(fiber.StatusOK).Send(file.Bytes())
}

// @Summary Отправка на согласование
// @Tags Заявка на поездку
// @Description Отправка черновика на согласование
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/travel_request/{id}/submit [put]
func (c *travelRequestApiController) submit(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	companyID := middleware.GetUserCompany(ctx)
	companyUserID := middleware.GetCompanyUserID(ctx)
	err = travelrequesthandler.Instance.Submit(companyID, id, companyUserID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка отправки заявки на согласование")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Согласование
// @Tags Заявка на поездку
// @Description Положительное решение согласующего
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 travelapimodels.DecisionData	true	"request body"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/travel_request/{id}/approve [put]
func (c *travelRequestApiController) approve(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload travelapimodels.DecisionData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	companyID := middleware.GetUserCompany(ctx)
	companyUserID := middleware.GetCompanyUserID(ctx)
	err = travelrequesthandler.Instance.Approve(companyID, id, companyUserID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка согласования заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Отклонение
// @Tags Заявка на поездку
// @Description Отрицательное решение согласующего
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 travelapimodels.DecisionData	true	"request body"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/travel_request/{id}/reject [put]
func (c *travelRequestApiController) reject(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload travelapimodels.DecisionData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	companyID := middleware.GetUserCompany(ctx)
	companyUserID := middleware.GetCompanyUserID(ctx)
	err = travelrequesthandler.Instance.Reject(companyID, id, companyUserID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка отклонения заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Отмена
// @Tags Заявка на поездку
// @Description Отмена заявки сотрудником
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/travel_request/{id}/cancel [put]
func (c *travelRequestApiController) cancel(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	companyID := middleware.GetUserCompany(ctx)
	companyUserID := middleware.GetCompanyUserID(ctx)
	role := middleware.GetCompanyRole(ctx)
	err = travelrequesthandler.Instance.Cancel(companyID, id, companyUserID, role)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка отмены заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Комментарии
// @Tags Заявка на поездку
// @Description Комментарии по заявке
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=[]travelapimodels.CommentView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/travel_request/{id}/comments [get]
func (c *travelRequestApiController) comments(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	companyID := middleware.GetUserCompany(ctx)
	companyUserID := middleware.GetCompanyUserID(ctx)
	role := middleware.GetCompanyRole(ctx)
	resp, err := travelrequesthandler.Instance.Comments(companyID, id, companyUserID, role)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения комментариев")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}

// @Summary Добавление комментария
// @Tags Заявка на поездку
// @Description Добавление комментария по заявке
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 travelapimodels.CommentData	true	"request body"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=travelapimodels.CommentView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/b2b/travel_request/{id}/comments [post]
func (c *travelRequestApiController) addComment(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload travelapimodels.CommentData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	companyID := middleware.GetUserCompany(ctx)
	companyUserID := middleware.GetCompanyUserID(ctx)
	role := middleware.GetCompanyRole(ctx)
	resp, err := travelrequesthandler.Instance.AddComment(companyID, id, companyUserID, role, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка добавления комментария")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(resp))
}
