package controller

import (
	"wine-cellar-be/internal/dto"
	"wine-cellar-be/internal/pkg/serverutils"
	"wine-cellar-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICellarController interface {
	RegisterRoutes(r fiber.Router)
	ListWines(ctx *fiber.Ctx) error
	ShowWine(ctx *fiber.Ctx) error
	UpdateWine(ctx *fiber.Ctx) error
	UpdateBottle(ctx *fiber.Ctx) error
	DeleteWine(ctx *fiber.Ctx) error
}

type cellarController struct {
	cellarService service.ICellarService
}

func NewCellarController(cellarService service.ICellarService) ICellarController {
	return &cellarController{
		cellarService: cellarService,
	}
}

func (c *cellarController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/cellar/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("wines", c.ListWines)
	h.Get("wines/:id", c.ShowWine)
	h.Put("wines/:id", c.UpdateWine)
	h.Put("bottles/:id", c.UpdateBottle)
	h.Delete("wines/:id", c.DeleteWine)
}

func (c *cellarController) ListWines(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIDFromLocals(ctx)
	if err != nil {
		return err
	}

	var req dto.ListWinesRequest
	if err := ctx.QueryParser(&req); err != nil {
		return err
	}

	res, err := c.cellarService.ListWines(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list wines", res))
}

func (c *cellarController) ShowWine(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIDFromLocals(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid wine id")
	}

	res, err := c.cellarService.ShowWine(ctx.Context(), userId, id)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "wine not found")
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show wine", res))
}

func (c *cellarController) UpdateWine(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIDFromLocals(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid wine id")
	}

	var req dto.UpdateWineRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.cellarService.UpdateWine(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "wine not found")
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update wine", res))
}

func (c *cellarController) UpdateBottle(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIDFromLocals(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid bottle id")
	}

	var req dto.UpdateBottleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.cellarService.UpdateBottle(ctx.Context(), userId, id, &req)
	if err != nil {
		return err
	}
	if res == nil {
		return fiber.NewError(fiber.StatusNotFound, "bottle not found")
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update bottle", res))
}

func (c *cellarController) DeleteWine(ctx *fiber.Ctx) error {
	userId, err := serverutils.UserIDFromLocals(ctx)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid wine id")
	}

	if err := c.cellarService.DeleteWine(ctx.Context(), userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success delete wine", fiber.Map{}))
}
