package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/unipath/unipath/core/document"
	"github.com/unipath/unipath/core/student"
)

type documentApi struct {
	svc      document.Service
	stuSvc   student.Service
	validate *validator.Validate
}

func registerDocumentAPI(g *echo.Group, svc document.Service, stuSvc student.Service, validate *validator.Validate) {
	api := documentApi{svc: svc, stuSvc: stuSvc, validate: validate}

	sg := g.Group("/students/:id/documents")
	sg.POST("", api.create)
	sg.GET("", api.listByStudent)

	dg := g.Group("/documents/:id")
	dg.GET("", api.retrieve)
	dg.PUT("/status", api.updateStatus)
}

func (api *documentApi) create(ctx echo.Context) error {
	stu, err := api.stuSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data document.NewDocument
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDocument")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	doc, err := api.svc.Create(ctx.Request().Context(), stu.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating document")
	}
	return ctx.JSON(http.StatusCreated, doc)
}

func (api *documentApi) listByStudent(ctx echo.Context) error {
	stu, err := api.stuSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	docs, err := api.svc.ByStudent(ctx.Request().Context(), stu.ID)
	if err != nil {
		return errors.Wrap(err, "querying documents")
	}
	if docs == nil {
		docs = []document.Document{}
	}
	return ctx.JSON(http.StatusOK, docs)
}

func (api *documentApi) retrieve(ctx echo.Context) error {
	doc, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *documentApi) updateStatus(ctx echo.Context) error {
	var data document.UpdateDocumentStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateDocumentStatus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	doc, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), data.Status)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, doc)
}
