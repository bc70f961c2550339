package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/unipath/unipath/core/application"
	"github.com/unipath/unipath/core/student"
)

type applicationApi struct {
	svc      application.Service
	stuSvc   student.Service
	validate *validator.Validate
}

func registerApplicationAPI(g *echo.Group, svc application.Service, stuSvc student.Service, validate *validator.Validate) {
	api := applicationApi{svc: svc, stuSvc: stuSvc, validate: validate}

	sg := g.Group("/students/:id/applications")
	sg.POST("", api.create)
	sg.GET("", api.listByStudent)

	dg := g.Group("/applications/:id")
	dg.GET("", api.retrieve)
	dg.PUT("/status", api.updateStatus)
}

func (api *applicationApi) create(ctx echo.Context) error {
	stu, err := api.stuSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data application.NewApplication
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewApplication")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	data.UniversityCountry = student.CanonicalCountry(data.UniversityCountry)

	app, err := api.svc.Create(ctx.Request().Context(), stu.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating application")
	}

	api.refreshCounts(ctx, app)
	return ctx.JSON(http.StatusCreated, app)
}

func (api *applicationApi) listByStudent(ctx echo.Context) error {
	stu, err := api.stuSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	apps, err := api.svc.ByStudent(ctx.Request().Context(), stu.ID)
	if err != nil {
		return errors.Wrap(err, "querying applications")
	}
	if apps == nil {
		apps = []application.Application{}
	}
	return ctx.JSON(http.StatusOK, apps)
}

func (api *applicationApi) retrieve(ctx echo.Context) error {
	app, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, app)
}

func (api *applicationApi) updateStatus(ctx echo.Context) error {
	var data application.UpdateApplicationStatus
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateApplicationStatus")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	app, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), data.Status)
	if err != nil {
		return err
	}

	api.refreshCounts(ctx, app)
	return ctx.JSON(http.StatusOK, app)
}

// refreshCounts recomputes the matching country track's aggregates after an
// application write. A student may apply to a country they do not track yet;
// in that case there is nothing to refresh.
func (api *applicationApi) refreshCounts(ctx echo.Context, app application.Application) {
	_, err := api.stuSvc.RefreshApplicationCounts(ctx.Request().Context(), app.StudentID, app.UniversityCountry)
	if err != nil && errors.Cause(err) != student.ErrProfileNotFound {
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "refreshing application counts"))
	}
}
