package echoapi

import (
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/unipath/unipath/core/document"
	"github.com/unipath/unipath/core/student"
)

type studentApi struct {
	svc      student.Service
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, svc student.Service, validate *validator.Validate) {
	api := studentApi{svc: svc, validate: validate}

	g.GET("/phases", api.queryPhases)

	sg := g.Group("/students")
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.DELETE("", api.destroyMultiple)

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/progress", api.progressAll)
	dg.GET("/activities", api.activities)
	dg.POST("/countries", api.addCountry)
	dg.GET("/countries", api.listCountries)
	dg.POST("/countries/:country/phase", api.changePhase)
	dg.GET("/countries/:country/progress", api.progress)
}

// countryParam returns the :country path segment, unescaped.
func countryParam(ctx echo.Context) string {
	raw := ctx.Param("country")
	if country, err := url.PathUnescape(raw); err == nil {
		return country
	}
	return raw
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	stu, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, stu)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	stu, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) update(ctx echo.Context) error {
	stu, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(ctx.Request().Context(), stu, api.validate, api.svc); err != nil {
		return err
	}

	stu, err = api.svc.Update(ctx.Request().Context(), stu.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *studentApi) addCountry(ctx echo.Context) error {
	var data student.NewCountryTrack
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCountryTrack")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	profile, err := api.svc.AddCountryTrack(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, profile)
}

func (api *studentApi) listCountries(ctx echo.Context) error {
	profiles, err := api.svc.CountryTracks(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if profiles == nil {
		profiles = []student.StudentCountryProfile{}
	}
	return ctx.JSON(http.StatusOK, profiles)
}

func (api *studentApi) changePhase(ctx echo.Context) error {
	var data student.PhaseChangeRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PhaseChangeRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	change, err := api.svc.ChangePhase(ctx.Request().Context(), ctx.Param("id"), countryParam(ctx), data.TargetPhase)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, PhaseChangeResponse{
		Accepted:  true,
		From:      change.From,
		To:        change.To,
		Direction: change.Direction,
	})
}

func (api *studentApi) progress(ctx echo.Context) error {
	pp, err := api.svc.Progress(ctx.Request().Context(), ctx.Param("id"), countryParam(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, pp)
}

func (api *studentApi) progressAll(ctx echo.Context) error {
	pps, err := api.svc.ProgressAll(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if pps == nil {
		pps = []student.ProfileProgress{}
	}
	return ctx.JSON(http.StatusOK, pps)
}

func (api *studentApi) activities(ctx echo.Context) error {
	entries, err := api.svc.Activities(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []student.ActivityEntry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *studentApi) queryPhases(ctx echo.Context) error {
	phases := make([]PhaseInfo, 0, len(student.Sequence))
	for _, p := range student.Sequence {
		phases = append(phases, PhaseInfo{
			Code:              p,
			Label:             p.Label(),
			RequiredDocuments: student.RequiredDocuments(p),
		})
	}
	return ctx.JSON(http.StatusOK, phases)
}

type (
	PhaseChangeResponse struct {
		Accepted  bool              `json:"accepted"`
		From      student.Phase     `json:"from"`
		To        student.Phase     `json:"to"`
		Direction student.Direction `json:"direction"`
	}

	PhaseInfo struct {
		Code              student.Phase   `json:"code"`
		Label             string          `json:"label"`
		RequiredDocuments []document.Type `json:"required_documents"`
	}

	DestroyMultipleRequest struct {
		IDs []string `query:"id"`
	}
)
