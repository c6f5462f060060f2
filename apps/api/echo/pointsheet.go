package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/samsedu/rise/core/pointsheet"
	"github.com/samsedu/rise/core/user"
)

type pointSheetApi struct {
	userSvc user.Service
	svc     pointsheet.Service
}

func registerPointSheetAPI(g *echo.Group, jwt echo.MiddlewareFunc, userSvc user.Service, svc pointsheet.Service) {
	api := pointSheetApi{userSvc: userSvc, svc: svc}

	pg := g.Group("/students/:id/point-sheets", jwt)
	pg.POST("", api.submit, schoolStaffMiddleware())
	// superAdmins may read any student's history; the service enforces the
	// school boundary for everyone else
	pg.GET("", api.query, roleMiddleware(user.RoleSuperAdmin, user.RoleSchoolAdmin, user.RoleTeacher))
}

// SubmitResponse is the outcome message returned to the submitting teacher.
type SubmitResponse struct {
	Message               string            `json:"message"`
	Report                pointsheet.Report `json:"report"`
	NewLevel              int               `json:"new_level"`
	NewDaysInCurrentLevel int               `json:"new_days_in_current_level"`
	Completed             bool              `json:"completed"`
}

func (api *pointSheetApi) submit(ctx echo.Context) error {
	var data pointsheet.NewReport
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReport")
	}
	data.StudentID = ctx.Param("id")
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	res, err := api.svc.Submit(ctx.Request().Context(), ctxUsr, data)
	if err != nil {
		return err
	}

	msg := fmt.Sprintf("Point sheet recorded: level %d, day %d.", res.NewLevel, res.NewDaysInCurrentLevel)
	if res.Completed {
		msg = "Point sheet recorded: the student has completed the program."
	}
	return ctx.JSON(http.StatusCreated, SubmitResponse{
		Message:               msg,
		Report:                res.Report,
		NewLevel:              res.NewLevel,
		NewDaysInCurrentLevel: res.NewDaysInCurrentLevel,
		Completed:             res.Completed,
	})
}

func (api *pointSheetApi) query(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	reports, err := api.svc.QueryByStudent(ctx.Request().Context(), ctxUsr, ctx.Param("id"), ordering.Orderings)
	if err != nil {
		return err
	}
	if reports == nil {
		reports = []pointsheet.Report{}
	}
	return ctx.JSON(http.StatusOK, reports)
}
