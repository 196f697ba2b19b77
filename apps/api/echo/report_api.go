package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/classtrack/classtrack/core/attendance"
	"github.com/classtrack/classtrack/core/user"
)

var errUsrNotFoundInCtx = errors.New("user object not found in echo.Context")

type reportApi struct {
	s *Server
}

// registerReportAPI mounts the read-only REST views used by exports and dashboards.
func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := reportApi{s: s}

	ug := g.Group("/users", jwt)
	ug.GET("", api.queryUsers, s.staffMiddleware)
	ug.GET("/roles", api.queryRoles, s.staffMiddleware)
	ug.GET("/:id/absences", api.studentSummary, s.ctxUserOrStaffMiddleware)

	cg := g.Group("/classes", jwt)
	cg.GET("/:id/report", api.classReport, s.staffMiddleware)
	cg.GET("/digest", api.digest, s.staffMiddleware)
}

// Handlers

func (api *reportApi) queryUsers(ctx echo.Context) error {
	var query UserQueryRequest
	if err := ctx.Bind(&query); err != nil {
		return ctx.JSON(http.StatusOK, []user.User{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	users, err := api.s.deps.UserSvc.Query(ctx.Request().Context(), query.filter(), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	if users == nil {
		users = []user.User{}
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *reportApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}

func (api *reportApi) studentSummary(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}

	rows, err := api.s.deps.AttendanceSvc.StudentSummary(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "building student summary")
	}
	resp := make([]SubjectStandingResponse, len(rows))
	for i, row := range rows {
		resp[i] = SubjectStandingResponse{
			ClassID:          row.ClassID,
			ClassName:        row.ClassName,
			StandingResponse: newStandingResponse(row.Standing),
		}
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *reportApi) classReport(ctx echo.Context) error {
	id := ctx.Param("id")
	if !isUUID(id) {
		return errHttpNotFound
	}
	report, err := api.s.deps.AttendanceSvc.ClassReport(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "building class report")
	}
	return ctx.JSON(http.StatusOK, newReportResponse(report))
}

func (api *reportApi) digest(ctx echo.Context) error {
	reports, err := api.s.deps.AttendanceSvc.CriticalDigest(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "building digest")
	}
	resp := make([]ReportResponse, len(reports))
	for i, report := range reports {
		resp[i] = newReportResponse(report)
	}
	return ctx.JSON(http.StatusOK, resp)
}

type (
	UserQueryRequest struct {
		Search   string   `query:"search"`
		Roles    []string `query:"role"`
		IsActive string   `query:"is_active"`
	}

	StandingResponse struct {
		Count     int     `json:"count"`
		Threshold int     `json:"threshold"`
		Ratio     float64 `json:"ratio"`
		Progress  float64 `json:"progress"`
		Critical  bool    `json:"critical"`
	}

	StudentStandingResponse struct {
		UserID string `json:"user"`
		Name   string `json:"name"`
		StandingResponse
	}

	SubjectStandingResponse struct {
		ClassID   string `json:"class"`
		ClassName string `json:"className"`
		StandingResponse
	}

	ReportResponse struct {
		ClassID     string                    `json:"class"`
		ClassName   string                    `json:"className"`
		TeacherID   string                    `json:"teacher,omitempty"`
		MaxAbsences int                       `json:"maxAbsences"`
		Rows        []StudentStandingResponse `json:"rows"`
	}
)

func (uq UserQueryRequest) filter() *user.QueryFilter {
	filter := &user.QueryFilter{Search: uq.Search, Roles: uq.Roles}
	if isActive, err := strconv.ParseBool(uq.IsActive); err == nil {
		filter.IsActive = &isActive
	}
	return filter
}

func newStandingResponse(st attendance.Standing) StandingResponse {
	return StandingResponse{
		Count:     st.Count,
		Threshold: st.Threshold,
		Ratio:     st.Ratio(),
		Progress:  st.Progress(),
		Critical:  st.Critical(),
	}
}

func newReportResponse(report attendance.Report) ReportResponse {
	resp := ReportResponse{
		ClassID:     report.Class.ID,
		ClassName:   report.Class.Name,
		TeacherID:   report.Class.TeacherID,
		MaxAbsences: report.Class.MaxAbsences,
		Rows:        make([]StudentStandingResponse, len(report.Rows)),
	}
	for i, row := range report.Rows {
		resp.Rows[i] = StudentStandingResponse{
			UserID:           row.UserID,
			Name:             row.Name,
			StandingResponse: newStandingResponse(row.Standing),
		}
	}
	return resp
}
