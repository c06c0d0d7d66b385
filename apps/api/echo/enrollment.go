package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/enrollment"
	inmemdb "github.com/trezcool/aulavirtual/storage/database/inmem"
)

const msgEnrollmentNotFound = "Matriculación no encontrada"

type enrollmentApi struct {
	*handlerDeps
}

func registerEnrollmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *handlerDeps) {
	api := enrollmentApi{handlerDeps: deps}

	eg := g.Group("", jwt)
	eg.GET("/courses/:id/enrollments", api.query, teacherOrAbove)
	eg.POST("/courses/:id/enrollments", api.create, teacherOrAbove)
	eg.POST("/courses/:id/enrollments/bulk", api.bulk, teacherOrAbove)
	eg.PATCH("/enrollments/:id", api.update, teacherOrAbove)
	eg.DELETE("/enrollments/:id", api.destroy, teacherOrAbove)
	eg.GET("/courses/:id/enrollment-methods", api.queryMethods, teacherOrAbove)
	eg.POST("/courses/:id/enrollment-methods", api.createMethod, teacherOrAbove)

	// any authenticated user
	eg.POST("/enroll/code", api.enrollWithCode)
	eg.GET("/my-enrollments", api.mine)
}

func (api *enrollmentApi) requireCourse(ctx echo.Context) (string, error) {
	courseID := ctx.Param("id")
	if _, err := api.db.GetCourse(courseID); err != nil {
		return "", notFound(msgCourseNotFound)
	}
	return courseID, nil
}

func parseEnrollmentRole(s string) (enrollment.Role, bool) {
	switch r := enrollment.Role(s); r {
	case "":
		return enrollment.RoleStudent, true
	case enrollment.RoleStudent, enrollment.RoleTeacher, enrollment.RoleEditor:
		return r, true
	}
	return "", false
}

// Handlers

func (api *enrollmentApi) query(ctx echo.Context) error {
	courseID, err := api.requireCourse(ctx)
	if err != nil {
		return err
	}
	var paging Paging
	paging.Bind(ctx)
	filter := enrollment.QueryFilter{
		Role:   enrollment.Role(ctx.QueryParam("role")),
		Status: enrollment.Status(ctx.QueryParam("status")),
		Search: ctx.QueryParam("search"),
		Skip:   paging.Skip,
		Limit:  paging.Limit,
	}
	return ctx.JSON(http.StatusOK, api.db.ListEnrollments(courseID, filter))
}

func (api *enrollmentApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	courseID, err := api.requireCourse(ctx)
	if err != nil {
		return err
	}

	var data enrollment.NewEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEnrollment")
	}
	data.CourseID = courseID
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	enr, err := api.db.Enroll(courseID, data, claims.Subject)
	switch errors.Cause(err) {
	case nil:
	case inmemdb.ErrNotFound:
		return notFound(msgCourseNotFound)
	case inmemdb.ErrUnknownUser:
		return notFound("Usuario no encontrado")
	case inmemdb.ErrDuplicate:
		return badRequest("El usuario ya está matriculado en este curso")
	default:
		return errors.Wrap(err, "enrolling user")
	}
	api.audit(ctx, "create", "enrollment", enr.ID)
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) bulk(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	courseID, err := api.requireCourse(ctx)
	if err != nil {
		return err
	}
	role, ok := parseEnrollmentRole(ctx.QueryParam("role"))
	if !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "role", Error: "invalid role"})
	}
	ids, err := bindIDs(ctx)
	if err != nil {
		return err
	}

	enrolled, skipped, err := api.db.BulkEnroll(courseID, ids, role, claims.Subject)
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return notFound(msgCourseNotFound)
		}
		return errors.Wrap(err, "bulk enrolling")
	}
	api.audit(ctx, "bulk_enroll", "course", courseID)
	return ctx.JSON(http.StatusOK, enrollment.BulkResult{
		Message:  fmt.Sprintf("%d usuarios matriculados, %d omitidos", enrolled, skipped),
		Enrolled: enrolled,
		Skipped:  skipped,
	})
}

func (api *enrollmentApi) update(ctx echo.Context) error {
	var data enrollment.UpdateEnrollment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEnrollment")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	enr, err := api.db.UpdateEnrollment(ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return notFound(msgEnrollmentNotFound)
		}
		return errors.Wrap(err, "updating enrollment")
	}
	api.audit(ctx, "update", "enrollment", enr.ID)
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := api.db.DeleteEnrollment(id); err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return notFound(msgEnrollmentNotFound)
		}
		return errors.Wrap(err, "deleting enrollment")
	}
	api.audit(ctx, "delete", "enrollment", id)
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Matriculación eliminada"})
}

func (api *enrollmentApi) queryMethods(ctx echo.Context) error {
	courseID, err := api.requireCourse(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.db.ListMethods(courseID))
}

func (api *enrollmentApi) createMethod(ctx echo.Context) error {
	courseID, err := api.requireCourse(ctx)
	if err != nil {
		return err
	}
	methodType := ctx.QueryParam("method_type")
	if methodType == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "method_type", Error: "this field is required"})
	}
	role, ok := parseEnrollmentRole(ctx.QueryParam("role"))
	if !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "role", Error: "invalid role"})
	}

	method, err := api.db.CreateMethod(courseID, methodType, core.CleanString(ctx.QueryParam("enrollment_code")), role)
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return notFound(msgCourseNotFound)
		}
		return errors.Wrap(err, "creating enrollment method")
	}
	api.audit(ctx, "create", "enrollment_method", method.ID)
	return ctx.JSON(http.StatusOK, method)
}

func (api *enrollmentApi) enrollWithCode(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	enr, err := api.db.EnrollWithCode(ctx.QueryParam("code"), claims.Subject)
	switch errors.Cause(err) {
	case nil:
	case inmemdb.ErrInvalidCode, inmemdb.ErrUnknownUser:
		return badRequest("Código de matriculación inválido")
	case inmemdb.ErrDuplicate:
		return badRequest("Ya estás matriculado en este curso")
	default:
		return errors.Wrap(err, "enrolling with code")
	}
	api.audit(ctx, "self_enroll", "enrollment", enr.ID)
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Matriculación exitosa", "enrollment_id": enr.ID})
}

func (api *enrollmentApi) mine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.db.MyEnrollments(claims.Subject))
}
