package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/auth"
	"github.com/trezcool/aulavirtual/core/course"
	"github.com/trezcool/aulavirtual/core/enrollment"
	inmemdb "github.com/trezcool/aulavirtual/storage/database/inmem"
)

const (
	msgCourseNotFound    = "Curso no encontrado"
	msgCourseArchived    = "Los cursos archivados no se pueden editar"
	msgNoCourseAccess    = "No tienes acceso a este curso"
	msgDuplicatedShortnm = "Ya existe un curso con ese nombre corto"
)

// checkCourseAccess loads the course and enforces the read rules: students need the course to be
// published & visible, or an active enrollment. With edit, archived courses are rejected.
func (d *handlerDeps) checkCourseAccess(ctx echo.Context, courseID string, edit bool) (course.Course, error) {
	crs, err := d.db.GetCourse(courseID)
	if err != nil {
		return course.Course{}, notFound(msgCourseNotFound)
	}
	if edit && crs.IsReadOnly() {
		return course.Course{}, badRequest(msgCourseArchived)
	}
	if getContextRole(ctx) == auth.RoleStudent {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return course.Course{}, err
		}
		if !d.db.IsEnrolled(courseID, claims.Subject) && !(crs.Status == course.StatusPublished && crs.Visible) {
			return course.Course{}, forbidden(msgNoCourseAccess)
		}
	}
	return crs, nil
}

type courseApi struct {
	*handlerDeps
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *handlerDeps) {
	api := courseApi{handlerDeps: deps}

	cg := g.Group("/courses", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create, teacherOrAbove)
	cg.POST("/bulk", api.bulk, teacherOrAbove)

	// detail endpoints
	cg.GET("/:id", api.retrieve)
	cg.PATCH("/:id", api.update, contentAuthors)
	cg.DELETE("/:id", api.destroy, adminOnly)
	cg.POST("/:id/duplicate", api.duplicate, teacherOrAbove)
	cg.GET("/:id/stats", api.stats, teacherOrAbove)
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var paging Paging
	paging.Bind(ctx)
	filter := course.QueryFilter{
		Search:     ctx.QueryParam("search"),
		Status:     course.Status(ctx.QueryParam("status")),
		Visible:    queryBool(ctx, "visible"),
		CategoryID: ctx.QueryParam("category_id"),
		Tags:       queryList(ctx, "tags"),
		CreatedBy:  ctx.QueryParam("created_by"),
		Skip:       paging.Skip,
		Limit:      paging.Limit,
	}
	viewer := inmemdb.Viewer{ID: claims.Subject, Role: auth.ParseRole(claims.Role)}
	return ctx.JSON(http.StatusOK, api.db.QueryCourses(filter, viewer))
}

func (api *courseApi) create(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	data := course.NewCourse{NumSections: 5}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	crs, err := api.db.CreateCourse(data, claims.Subject)
	switch errors.Cause(err) {
	case nil:
	case inmemdb.ErrDuplicate:
		return badRequest(msgDuplicatedShortnm)
	case inmemdb.ErrUnknownCategory:
		return badRequest(msgCategoryNotFound)
	default:
		return errors.Wrap(err, "creating course")
	}
	api.audit(ctx, "create", "course", crs.ID)
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.checkCourseAccess(ctx, ctx.Param("id"), false)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	crs, err := api.checkCourseAccess(ctx, ctx.Param("id"), true)
	if err != nil {
		return err
	}
	// teachers only edit their own courses, or the ones they teach
	if getContextRole(ctx) == auth.RoleTeacher && crs.CreatedBy != claims.Subject &&
		!api.db.IsEnrolled(crs.ID, claims.Subject, enrollment.RoleTeacher) {
		return forbidden("No tienes permisos para editar este curso")
	}

	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if data.Shortname != nil {
		cleaned := core.CleanString(*data.Shortname)
		data.Shortname = &cleaned
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	crs, err = api.db.UpdateCourse(crs.ID, data)
	switch errors.Cause(err) {
	case nil:
	case inmemdb.ErrNotFound:
		return notFound(msgCourseNotFound)
	case inmemdb.ErrDuplicate:
		return badRequest(msgDuplicatedShortnm)
	case inmemdb.ErrUnknownCategory:
		return badRequest(msgCategoryNotFound)
	default:
		return errors.Wrap(err, "updating course")
	}
	api.audit(ctx, "update", "course", crs.ID)
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := api.db.DeleteCourse(id); err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return notFound(msgCourseNotFound)
		}
		return errors.Wrap(err, "deleting course")
	}
	api.audit(ctx, "delete", "course", id)
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Curso eliminado permanentemente"})
}

func (api *courseApi) duplicate(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	shortname := core.CleanString(ctx.QueryParam("new_shortname"))
	if shortname == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "new_shortname", Error: "this field is required"})
	}

	crs, err := api.db.DuplicateCourse(ctx.Param("id"), shortname, core.CleanString(ctx.QueryParam("new_fullname")), claims.Subject)
	switch errors.Cause(err) {
	case nil:
	case inmemdb.ErrNotFound:
		return notFound(msgCourseNotFound)
	case inmemdb.ErrDuplicate:
		return badRequest(msgDuplicatedShortnm)
	default:
		return errors.Wrap(err, "duplicating course")
	}
	api.audit(ctx, "duplicate", "course", crs.ID)
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) bulk(ctx echo.Context) error {
	action := course.BulkAction(ctx.QueryParam("action"))
	if action == course.BulkDelete && getContextRole(ctx) != auth.RoleAdmin {
		return forbidden("Solo los administradores pueden eliminar cursos")
	}
	if !action.Valid() {
		return errInvalidAction
	}
	ids, err := bindIDs(ctx)
	if err != nil {
		return err
	}

	n := api.db.BulkCourses(action, ids)
	api.audit(ctx, "bulk_"+string(action), "course", fmt.Sprint(ids))
	if action == course.BulkDelete {
		return ctx.JSON(http.StatusOK, echo.Map{"message": fmt.Sprintf("%d cursos eliminados", n)})
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": fmt.Sprintf("Acción '%s' aplicada a %d cursos", action, n)})
}

func (api *courseApi) stats(ctx echo.Context) error {
	stats, err := api.db.CourseStats(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return notFound(msgCourseNotFound)
		}
		return errors.Wrap(err, "computing course stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
