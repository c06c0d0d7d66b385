package echoapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/auth"
	"github.com/trezcool/aulavirtual/core/course"
	inmemdb "github.com/trezcool/aulavirtual/storage/database/inmem"
)

const (
	msgSectionNotFound = "Sección no encontrada"
	msgItemNotFound    = "Item no encontrado"
	msgNoChanges       = "Sin cambios"
)

type contentApi struct {
	*handlerDeps
}

func registerContentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *handlerDeps) {
	api := contentApi{handlerDeps: deps}

	sg := g.Group("/courses/:id/sections", jwt)
	sg.GET("", api.querySections)
	sg.POST("", api.createSection, contentAuthors)
	sg.GET("/:sid", api.retrieveSection)
	sg.PATCH("/:sid", api.updateSection, contentAuthors)
	sg.DELETE("/:sid", api.destroySection, teacherOrAbove)
	sg.POST("/:sid/move", api.moveSection, contentAuthors)

	ig := g.Group("", jwt)
	ig.GET("/sections/:id/items", api.queryItems)
	ig.POST("/sections/:id/items", api.createItem, contentAuthors)
	ig.GET("/items/:id", api.retrieveItem)
	ig.PATCH("/items/:id", api.updateItem, contentAuthors)
	ig.DELETE("/items/:id", api.destroyItem, contentAuthors)
	ig.PATCH("/items/:id/visibility", api.setItemVisibility, contentAuthors)
	ig.POST("/items/:id/duplicate", api.duplicateItem, contentAuthors)
	ig.POST("/items/:id/move", api.moveItem, contentAuthors)
}

func isStudent(ctx echo.Context) bool {
	return getContextRole(ctx) == auth.RoleStudent
}

// courseSection loads the :sid section of the :id course.
func (api *contentApi) courseSection(ctx echo.Context) (course.Section, error) {
	sec, err := api.db.GetSection(ctx.Param("sid"))
	if err != nil || sec.CourseID != ctx.Param("id") {
		return course.Section{}, notFound(msgSectionNotFound)
	}
	return sec, nil
}

// checkSectionAccess loads a section and applies the access rules of its course.
func (api *contentApi) checkSectionAccess(ctx echo.Context, sectionID string, edit bool) (course.Section, error) {
	sec, err := api.db.GetSection(sectionID)
	if err != nil {
		return course.Section{}, notFound(msgSectionNotFound)
	}
	if _, err := api.checkCourseAccess(ctx, sec.CourseID, edit); err != nil {
		return course.Section{}, err
	}
	return sec, nil
}

// checkItemAccess loads an item and applies the access rules of its course.
func (api *contentApi) checkItemAccess(ctx echo.Context, edit bool) (course.Item, error) {
	item, err := api.db.GetItem(ctx.Param("id"))
	if err != nil {
		return course.Item{}, notFound(msgItemNotFound)
	}
	if _, err := api.checkCourseAccess(ctx, item.CourseID, edit); err != nil {
		return course.Item{}, err
	}
	return item, nil
}

// Sections

func (api *contentApi) querySections(ctx echo.Context) error {
	courseID := ctx.Param("id")
	if _, err := api.checkCourseAccess(ctx, courseID, false); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.db.ListSections(courseID, isStudent(ctx)))
}

func (api *contentApi) createSection(ctx echo.Context) error {
	courseID := ctx.Param("id")
	if _, err := api.checkCourseAccess(ctx, courseID, true); err != nil {
		return err
	}

	var data course.NewSection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSection")
	}
	data.CourseID = courseID
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	sec, err := api.db.CreateSection(courseID, data)
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return notFound(msgCourseNotFound)
		}
		return errors.Wrap(err, "creating section")
	}
	api.audit(ctx, "create", "section", sec.ID)
	return ctx.JSON(http.StatusOK, sec)
}

func (api *contentApi) retrieveSection(ctx echo.Context) error {
	if _, err := api.checkCourseAccess(ctx, ctx.Param("id"), false); err != nil {
		return err
	}
	sec, err := api.courseSection(ctx)
	if err != nil {
		return err
	}
	if !sec.Visible && isStudent(ctx) {
		return notFound(msgSectionNotFound)
	}
	return ctx.JSON(http.StatusOK, sec)
}

func (api *contentApi) updateSection(ctx echo.Context) error {
	if _, err := api.checkCourseAccess(ctx, ctx.Param("id"), true); err != nil {
		return err
	}
	sec, err := api.courseSection(ctx)
	if err != nil {
		return err
	}

	var data course.UpdateSection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSection")
	}

	sec, err = api.db.UpdateSection(sec.ID, data)
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return notFound(msgSectionNotFound)
		}
		return errors.Wrap(err, "updating section")
	}
	api.audit(ctx, "update", "section", sec.ID)
	return ctx.JSON(http.StatusOK, sec)
}

func (api *contentApi) destroySection(ctx echo.Context) error {
	if _, err := api.checkCourseAccess(ctx, ctx.Param("id"), true); err != nil {
		return err
	}
	sec, err := api.courseSection(ctx)
	if err != nil {
		return err
	}

	force := queryBool(ctx, "force")
	err = api.db.DeleteSection(sec.ID, force != nil && *force)
	if notEmpty, ok := errors.Cause(err).(*inmemdb.SectionNotEmptyError); ok {
		return badRequest(fmt.Sprintf("La sección tiene %d elementos. Usa force=true para confirmar.", notEmpty.Items))
	}
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return notFound(msgSectionNotFound)
		}
		return errors.Wrap(err, "deleting section")
	}
	api.audit(ctx, "delete", "section", sec.ID)
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Sección eliminada"})
}

func (api *contentApi) moveSection(ctx echo.Context) error {
	if _, err := api.checkCourseAccess(ctx, ctx.Param("id"), true); err != nil {
		return err
	}
	sec, err := api.courseSection(ctx)
	if err != nil {
		return err
	}
	newPosition, err := strconv.Atoi(ctx.QueryParam("new_position"))
	if err != nil || newPosition < 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "new_position", Error: "must be a positive integer"})
	}
	if newPosition == sec.Position {
		return ctx.JSON(http.StatusOK, echo.Map{"message": msgNoChanges})
	}

	oldPosition, err := api.db.MoveSection(sec.ID, newPosition)
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return notFound(msgSectionNotFound)
		}
		return errors.Wrap(err, "moving section")
	}
	api.audit(ctx, "move", "section", sec.ID)
	return ctx.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Sección movida de %d a %d", oldPosition, newPosition),
	})
}

// Items

func (api *contentApi) queryItems(ctx echo.Context) error {
	sec, err := api.checkSectionAccess(ctx, ctx.Param("id"), false)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.db.ListItems(sec.ID, isStudent(ctx)))
}

func (api *contentApi) createItem(ctx echo.Context) error {
	sec, err := api.checkSectionAccess(ctx, ctx.Param("id"), true)
	if err != nil {
		return err
	}

	var data course.NewItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewItem")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	item, err := api.db.CreateItem(sec.ID, data)
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return notFound(msgSectionNotFound)
		}
		return errors.Wrap(err, "creating item")
	}
	api.audit(ctx, "create", "item", item.ID)
	return ctx.JSON(http.StatusOK, item)
}

func (api *contentApi) retrieveItem(ctx echo.Context) error {
	item, err := api.checkItemAccess(ctx, false)
	if err != nil {
		return err
	}
	if !item.Visible && isStudent(ctx) {
		return notFound(msgItemNotFound)
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *contentApi) updateItem(ctx echo.Context) error {
	item, err := api.checkItemAccess(ctx, true)
	if err != nil {
		return err
	}

	var data course.UpdateItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateItem")
	}

	item, err = api.db.UpdateItem(item.ID, data)
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return notFound(msgItemNotFound)
		}
		return errors.Wrap(err, "updating item")
	}
	api.audit(ctx, "update", "item", item.ID)
	return ctx.JSON(http.StatusOK, item)
}

func (api *contentApi) setItemVisibility(ctx echo.Context) error {
	item, err := api.checkItemAccess(ctx, true)
	if err != nil {
		return err
	}
	visible := queryBool(ctx, "visible")
	if visible == nil {
		return core.NewValidationError(nil, core.FieldError{Field: "visible", Error: "must be true or false"})
	}

	if err := api.db.SetItemVisibility(item.ID, *visible); err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return notFound(msgItemNotFound)
		}
		return errors.Wrap(err, "setting item visibility")
	}
	api.audit(ctx, "update", "item", item.ID)
	msg := "Item oculto"
	if *visible {
		msg = "Item visible"
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": msg})
}

func (api *contentApi) destroyItem(ctx echo.Context) error {
	item, err := api.checkItemAccess(ctx, true)
	if err != nil {
		return err
	}
	if err := api.db.DeleteItem(item.ID); err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return notFound(msgItemNotFound)
		}
		return errors.Wrap(err, "deleting item")
	}
	api.audit(ctx, "delete", "item", item.ID)
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Item eliminado"})
}

func (api *contentApi) duplicateItem(ctx echo.Context) error {
	item, err := api.checkItemAccess(ctx, true)
	if err != nil {
		return err
	}

	dup, err := api.db.DuplicateItem(item.ID, ctx.QueryParam("target_section_id"))
	switch errors.Cause(err) {
	case nil:
	case inmemdb.ErrNotFound:
		return notFound(msgItemNotFound)
	case inmemdb.ErrUnknownSection:
		return notFound("Sección destino no encontrada")
	default:
		return errors.Wrap(err, "duplicating item")
	}
	api.audit(ctx, "duplicate", "item", dup.ID)
	return ctx.JSON(http.StatusOK, dup)
}

func (api *contentApi) moveItem(ctx echo.Context) error {
	item, err := api.checkItemAccess(ctx, true)
	if err != nil {
		return err
	}
	targetID := ctx.QueryParam("target_section_id")
	if targetID == "" {
		targetID = item.SectionID
	}
	newPosition, err := strconv.Atoi(ctx.QueryParam("new_position"))
	if err != nil || newPosition < 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "new_position", Error: "must be a positive integer"})
	}
	if targetID == item.SectionID && newPosition == item.Position {
		return ctx.JSON(http.StatusOK, echo.Map{"message": msgNoChanges})
	}

	err = api.db.MoveItem(item.ID, targetID, newPosition)
	switch errors.Cause(err) {
	case nil:
	case inmemdb.ErrNotFound:
		return notFound(msgItemNotFound)
	case inmemdb.ErrUnknownSection:
		return notFound("Sección destino no encontrada")
	default:
		return errors.Wrap(err, "moving item")
	}
	api.audit(ctx, "move", "item", item.ID)
	return ctx.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Item movido a sección %s, posición %d", targetID, newPosition),
	})
}
