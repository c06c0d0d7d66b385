package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/aulavirtual/core/auth"
	"github.com/trezcool/aulavirtual/core/course"
	inmemdb "github.com/trezcool/aulavirtual/storage/database/inmem"
)

const msgCategoryNotFound = "Categoría no encontrada"

type categoryApi struct {
	*handlerDeps
}

func registerCategoryAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *handlerDeps) {
	api := categoryApi{handlerDeps: deps}

	cg := g.Group("/categories", jwt)
	cg.GET("", api.query)
	cg.POST("", api.create, adminOnly)
	cg.GET("/tree", api.tree)
	cg.GET("/:id", api.retrieve)
	cg.PATCH("/:id", api.update, adminOnly)
	cg.DELETE("/:id", api.destroy, adminOnly)
}

// query lists root categories, or the children of parent_id.
// Hidden ones are only listed with include_hidden, for teacher-or-above.
func (api *categoryApi) query(ctx echo.Context) error {
	includeHidden := queryBool(ctx, "include_hidden")
	withHidden := includeHidden != nil && *includeHidden &&
		hasAnyRole(getContextRole(ctx), auth.RoleAdmin, auth.RoleTeacher)
	return ctx.JSON(http.StatusOK, api.db.ListCategories(ctx.QueryParam("parent_id"), withHidden))
}

func (api *categoryApi) tree(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.db.CategoryTree())
}

func (api *categoryApi) retrieve(ctx echo.Context) error {
	cat, err := api.db.GetCategory(ctx.Param("id"))
	if err != nil {
		return notFound(msgCategoryNotFound)
	}
	return ctx.JSON(http.StatusOK, cat)
}

func (api *categoryApi) create(ctx echo.Context) error {
	var data course.NewCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCategory")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	cat, err := api.db.CreateCategory(data)
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrUnknownCategory {
			return badRequest(msgCategoryNotFound)
		}
		return errors.Wrap(err, "creating category")
	}
	api.audit(ctx, "create", "category", cat.ID)
	return ctx.JSON(http.StatusOK, cat)
}

func (api *categoryApi) update(ctx echo.Context) error {
	var data course.UpdateCategory
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCategory")
	}

	cat, err := api.db.UpdateCategory(ctx.Param("id"), data)
	switch errors.Cause(err) {
	case nil:
	case inmemdb.ErrNotFound:
		return notFound(msgCategoryNotFound)
	case inmemdb.ErrUnknownCategory:
		return badRequest(msgCategoryNotFound)
	default:
		return errors.Wrap(err, "updating category")
	}
	api.audit(ctx, "update", "category", cat.ID)
	return ctx.JSON(http.StatusOK, cat)
}

func (api *categoryApi) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	err := api.db.DeleteCategory(id)
	if inUse, ok := errors.Cause(err).(*inmemdb.CategoryInUseError); ok {
		if inUse.Courses > 0 {
			return badRequest(fmt.Sprintf("No se puede eliminar: hay %d cursos en esta categoría", inUse.Courses))
		}
		return badRequest(fmt.Sprintf("No se puede eliminar: hay %d subcategorías", inUse.Subcategories))
	}
	switch errors.Cause(err) {
	case nil:
	case inmemdb.ErrNotFound:
		return notFound(msgCategoryNotFound)
	default:
		return errors.Wrap(err, "deleting category")
	}
	api.audit(ctx, "delete", "category", id)
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Categoría eliminada"})
}
