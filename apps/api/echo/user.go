package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/aulavirtual/core/auth"
	"github.com/trezcool/aulavirtual/core/user"
	inmemdb "github.com/trezcool/aulavirtual/storage/database/inmem"
)

type userApi struct {
	*handlerDeps
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *handlerDeps) {
	api := userApi{handlerDeps: deps}

	ug := g.Group("/users", jwt)
	ug.GET("", api.query, teacherOrAbove)
	ug.POST("", api.create, adminOnly)
	ug.POST("/bulk", api.bulk, adminOnly)
	ug.GET("/:id", api.retrieve)
	ug.PATCH("/:id", api.update)
}

// Handlers

func (api *userApi) query(ctx echo.Context) error {
	var paging Paging
	paging.Bind(ctx)
	filter := user.QueryFilter{
		Search: ctx.QueryParam("search"),
		Role:   auth.Role(ctx.QueryParam("role")),
		Status: user.Status(ctx.QueryParam("status")),
		Skip:   paging.Skip,
		Limit:  paging.Limit,
	}
	return ctx.JSON(http.StatusOK, api.db.QueryUsers(filter))
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	usr, err := api.db.CreateUser(data)
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrDuplicate {
			return badRequest("El email ya está registrado")
		}
		return errors.Wrap(err, "creating user")
	}
	api.audit(ctx, "create", "user", usr.ID)
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	id := ctx.Param("id")
	if claims.Subject != id && !hasAnyRole(getContextRole(ctx), auth.RoleAdmin, auth.RoleTeacher) {
		return forbidden("No tienes permisos para ver este perfil")
	}
	usr, err := api.db.GetUser(id)
	if err != nil {
		return notFound("Usuario no encontrado")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	id := ctx.Param("id")
	isAdmin := getContextRole(ctx) == auth.RoleAdmin
	if claims.Subject != id && !isAdmin {
		return forbidden("No tienes permisos para actualizar este perfil")
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	// `Role` and `Status` can only be changed by admin
	if !isAdmin {
		data.Role = nil
		data.Status = nil
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	usr, err := api.db.UpdateUser(id, data)
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return notFound("Usuario no encontrado")
		}
		return errors.Wrap(err, "updating user")
	}
	api.audit(ctx, "update", "user", usr.ID)
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) bulk(ctx echo.Context) error {
	ids, err := bindIDs(ctx)
	if err != nil {
		return err
	}

	var apply func(*user.User)
	switch action := user.BulkAction(ctx.QueryParam("action")); action {
	case user.BulkDeactivate:
		apply = func(u *user.User) { u.Status = user.StatusInactive }
	case user.BulkReactivate:
		apply = func(u *user.User) { u.Status = user.StatusActive }
	case user.BulkChangeRole:
		role := auth.ParseRole(ctx.QueryParam("role"))
		if role == "" {
			return errInvalidAction
		}
		apply = func(u *user.User) { u.Role = role }
	default:
		return errInvalidAction
	}

	n := api.db.BulkUpdateUsers(ids, apply)
	api.audit(ctx, "bulk_"+ctx.QueryParam("action"), "user", fmt.Sprint(ids))
	return ctx.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Acción '%s' aplicada a %d usuarios", ctx.QueryParam("action"), n),
	})
}
