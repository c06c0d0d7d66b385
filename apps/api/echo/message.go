package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/aulavirtual/core/message"
	inmemdb "github.com/trezcool/aulavirtual/storage/database/inmem"
)

const msgThreadNotFound = "Hilo no encontrado"

type messageApi struct {
	*handlerDeps
}

func registerMessageAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *handlerDeps) {
	api := messageApi{handlerDeps: deps}

	mg := g.Group("/messages", jwt)
	mg.GET("/threads", api.queryThreads)
	mg.POST("/threads", api.createThread)
	mg.GET("/threads/:id/messages", api.threadMessages)
	mg.POST("/threads/:id/messages", api.reply)
	mg.GET("/unread-count", api.unreadCount)
}

// Handlers

func (api *messageApi) queryThreads(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.db.ListThreads(claims.Subject))
}

func (api *messageApi) createThread(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	data := message.NewThread{
		RecipientID: ctx.QueryParam("recipient_id"),
		Subject:     ctx.QueryParam("subject"),
		Content:     ctx.QueryParam("content"),
		CourseID:    ctx.QueryParam("course_id"),
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	thread, err := api.db.CreateThread(claims.Subject, data)
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrUnknownUser {
			return notFound("Destinatario no encontrado")
		}
		return errors.Wrap(err, "creating thread")
	}
	return ctx.JSON(http.StatusOK, thread)
}

func (api *messageApi) threadMessages(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	msgs, err := api.db.ThreadMessages(ctx.Param("id"), claims.Subject)
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return notFound(msgThreadNotFound)
		}
		return errors.Wrap(err, "listing thread messages")
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messageApi) reply(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	data := message.Reply{Content: ctx.QueryParam("content")}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	msg, err := api.db.Reply(ctx.Param("id"), claims.Subject, data.Content)
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return notFound(msgThreadNotFound)
		}
		return errors.Wrap(err, "replying to thread")
	}
	return ctx.JSON(http.StatusOK, msg)
}

func (api *messageApi) unreadCount(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, message.UnreadCount{UnreadCount: api.db.UnreadCount(claims.Subject)})
}
