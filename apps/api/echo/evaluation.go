package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/aulavirtual/core"
	"github.com/trezcool/aulavirtual/core/evaluation"
	inmemdb "github.com/trezcool/aulavirtual/storage/database/inmem"
)

const msgQuestionNotFound = "Pregunta no encontrada"

type evaluationApi struct {
	*handlerDeps
}

func registerEvaluationAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *handlerDeps) {
	api := evaluationApi{handlerDeps: deps}

	eg := g.Group("", jwt)
	eg.GET("/courses/:id/gradebook", api.gradebook, teacherOrAbove)
	eg.POST("/grades", api.setGrade, teacherOrAbove)
	eg.GET("/courses/:id/my-grades", api.myGrades)

	// question bank
	eg.GET("/courses/:id/question-categories", api.queryCategories, contentAuthors)
	eg.POST("/courses/:id/question-categories", api.createCategory, contentAuthors)
	eg.GET("/courses/:id/questions", api.queryQuestions, contentAuthors)
	eg.POST("/courses/:id/questions", api.createQuestion, contentAuthors)
	eg.PATCH("/questions/:id", api.updateQuestion, contentAuthors)
	eg.DELETE("/questions/:id", api.destroyQuestion, teacherOrAbove)
}

// Handlers

func (api *evaluationApi) gradebook(ctx echo.Context) error {
	gb, err := api.db.Gradebook(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return notFound(msgCourseNotFound)
		}
		return errors.Wrap(err, "building gradebook")
	}
	return ctx.JSON(http.StatusOK, gb)
}

func (api *evaluationApi) setGrade(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	grade, ok := queryFloat(ctx, "grade")
	if !ok {
		return core.NewValidationError(nil, core.FieldError{Field: "grade", Error: "must be a number"})
	}
	data := evaluation.SetGrade{
		CourseID: ctx.QueryParam("course_id"),
		ItemID:   ctx.QueryParam("item_id"),
		UserID:   ctx.QueryParam("user_id"),
		Grade:    grade,
		Feedback: core.CleanString(ctx.QueryParam("feedback")),
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	id, err := api.db.SetGrade(data, claims.Subject)
	switch errors.Cause(err) {
	case nil:
	case inmemdb.ErrNotFound:
		return notFound("Item no encontrado")
	case inmemdb.ErrUnknownUser:
		return notFound("Usuario no encontrado")
	default:
		return errors.Wrap(err, "setting grade")
	}
	api.audit(ctx, "grade", "item", data.ItemID)
	return ctx.JSON(http.StatusOK, evaluation.SetGradeResult{Message: "Calificación guardada", GradeID: id})
}

func (api *evaluationApi) myGrades(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	crs, err := api.checkCourseAccess(ctx, ctx.Param("id"), false)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.db.MyGrades(crs.ID, claims.Subject))
}

func (api *evaluationApi) queryCategories(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.db.ListQuestionCategories(ctx.Param("id")))
}

func (api *evaluationApi) createCategory(ctx echo.Context) error {
	name := core.CleanString(ctx.QueryParam("name"))
	if name == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "name", Error: "this field is required"})
	}

	qc, err := api.db.CreateQuestionCategory(ctx.Param("id"), name, core.CleanString(ctx.QueryParam("description")))
	if err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return notFound(msgCourseNotFound)
		}
		return errors.Wrap(err, "creating question category")
	}
	api.audit(ctx, "create", "question_category", qc.ID)
	return ctx.JSON(http.StatusOK, qc)
}

func (api *evaluationApi) queryQuestions(ctx echo.Context) error {
	filter := evaluation.QuestionFilter{
		CategoryID: ctx.QueryParam("category_id"),
		Type:       evaluation.QuestionType(ctx.QueryParam("question_type")),
	}
	return ctx.JSON(http.StatusOK, api.db.ListQuestions(ctx.Param("id"), filter))
}

func (api *evaluationApi) createQuestion(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	var data evaluation.NewQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuestion")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	q, err := api.db.CreateQuestion(ctx.Param("id"), data, claims.Subject)
	switch errors.Cause(err) {
	case nil:
	case inmemdb.ErrNotFound:
		return notFound(msgCourseNotFound)
	case inmemdb.ErrUnknownCategory:
		return badRequest(msgCategoryNotFound)
	default:
		return errors.Wrap(err, "creating question")
	}
	api.audit(ctx, "create", "question", q.ID)
	return ctx.JSON(http.StatusOK, q)
}

func (api *evaluationApi) updateQuestion(ctx echo.Context) error {
	var data evaluation.UpdateQuestion
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateQuestion")
	}
	if err := data.Validate(api.validate, api.translator); err != nil {
		return err
	}

	q, err := api.db.UpdateQuestion(ctx.Param("id"), data)
	switch errors.Cause(err) {
	case nil:
	case inmemdb.ErrNotFound:
		return notFound(msgQuestionNotFound)
	case inmemdb.ErrUnknownCategory:
		return badRequest(msgCategoryNotFound)
	default:
		return errors.Wrap(err, "updating question")
	}
	api.audit(ctx, "update", "question", q.ID)
	return ctx.JSON(http.StatusOK, q)
}

func (api *evaluationApi) destroyQuestion(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := api.db.DeleteQuestion(id); err != nil {
		if errors.Cause(err) == inmemdb.ErrNotFound {
			return notFound(msgQuestionNotFound)
		}
		return errors.Wrap(err, "deleting question")
	}
	api.audit(ctx, "delete", "question", id)
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Pregunta eliminada"})
}
