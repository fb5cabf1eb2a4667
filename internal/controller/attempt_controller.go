package controller

import (
	"encoding/json"
	"strconv"

	"edu_quiz_backend/internal/service"
	"edu_quiz_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	Service *service.AttemptService
}

func NewAttemptController(svc *service.AttemptService) *AttemptController {
	return &AttemptController{Service: svc}
}

type updateAnswerRequest struct {
	QuestionID uint            `json:"questionId" binding:"required"`
	Answer     json.RawMessage `json:"answer" binding:"required"`
}

type updateAnswerResponse struct {
	QuestionID uint `json:"questionId"`
	Score      int  `json:"score"`
}

// @Summary 开始答题
// @Tags 测验答题
// @Produce json
// @Security BearerAuth
// @Param quizId path int true "测验ID"
// @Success 201 {object} util.Response
// @Router /api/quizzes/{quizId}/attempts [post]
func (c *AttemptController) Start(ctx *gin.Context) {
	quizID, err := strconv.Atoi(ctx.Param("quizId"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	user := util.GetUserFromContext(ctx)

	view, err := c.Service.Start(uint(quizID), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Created(ctx, view)
}

// @Summary 我的答题历史
// @Tags 测验答题
// @Produce json
// @Security BearerAuth
// @Param quizId path int true "测验ID"
// @Success 200 {object} util.Response
// @Router /api/quizzes/{quizId}/attempts [get]
func (c *AttemptController) ListMine(ctx *gin.Context) {
	quizID, err := strconv.Atoi(ctx.Param("quizId"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	user := util.GetUserFromContext(ctx)

	summaries, err := c.Service.ListMine(uint(quizID), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, summaries)
}

// @Summary 续答
// @Tags 测验答题
// @Produce json
// @Security BearerAuth
// @Param id path int true "答题ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id} [get]
func (c *AttemptController) Resume(ctx *gin.Context) {
	attemptID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}
	user := util.GetUserFromContext(ctx)

	view, err := c.Service.Resume(uint(attemptID), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, view)
}

// @Summary 保存单题作答
// @Tags 测验答题
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "答题ID"
// @Param body body updateAnswerRequest true "作答内容"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/answers [put]
func (c *AttemptController) UpdateAnswer(ctx *gin.Context) {
	attemptID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}
	var req updateAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	user := util.GetUserFromContext(ctx)

	score, err := c.Service.UpdateAnswer(uint(attemptID), user.UserID, req.QuestionID, req.Answer)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, updateAnswerResponse{QuestionID: req.QuestionID, Score: score})
}

// @Summary 提交答卷
// @Tags 测验答题
// @Produce json
// @Security BearerAuth
// @Param id path int true "答题ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/submit [post]
func (c *AttemptController) Submit(ctx *gin.Context) {
	attemptID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}
	user := util.GetUserFromContext(ctx)

	result, err := c.Service.Submit(uint(attemptID), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 教师强制提交
// @Tags 测验管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "答题ID"
// @Success 200 {object} util.Response
// @Router /api/teacher/attempts/{id}/force-submit [post]
func (c *AttemptController) ForceSubmit(ctx *gin.Context) {
	attemptID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		util.BadRequest(ctx, "invalid attempt id")
		return
	}
	user := util.GetUserFromContext(ctx)

	result, err := c.Service.ForceSubmit(uint(attemptID), user.UserID)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 查看测验已提交答卷
// @Tags 测验管理
// @Produce json
// @Security BearerAuth
// @Param quizId path int true "测验ID"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} util.PageResponse
// @Router /api/teacher/quizzes/{quizId}/attempts [get]
func (c *AttemptController) ListSubmitted(ctx *gin.Context) {
	quizID, err := strconv.Atoi(ctx.Param("quizId"))
	if err != nil {
		util.BadRequest(ctx, "invalid quiz id")
		return
	}
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	user := util.GetUserFromContext(ctx)

	attempts, total, err := c.Service.ListSubmitted(uint(quizID), user.UserID, page, limit)
	if err != nil {
		util.RespondError(ctx, err)
		return
	}
	util.Page(ctx, attempts, total, page, limit)
}
