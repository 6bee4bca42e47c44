package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quizone/services"
)

type ExamHandler struct {
	examService   *services.ExamService
	resultService *services.ResultService
}

func NewExamHandler(examService *services.ExamService, resultService *services.ResultService) *ExamHandler {
	return &ExamHandler{
		examService:   examService,
		resultService: resultService,
	}
}

func (h *ExamHandler) CreateExam(c *gin.Context) {
	var req services.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	exam, err := h.examService.CreateExam(c.Request.Context(), caller(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Exam created successfully", "exam": exam})
}

func (h *ExamHandler) GetExam(c *gin.Context) {
	exam, err := h.examService.GetExam(c.Request.Context(), c.Param("examId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "exam": exam})
}

// GetExamByQuestionPack answers 203 when the pack has no exam yet.
func (h *ExamHandler) GetExamByQuestionPack(c *gin.Context) {
	exam, err := h.examService.GetExamByQuestionPack(c.Request.Context(), c.Param("questionPackId"))
	if errors.Is(err, services.ErrNoExam) {
		c.JSON(http.StatusNonAuthoritativeInfo, errorBody(services.CodeNotFound, "No exam found for this question pack."))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "exam": exam})
}

func (h *ExamHandler) SubmitExam(c *gin.Context) {
	var req services.SubmitExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.resultService.SubmitExam(c.Request.Context(), caller(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Exam submitted successfully", "result": result})
}

func (h *ExamHandler) GetExamResults(c *gin.Context) {
	results, err := h.resultService.GetExamResults(c.Request.Context(), caller(c).ID, c.Param("examId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "answers": results.Answers, "results": results.Results})
}

func (h *ExamHandler) GetStudentResults(c *gin.Context) {
	results, err := h.resultService.GetStudentResults(c.Request.Context(), caller(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "results": results})
}
