package notes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"memoir/internal/shared/utils/response"
)

type Controller interface {
	Count(c *gin.Context)
	GetAllNotes(c *gin.Context)
	GetNote(c *gin.Context)
	CreateNote(c *gin.Context)
	UpdateNote(c *gin.Context)
	DeleteNote(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) Count(c *gin.Context) {
	count, err := ctrl.service.Count(c.Request.Context())
	if err != nil {
		response.FailFromError(c, err, nil)
		return
	}

	response.OK(c, http.StatusOK, count)
}

func (ctrl *controller) GetAllNotes(c *gin.Context) {
	notes, err := ctrl.service.GetAllNotes(c.Request.Context())
	if err != nil {
		response.FailFromError(c, err, nil)
		return
	}

	response.OK(c, http.StatusOK, notes)
}

func (ctrl *controller) GetNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, []string{"Invalid note ID."}, nil)
		return
	}

	note, err := ctrl.service.GetNoteByID(c.Request.Context(), id)
	if err != nil {
		response.FailFromError(c, err, nil)
		return
	}

	response.OK(c, http.StatusOK, note)
}

func (ctrl *controller) CreateNote(c *gin.Context) {
	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, []string{"Invalid request body."}, nil)
		return
	}

	// Trim up front so a 422 echoes the sanitized body
	req.Normalize()

	note, err := ctrl.service.CreateNote(c.Request.Context(), req)
	if err != nil {
		response.FailFromError(c, err, req)
		return
	}

	response.OK(c, http.StatusCreated, note)
}

func (ctrl *controller) UpdateNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, []string{"Invalid note ID."}, nil)
		return
	}

	var req NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, []string{"Invalid request body."}, nil)
		return
	}

	req.Normalize()

	note, err := ctrl.service.UpdateNote(c.Request.Context(), id, req)
	if err != nil {
		response.FailFromError(c, err, req)
		return
	}

	response.OK(c, http.StatusOK, note)
}

func (ctrl *controller) DeleteNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, []string{"Invalid note ID."}, nil)
		return
	}

	note, err := ctrl.service.DeleteNote(c.Request.Context(), id)
	if err != nil {
		response.FailFromError(c, err, nil)
		return
	}

	response.OK(c, http.StatusOK, note)
}
