package tags

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"memoir/internal/shared/utils/response"
)

type Controller interface {
	Count(c *gin.Context)
	GetAllTags(c *gin.Context)
	GetTag(c *gin.Context)
	CreateTag(c *gin.Context)
	UpdateTag(c *gin.Context)
	DeleteTag(c *gin.Context)
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

func (ctrl *controller) GetAllTags(c *gin.Context) {
	tags, err := ctrl.service.GetAllTags(c.Request.Context())
	if err != nil {
		response.FailFromError(c, err, nil)
		return
	}

	response.OK(c, http.StatusOK, tags)
}

func (ctrl *controller) GetTag(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, []string{"Invalid tag ID."}, nil)
		return
	}

	tag, err := ctrl.service.GetTagByID(c.Request.Context(), id)
	if err != nil {
		response.FailFromError(c, err, nil)
		return
	}

	response.OK(c, http.StatusOK, tag)
}

func (ctrl *controller) CreateTag(c *gin.Context) {
	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, []string{"Invalid request body."}, nil)
		return
	}

	// Trim up front so a 422 echoes the sanitized body
	req.Normalize()

	tag, err := ctrl.service.CreateTag(c.Request.Context(), req)
	if err != nil {
		response.FailFromError(c, err, req)
		return
	}

	response.OK(c, http.StatusCreated, tag)
}

func (ctrl *controller) UpdateTag(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, []string{"Invalid tag ID."}, nil)
		return
	}

	var req TagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, []string{"Invalid request body."}, nil)
		return
	}

	req.Normalize()

	tag, err := ctrl.service.UpdateTag(c.Request.Context(), id, req)
	if err != nil {
		response.FailFromError(c, err, req)
		return
	}

	response.OK(c, http.StatusOK, tag)
}

func (ctrl *controller) DeleteTag(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, []string{"Invalid tag ID."}, nil)
		return
	}

	tag, err := ctrl.service.DeleteTag(c.Request.Context(), id)
	if err != nil {
		response.FailFromError(c, err, nil)
		return
	}

	response.OK(c, http.StatusOK, tag)
}
