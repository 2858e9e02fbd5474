package people

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"memoir/internal/shared/utils/response"
)

type Controller interface {
	Count(c *gin.Context)
	GetAllPeople(c *gin.Context)
	GetPerson(c *gin.Context)
	CreatePerson(c *gin.Context)
	UpdatePerson(c *gin.Context)
	DeletePerson(c *gin.Context)
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

func (ctrl *controller) GetAllPeople(c *gin.Context) {
	people, err := ctrl.service.GetAllPeople(c.Request.Context())
	if err != nil {
		response.FailFromError(c, err, nil)
		return
	}

	response.OK(c, http.StatusOK, people)
}

func (ctrl *controller) GetPerson(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, []string{"Invalid person ID."}, nil)
		return
	}

	person, err := ctrl.service.GetPersonByID(c.Request.Context(), id)
	if err != nil {
		response.FailFromError(c, err, nil)
		return
	}

	response.OK(c, http.StatusOK, person)
}

func (ctrl *controller) CreatePerson(c *gin.Context) {
	var req PersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, []string{"Invalid request body."}, nil)
		return
	}

	// Trim up front so a 422 echoes the sanitized body
	req.Normalize()

	person, err := ctrl.service.CreatePerson(c.Request.Context(), req)
	if err != nil {
		response.FailFromError(c, err, req)
		return
	}

	response.OK(c, http.StatusCreated, person)
}

func (ctrl *controller) UpdatePerson(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, []string{"Invalid person ID."}, nil)
		return
	}

	var req PersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, []string{"Invalid request body."}, nil)
		return
	}

	req.Normalize()

	person, err := ctrl.service.UpdatePerson(c.Request.Context(), id, req)
	if err != nil {
		response.FailFromError(c, err, req)
		return
	}

	response.OK(c, http.StatusOK, person)
}

func (ctrl *controller) DeletePerson(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, []string{"Invalid person ID."}, nil)
		return
	}

	person, err := ctrl.service.DeletePerson(c.Request.Context(), id)
	if err != nil {
		response.FailFromError(c, err, nil)
		return
	}

	response.OK(c, http.StatusOK, person)
}
