package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"memoir/internal/shared/apperrors"
	"memoir/internal/shared/utils/response"
	"memoir/internal/shared/validation"
)

type Controller interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, []string{"Invalid request body."}, nil)
		return
	}

	if violations := validation.Struct(&req); len(violations) > 0 {
		response.FailFromError(c, &apperrors.ValidationError{Violations: violations}, nil)
		return
	}

	result, err := ctrl.service.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrRegistrationClosed) {
			response.Fail(c, http.StatusForbidden, []string{"Registration is closed."}, nil)
			return
		}
		response.Fail(c, http.StatusInternalServerError, []string{err.Error()}, nil)
		return
	}

	response.OK(c, http.StatusCreated, result)
}

func (ctrl *controller) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, []string{"Invalid request body."}, nil)
		return
	}

	if violations := validation.Struct(&req); len(violations) > 0 {
		response.FailFromError(c, &apperrors.ValidationError{Violations: violations}, nil)
		return
	}

	result, err := ctrl.service.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, []string{"Invalid email or password."}, nil)
			return
		}
		response.Fail(c, http.StatusInternalServerError, []string{err.Error()}, nil)
		return
	}

	response.OK(c, http.StatusOK, result)
}
