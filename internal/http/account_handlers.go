package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roadside-service/internal/http/middleware"
	"roadside-service/internal/service"
)

type signUpBody struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password"`
	FullName string `json:"full_name" binding:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

func (b signUpBody) input() service.SignUpInput {
	return service.SignUpInput{
		Email:    b.Email,
		Password: b.Password,
		FullName: b.FullName,
		Phone:    b.Phone,
		Role:     b.Role,
	}
}

func (h *Handler) signUp(c *gin.Context) {
	var body signUpBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	session, err := h.auth.SignUp(c.Request.Context(), body.input())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(session))
}

func (h *Handler) signIn(c *gin.Context) {
	var body struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	session, err := h.auth.SignIn(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(session))
}

func (h *Handler) signOut(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	expiresAt, _ := middleware.TokenExpiry(c)

	h.auth.SignOut(principal, expiresAt)
	c.Status(http.StatusNoContent)
}

func (h *Handler) me(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	account, err := h.auth.Me(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(account))
}

func (h *Handler) createUser(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var body signUpBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	account, password, err := h.auth.CreateAccount(c.Request.Context(), principal, body.input())
	if err != nil {
		h.handleError(c, err)
		return
	}

	response := gin.H{"account": account}
	if password != "" {
		response["generated_password"] = password
	}
	c.JSON(http.StatusCreated, successResponse(response))
}

func (h *Handler) deleteUser(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	if err := h.auth.DeleteAccount(c.Request.Context(), principal, c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) setAvailability(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var body struct {
		Available *bool    `json:"available" binding:"required"`
		Lat       *float64 `json:"lat"`
		Lng       *float64 `json:"lng"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	ctx := c.Request.Context()
	if !*body.Available {
		profile, err := h.availability.GoOffline(ctx, principal)
		if err != nil {
			h.handleError(c, err)
			return
		}
		c.JSON(http.StatusOK, successResponse(profile))
		return
	}

	if body.Lat == nil || body.Lng == nil {
		c.JSON(http.StatusBadRequest, errorResponse("lat and lng are required to go online"))
		return
	}
	profile, err := h.availability.GoOnline(ctx, principal, *body.Lat, *body.Lng)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(profile))
}

func (h *Handler) pushLocation(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var body struct {
		Lat *float64 `json:"lat" binding:"required"`
		Lng *float64 `json:"lng" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.availability.PushLocation(c.Request.Context(), principal, *body.Lat, *body.Lng); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}

func (h *Handler) listProviders(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	providers, err := h.availability.ListProviders(c.Request.Context(), principal, c.Query("available") == "true")
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(providers))
}

func (h *Handler) lastProviderLocation(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	ping, err := h.availability.LastLocation(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(ping))
}
