package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roadside-service/internal/model"
	"roadside-service/internal/service"
)

func (h *Handler) submitPartnership(c *gin.Context) {
	var body struct {
		FullName     string   `json:"full_name" binding:"required"`
		Email        string   `json:"email" binding:"required"`
		PhoneNumber  string   `json:"phone_number" binding:"required"`
		BusinessName *string  `json:"business_name"`
		ServiceTypes []string `json:"service_types"`
		Location     string   `json:"location"`
		Message      *string  `json:"message"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	app, err := h.partnerships.Submit(c.Request.Context(), service.PartnershipInput{
		FullName:     body.FullName,
		Email:        body.Email,
		PhoneNumber:  body.PhoneNumber,
		BusinessName: body.BusinessName,
		ServiceTypes: body.ServiceTypes,
		Location:     body.Location,
		Message:      body.Message,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(app))
}

func (h *Handler) listPartnerships(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var status *model.ApplicationStatus
	if raw := optionalQuery(c, "status"); raw != nil {
		s := model.ApplicationStatus(*raw)
		status = &s
	}

	apps, err := h.partnerships.List(c.Request.Context(), principal, status)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(apps))
}

type reviewBody struct {
	Notes *string `json:"notes"`
}

func (h *Handler) approvePartnership(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var body reviewBody
	_ = c.ShouldBindJSON(&body)

	app, err := h.partnerships.Approve(c.Request.Context(), principal, c.Param("id"), body.Notes)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(app))
}

func (h *Handler) rejectPartnership(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var body reviewBody
	_ = c.ShouldBindJSON(&body)

	app, err := h.partnerships.Reject(c.Request.Context(), principal, c.Param("id"), body.Notes)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(app))
}

func (h *Handler) submitContact(c *gin.Context) {
	var body struct {
		Name    string  `json:"name" binding:"required"`
		Email   string  `json:"email" binding:"required"`
		Phone   *string `json:"phone"`
		Subject string  `json:"subject"`
		Message string  `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	msg, err := h.contact.Submit(c.Request.Context(), service.ContactInput{
		Name:    body.Name,
		Email:   body.Email,
		Phone:   body.Phone,
		Subject: body.Subject,
		Message: body.Message,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(msg))
}

func (h *Handler) listContactMessages(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var status *model.ContactStatus
	if raw := optionalQuery(c, "status"); raw != nil {
		s := model.ContactStatus(*raw)
		status = &s
	}

	messages, err := h.contact.List(c.Request.Context(), principal, status)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(messages))
}

func (h *Handler) setContactStatus(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	if err := h.contact.SetStatus(c.Request.Context(), principal, c.Param("id"), model.ContactStatus(body.Status)); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) listSettings(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	settings, err := h.content.ListSettings(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(settings))
}

func (h *Handler) putSetting(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var body struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	setting, err := h.content.PutSetting(c.Request.Context(), principal, c.Param("key"), body.Value)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(setting))
}

func (h *Handler) getLegalDocument(c *gin.Context) {
	doc, err := h.content.GetLegalDocument(c.Request.Context(), c.Param("type"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(doc))
}

func (h *Handler) putLegalDocument(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var body struct {
		Title   string `json:"title" binding:"required"`
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	doc, err := h.content.PutLegalDocument(c.Request.Context(), principal, c.Param("type"), body.Title, body.Content)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(doc))
}

func (h *Handler) dashboardStats(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	stats, err := h.dashboard.Stats(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(stats))
}
