package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"roadside-service/internal/http/middleware"
	"roadside-service/internal/model"
	"roadside-service/internal/repository"
	"roadside-service/internal/service"
)

func (h *Handler) createRequest(c *gin.Context) {
	var req struct {
		ServiceType     string   `json:"service_type" binding:"required"`
		Description     string   `json:"description"`
		Location        string   `json:"location" binding:"required"`
		VehicleMake     *string  `json:"vehicle_make"`
		VehicleModel    *string  `json:"vehicle_model"`
		VehicleYear     *int     `json:"vehicle_year"`
		VehiclePlate    *string  `json:"vehicle_plate"`
		VehicleImageURL *string  `json:"vehicle_image_url"`
		FuelType        *string  `json:"fuel_type"`
		FuelAmount      *float64 `json:"fuel_amount"`
		CustomerLat     *float64 `json:"customer_lat"`
		CustomerLng     *float64 `json:"customer_lng"`
		PhoneNumber     *string  `json:"phone_number"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	var principal *model.Principal
	if p, ok := middleware.MustPrincipal(c); ok {
		principal = &p
	}

	created, err := h.requests.Create(c.Request.Context(), principal, service.CreateRequestInput{
		ServiceType:     req.ServiceType,
		Description:     req.Description,
		Location:        req.Location,
		VehicleMake:     req.VehicleMake,
		VehicleModel:    req.VehicleModel,
		VehicleYear:     req.VehicleYear,
		VehiclePlate:    req.VehiclePlate,
		VehicleImageURL: req.VehicleImageURL,
		FuelType:        req.FuelType,
		FuelAmount:      req.FuelAmount,
		CustomerLat:     req.CustomerLat,
		CustomerLng:     req.CustomerLng,
		PhoneNumber:     req.PhoneNumber,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	writeRequest(c, http.StatusCreated, created)
}

func (h *Handler) trackRequest(c *gin.Context) {
	req, err := h.requests.GetByTrackingCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	writeRequest(c, http.StatusOK, req)
}

func (h *Handler) listRequestsByPhone(c *gin.Context) {
	requests, err := h.requests.ListByPhone(c.Request.Context(), c.Param("phone"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(requests))
}

func (h *Handler) listRequests(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var filter repository.ServiceRequestFilter
	if raw := optionalQuery(c, "status"); raw != nil {
		status := model.RequestStatus(*raw)
		filter.Status = &status
	}
	if raw := optionalQuery(c, "service_type"); raw != nil {
		serviceType := model.ServiceType(*raw)
		filter.ServiceType = &serviceType
	}
	if raw := optionalQuery(c, "provider_id"); raw != nil {
		id, err := uuid.Parse(*raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("invalid provider_id"))
			return
		}
		filter.ProviderID = &id
	}
	if raw := optionalQuery(c, "limit"); raw != nil {
		limit, err := strconv.Atoi(*raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, errorResponse("invalid limit"))
			return
		}
		filter.Limit = limit
	}

	requests, err := h.requests.List(c.Request.Context(), principal, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(requests))
}

func (h *Handler) getRequest(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	req, err := h.requests.Get(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	writeRequest(c, http.StatusOK, req)
}

func (h *Handler) cancelRequest(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}
	version, err := expectedVersion(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	req, err := h.requests.Cancel(c.Request.Context(), principal, c.Param("id"), version)
	if err != nil {
		h.handleError(c, err)
		return
	}

	writeRequest(c, http.StatusOK, req)
}

func (h *Handler) advanceStatus(c *gin.Context) {
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
	version, err := expectedVersion(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	req, err := h.requests.AdvanceStatus(c.Request.Context(), principal, c.Param("id"), model.RequestStatus(body.Status), version)
	if err != nil {
		h.handleError(c, err)
		return
	}

	writeRequest(c, http.StatusOK, req)
}

func (h *Handler) overrideStatus(c *gin.Context) {
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
	version, err := expectedVersion(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	req, err := h.requests.OverrideStatus(c.Request.Context(), principal, c.Param("id"), model.RequestStatus(body.Status), version)
	if err != nil {
		h.handleError(c, err)
		return
	}

	writeRequest(c, http.StatusOK, req)
}

func (h *Handler) assignProvider(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var body struct {
		ProviderID string `json:"provider_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	version, err := expectedVersion(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	req, err := h.assignments.Assign(c.Request.Context(), principal, service.AssignProviderInput{
		RequestID:       c.Param("id"),
		ProviderID:      body.ProviderID,
		ExpectedVersion: version,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	writeRequest(c, http.StatusOK, req)
}

func (h *Handler) deleteRequest(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	if err := h.requests.Delete(c.Request.Context(), principal, c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) recordPayment(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var body struct {
		Amount             float64  `json:"amount" binding:"required"`
		ProviderPercentage *float64 `json:"provider_percentage"`
		PaymentMethod      string   `json:"payment_method"`
		TransactionType    string   `json:"transaction_type"`
		ReferenceNumber    *string  `json:"reference_number"`
		Notes              *string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	txn, err := h.payments.RecordPayment(c.Request.Context(), principal, c.Param("id"), service.RecordPaymentInput{
		Amount:             body.Amount,
		ProviderPercentage: body.ProviderPercentage,
		PaymentMethod:      body.PaymentMethod,
		TransactionType:    body.TransactionType,
		ReferenceNumber:    body.ReferenceNumber,
		Notes:              body.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(txn))
}

func (h *Handler) updateTransaction(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var body struct {
		Amount             *float64 `json:"amount"`
		ProviderPercentage *float64 `json:"provider_percentage"`
		PaymentMethod      *string  `json:"payment_method"`
		ReferenceNumber    *string  `json:"reference_number"`
		Notes              *string  `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	txn, err := h.payments.UpdateTransaction(c.Request.Context(), principal, c.Param("id"), service.UpdateTransactionInput{
		Amount:             body.Amount,
		ProviderPercentage: body.ProviderPercentage,
		PaymentMethod:      body.PaymentMethod,
		ReferenceNumber:    body.ReferenceNumber,
		Notes:              body.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(txn))
}

func (h *Handler) getRequestTransaction(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	txn, err := h.payments.GetForRequest(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(txn))
}

func (h *Handler) rateRequest(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	var body struct {
		Rating int     `json:"rating" binding:"required"`
		Review *string `json:"review"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	rating, err := h.ratings.Submit(c.Request.Context(), principal, c.Param("id"), body.Rating, body.Review)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(rating))
}

func (h *Handler) listRequestRatings(c *gin.Context) {
	principal, ok := principalOrAbort(c)
	if !ok {
		return
	}

	ratings, err := h.ratings.ListForRequest(c.Request.Context(), principal, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(ratings))
}

func (h *Handler) listProviderRatings(c *gin.Context) {
	ratings, err := h.ratings.ListForProvider(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(ratings))
}
