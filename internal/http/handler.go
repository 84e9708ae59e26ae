package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"roadside-service/internal/http/middleware"
	"roadside-service/internal/model"
	"roadside-service/internal/service"
)

// Services groups everything the handlers call into.
type Services struct {
	Auth         *service.AuthService
	Requests     *service.RequestService
	Assignments  *service.AssignmentService
	Payments     *service.PaymentService
	Ratings      *service.RatingService
	Availability *service.AvailabilityService
	Tracking     *service.TrackingService
	ChangeFeed   *service.ChangeFeed
	Partnerships *service.PartnershipService
	Contact      *service.ContactService
	Content      *service.ContentService
	Dashboard    *service.DashboardService
}

type Handler struct {
	auth         *service.AuthService
	requests     *service.RequestService
	assignments  *service.AssignmentService
	payments     *service.PaymentService
	ratings      *service.RatingService
	availability *service.AvailabilityService
	tracking     *service.TrackingService
	changeFeed   *service.ChangeFeed
	partnerships *service.PartnershipService
	contact      *service.ContactService
	content      *service.ContentService
	dashboard    *service.DashboardService
	log          zerolog.Logger
}

func NewHandler(services Services, log zerolog.Logger) *Handler {
	return &Handler{
		auth:         services.Auth,
		requests:     services.Requests,
		assignments:  services.Assignments,
		payments:     services.Payments,
		ratings:      services.Ratings,
		availability: services.Availability,
		tracking:     services.Tracking,
		changeFeed:   services.ChangeFeed,
		partnerships: services.Partnerships,
		contact:      services.Contact,
		content:      services.Content,
		dashboard:    services.Dashboard,
		log:          log,
	}
}

func (h *Handler) Register(r *gin.Engine, authenticator *middleware.Authenticator) {
	required := authenticator.Required()

	// public
	r.POST("/auth/signup", h.signUp)
	r.POST("/auth/signin", h.signIn)
	r.POST("/requests", authenticator.Optional(), h.createRequest)
	r.GET("/requests/by-phone/:phone", h.listRequestsByPhone)
	r.GET("/track/:code", h.trackRequest)
	r.GET("/track/:code/live", h.trackLive)
	r.POST("/partnerships", h.submitPartnership)
	r.POST("/contact", h.submitContact)
	r.GET("/legal/:type", h.getLegalDocument)
	r.GET("/providers/:id/ratings", h.listProviderRatings)

	protected := r.Group("/")
	protected.Use(required)
	{
		protected.POST("/auth/signout", h.signOut)
		protected.GET("/auth/me", h.me)
		protected.GET("/requests", h.listRequests)
		protected.GET("/requests/:id", h.getRequest)
		protected.PUT("/requests/:id/cancel", h.cancelRequest)
		protected.POST("/requests/:id/rating", h.rateRequest)
		protected.GET("/requests/:id/ratings", h.listRequestRatings)
		protected.GET("/requests/:id/transaction", h.getRequestTransaction)
		protected.GET("/realtime", h.streamChanges)
	}

	provider := r.Group("/provider")
	provider.Use(required, middleware.RequireRole(model.RoleProvider))
	{
		provider.PUT("/requests/:id/status", h.advanceStatus)
		provider.PUT("/availability", h.setAvailability)
		provider.POST("/location", h.pushLocation)
	}

	admin := r.Group("/admin")
	admin.Use(required, middleware.RequireRole(model.RoleAdmin))
	{
		admin.PUT("/requests/:id/assign", h.assignProvider)
		admin.PUT("/requests/:id/status", h.overrideStatus)
		admin.DELETE("/requests/:id", h.deleteRequest)
		admin.POST("/requests/:id/payment", h.recordPayment)
		admin.PATCH("/transactions/:id", h.updateTransaction)

		admin.GET("/providers", h.listProviders)
		admin.GET("/providers/:id/location", h.lastProviderLocation)
		admin.POST("/users", h.createUser)
		admin.DELETE("/users/:id", h.deleteUser)

		admin.GET("/partnerships", h.listPartnerships)
		admin.PUT("/partnerships/:id/approve", h.approvePartnership)
		admin.PUT("/partnerships/:id/reject", h.rejectPartnership)

		admin.GET("/contact", h.listContactMessages)
		admin.PUT("/contact/:id/status", h.setContactStatus)

		admin.GET("/settings", h.listSettings)
		admin.PUT("/settings/:key", h.putSetting)
		admin.PUT("/legal/:type", h.putLegalDocument)

		admin.GET("/dashboard", h.dashboardStats)
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, errorResponse(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}

func principalOrAbort(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, errorResponse("missing principal"))
	}
	return principal, ok
}

// expectedVersion reads the request version the client last saw from
// If-Match. Both "3" and W/"3" are accepted.
func expectedVersion(c *gin.Context) (*int, error) {
	raw := strings.TrimSpace(c.GetHeader("If-Match"))
	if raw == "" {
		return nil, nil
	}
	raw = strings.Trim(strings.TrimPrefix(raw, "W/"), `"`)

	version, err := strconv.Atoi(raw)
	if err != nil || version < 1 {
		return nil, fmt.Errorf("%w: malformed If-Match header", service.ErrInvalidInput)
	}
	return &version, nil
}

func writeRequest(c *gin.Context, status int, req *model.ServiceRequest) {
	c.Header("ETag", fmt.Sprintf(`"%d"`, req.Version))
	c.JSON(status, successResponse(req))
}

func optionalQuery(c *gin.Context, key string) *string {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	return &raw
}
