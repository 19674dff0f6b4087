package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/liefhq/injury-api/internal/middleware"
	"github.com/liefhq/injury-api/internal/service/auth"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	a := r.Group("/auth")
	{
		a.GET("/me", h.Me)
		a.GET("/login", h.Login)
		a.GET("/logout", h.Logout)
	}
}

// Me reports the session state: the user descriptor when authenticated, JSON
// null otherwise. The UI keys its create/list vs. log-in affordances off this.
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.SessionUser(c))
}

// Login redirects to the provider-hosted login page.
func (h *Handler) Login(c *gin.Context) {
	c.Redirect(http.StatusFound, h.service.LoginURL())
}

// Logout redirects to the provider-hosted logout endpoint.
func (h *Handler) Logout(c *gin.Context) {
	c.Redirect(http.StatusFound, h.service.LogoutURL())
}
