package server

import (
	"kevdhev/personal-finance-api/internal/api/controller"
	"kevdhev/personal-finance-api/internal/api/middleware"
	"kevdhev/personal-finance-api/internal/api/service"
	"kevdhev/personal-finance-api/internal/auth"
	"kevdhev/personal-finance-api/internal/validator"

	"github.com/gin-gonic/gin"
)

// Server owns the gin engine and its route table.
type Server struct {
	engine *gin.Engine
}

// NewServer builds the engine: public auth routes plus the bearer-guarded
// movements group.
func NewServer(
	tokens *auth.TokenIssuer,
	userService service.UserService,
	users *controller.UserController,
	movements *controller.MovementController,
) *Server {
	validator.Register()

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	engine.POST("/register", users.Register)
	engine.POST("/login", users.Login)

	guarded := engine.Group("/movements", middleware.RequireAuth(tokens, userService))
	guarded.POST("", movements.Create)
	guarded.GET("", movements.List)
	guarded.GET("/summary", movements.Summary)
	guarded.GET("/:id", movements.Get)
	guarded.PUT("/:id", movements.Update)
	guarded.DELETE("/:id", movements.Delete)

	return &Server{engine: engine}
}

// Engine exposes the underlying gin engine as the http.Handler to serve.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
