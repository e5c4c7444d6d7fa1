package api

import (
	"github.com/AspectOfMagic/Parkwise-sub001/internal/api/handler"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/api/middleware"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/domain"
	"github.com/AspectOfMagic/Parkwise-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRouter khai báo toàn bộ surface của core. Mỗi route tự khai báo tập vai trò
// chấp nhận được qua RequireRoles; request không qua được gate sẽ không bao giờ
// chạm đến tầng dữ liệu.
func SetupRouter(cs *service.CatalogService, ts *service.TicketService, ps *service.PermitService,
	authMw *middleware.AuthMiddleware, wsManager *handler.WebSocketManager) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// WebSocket endpoint cho ops dashboard
	wsHandler := handler.NewWebSocketHandler(wsManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	v1 := r.Group("/api/v1")
	{
		typeH := handler.NewPermitTypeHandler(cs)
		typeRoutes := v1.Group("/permit-types")
		{
			typeRoutes.POST("", authMw.RequireRoles(domain.RoleAdmin), typeH.CreateOrRevive)
			typeRoutes.PUT("/:id/price", authMw.RequireRoles(domain.RoleAdmin), typeH.UpdatePrice)
			typeRoutes.DELETE("/:id", authMw.RequireRoles(domain.RoleAdmin), typeH.SoftDelete)
			typeRoutes.GET("/active", authMw.RequireRoles(domain.RoleDriver, domain.RoleAdmin), typeH.ListActive)
			typeRoutes.GET("/active/:id", authMw.RequireRoles(domain.RoleDriver, domain.RoleAdmin), typeH.GetActiveByID)
			typeRoutes.GET("", authMw.RequireRoles(domain.RoleAdmin), typeH.ListAll)
		}

		ticketH := handler.NewTicketHandler(ts)
		ticketRoutes := v1.Group("/tickets")
		{
			ticketRoutes.POST("", authMw.RequireRoles(domain.RoleEnforcer), ticketH.MakeTicket)
			ticketRoutes.POST("/:id/pay", authMw.RequireRoles(domain.RoleDriver), ticketH.PayTicket)
			ticketRoutes.POST("/:id/challenge", authMw.RequireRoles(domain.RoleDriver), ticketH.ChallengeTicket)
			ticketRoutes.POST("/:id/accept", authMw.RequireRoles(domain.RoleAdmin), ticketH.AcceptChallenge)
			ticketRoutes.POST("/:id/deny", authMw.RequireRoles(domain.RoleAdmin), ticketH.DenyChallenge)
			ticketRoutes.GET("/challenged", authMw.RequireRoles(domain.RoleAdmin), ticketH.GetChallenges)
			ticketRoutes.GET("/:id", authMw.RequireRoles(domain.RoleDriver), ticketH.GetTicketByID)
			ticketRoutes.GET("", authMw.RequireRoles(domain.RoleDriver), ticketH.GetTickets)
		}

		permitH := handler.NewPermitHandler(ps)
		vehicleRoutes := v1.Group("/vehicles")
		{
			vehicleRoutes.POST("", authMw.RequireRoles(domain.RoleDriver), permitH.RegisterVehicle)
			vehicleRoutes.GET("", authMw.RequireRoles(domain.RoleDriver), permitH.MyVehicles)
		}
		permitRoutes := v1.Group("/permits")
		{
			permitRoutes.POST("/checkout", authMw.RequireRoles(domain.RoleDriver), permitH.Checkout)
			permitRoutes.GET("", authMw.RequireRoles(domain.RoleDriver), permitH.MyPermits)
		}
	}
	return r
}
