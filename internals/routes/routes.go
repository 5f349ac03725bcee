package routes

import (
	"github.com/fannykaunang/kominfo-web-next-sub001/internals/config"
	"github.com/fannykaunang/kominfo-web-next-sub001/internals/controllers"
	"github.com/fannykaunang/kominfo-web-next-sub001/internals/middleware"
	"github.com/fannykaunang/kominfo-web-next-sub001/internals/security"
	"github.com/fannykaunang/kominfo-web-next-sub001/internals/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter wires the real delivery channel. Tests use SetupRouterWith to
// swap in a capture mailer.
func SetupRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	emailManager := utils.NewEmailManager(&utils.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		AppName:  cfg.AppName,
		CodeExp:  int(cfg.OTPCodeTTL.Minutes()),
	})
	return SetupRouterWith(db, cfg, emailManager)
}

// SetupRouterWith builds every component from the shared Config and mounts
// the routes.
func SetupRouterWith(db *gorm.DB, cfg *config.Config, mailer security.Mailer) *gin.Engine {
	r := gin.Default()

	attempts := security.NewAttemptLogger(db)
	limiter := security.NewRateLimiter(db, cfg.RateLimitMax, cfg.RateLimitWindow)
	lockout := security.NewLockoutGuard(attempts, cfg.LockoutMaxFailures, cfg.LockoutWindow)
	verifier := security.NewCredentialVerifier(db)
	otpManager := security.NewOTPManager(db, mailer, cfg.OTPCodeTTL, cfg.OTPMaxAttempts, cfg.OTPResendCooldown)
	registry := security.NewSessionRegistry(db, cfg.SessionTTL, cfg.SessionIdleTimeout)
	tokenManager := utils.NewTokenManager(registry, &cfg.Cookie, cfg.JWTSecret)

	authMiddleware := middleware.NewRequireAuthMiddleware(db, registry, tokenManager)
	authCtrl := controllers.NewAuthController(db, attempts, limiter, lockout, verifier, otpManager, tokenManager, cfg.EncryptionKey)
	sessionCtrl := controllers.NewSessionController(registry, tokenManager)
	mfaCtrl := controllers.NewMFAController(db, cfg.AppName, cfg.EncryptionKey)
	adminCtrl := controllers.NewSessionAdminController(db, registry, attempts)

	public := r.Group("/")
	{
		public.GET("/", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "active",
				"message": cfg.AppName + " auth API is running",
			})
		})
		public.POST("/login-request", authCtrl.LoginRequest)
		public.POST("/verify-otp", authCtrl.VerifyOTP)
		public.POST("/resend-otp", authCtrl.ResendOTP)
	}

	protected := r.Group("/")
	protected.Use(authMiddleware.RequireAuth)
	{
		protected.GET("/validate", sessionCtrl.Validate)
		protected.POST("/logout", sessionCtrl.Logout)

		protected.POST("/2fa/setup", mfaCtrl.Setup2FA)
		protected.POST("/2fa/activate", mfaCtrl.Activate2FA)
	}

	admin := r.Group("/sessions")
	admin.Use(authMiddleware.RequireAuth, authMiddleware.RequireRole("admin"))
	{
		admin.GET("", adminCtrl.List)
		admin.DELETE("/:id", adminCtrl.Kick)
		admin.POST("/:id", adminCtrl.Action)
	}

	return r
}
