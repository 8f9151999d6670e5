package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/earnly/backend/internal/config"
	"github.com/earnly/backend/internal/core/collector"
	"github.com/earnly/backend/internal/core/services"
	"github.com/earnly/backend/internal/infrastructure/db"
	"github.com/earnly/backend/internal/infrastructure/logger"
	"github.com/earnly/backend/internal/transport/http/handlers"
	httpmw "github.com/earnly/backend/internal/transport/http/middleware"
	"gorm.io/gorm"
)

type RouterConfig struct {
	DB     *gorm.DB
	Logger *logger.Logger
	Config *config.Config
}

// Runtime holds the long-lived components the server must stop on
// shutdown.
type Runtime struct {
	Hub        *services.LiveHub
	Collectors *collector.Manager
}

func SetupRoutes(app *fiber.App, cfg RouterConfig) *Runtime {
	// Initialize repositories
	userRepo := db.NewUserRepository(cfg.DB, cfg.Logger)
	taskRepo := db.NewTaskRepository(cfg.DB, cfg.Logger)
	attemptRepo := db.NewAttemptRepository(cfg.DB, cfg.Logger)
	rewardRepo := db.NewRewardRepository(cfg.DB, cfg.Logger)
	timelineRepo := db.NewTimelineRepository(cfg.DB, cfg.Logger)
	settingRepo := db.NewSystemSettingRepository(cfg.DB, cfg.Logger)

	settingService := services.NewSystemSettingService(settingRepo, cfg.Logger, cfg.Config.Features.EnableLocks)

	hub := services.NewLiveHub(cfg.Logger)

	collectors := collector.NewManager(collector.ManagerConfig{
		LoadTimeout:         cfg.Config.Engagement.ContentLoadTimeout,
		InteractionThrottle: cfg.Config.Engagement.InteractionThrottle,
	})

	// Initialize services
	eligibilityService := services.NewEligibilityService(services.EligibilityServiceConfig{
		AttemptRepo: attemptRepo,
		Settings:    settingService,
		Logger:      cfg.Logger,
		Config:      cfg.Config.Engagement,
	})

	arbiterService := services.NewArbiterService(services.ArbiterServiceConfig{
		TaskRepo:     taskRepo,
		AttemptRepo:  attemptRepo,
		Eligibility:  eligibilityService,
		TimelineRepo: timelineRepo,
		Logger:       cfg.Logger,
	})

	taskService := services.NewTaskService(services.TaskServiceConfig{
		TaskRepo:     taskRepo,
		AttemptRepo:  attemptRepo,
		TimelineRepo: timelineRepo,
		Eligibility:  eligibilityService,
		Arbiter:      arbiterService,
		Collectors:   collectors,
		Hub:          hub,
		Logger:       cfg.Logger,
		Config:       cfg.Config.Engagement,
	})

	adminService := services.NewAdminTaskService(taskRepo, timelineRepo, hub, cfg.Logger)

	// Initialize handlers
	taskHandler := handlers.NewTaskHandler(taskService, eligibilityService, cfg.Logger)
	attemptHandler := handlers.NewAttemptHandler(taskService, cfg.Logger)
	rewardHandler := handlers.NewRewardHandler(rewardRepo, cfg.Logger)
	adminHandler := handlers.NewAdminHandler(adminService, cfg.Logger)
	settingHandler := handlers.NewSettingHandler(settingService, cfg.Logger)
	userHandler := handlers.NewUserHandler(userRepo, cfg.Logger)
	timelineHandler := handlers.NewTimelineHandler(timelineRepo)
	eventsHandler := handlers.NewEventsHandler(hub, cfg.Config.Engagement.HeartbeatInterval, cfg.Logger)

	userAuth := httpmw.UserAuth(userRepo, cfg.Logger)

	// Live events stream. The user is resolved before the upgrade so the
	// websocket handler can read it from locals.
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws/events", userAuth, websocket.New(eventsHandler.Handle))

	// API v1 routes
	api := app.Group("/api/v1")

	// Task routes
	tasks := api.Group("/tasks", userAuth)
	tasks.Get("/", taskHandler.ListTasks)
	tasks.Post("/:id/start", taskHandler.StartTask)

	// Attempt routes
	attempts := api.Group("/attempts", userAuth)
	attempts.Post("/:id/signal", attemptHandler.ReportSignal)
	attempts.Post("/:id/submit", attemptHandler.SubmitAttempt)

	// Eligibility, reward and account routes
	api.Get("/eligibility", userAuth, taskHandler.GetEligibility)
	api.Get("/rewards", userAuth, rewardHandler.GetRewards)
	api.Get("/me", userAuth, userHandler.GetMe)

	// Admin task routes
	admin := api.Group("/admin", httpmw.AdminAuth(cfg.Config))
	admin.Post("/tasks", adminHandler.PublishTask)
	admin.Put("/tasks/:id", adminHandler.UpdateTask)
	admin.Delete("/tasks/:id", adminHandler.DeactivateTask)
	admin.Post("/users", userHandler.CreateUser)

	// Settings routes
	settings := admin.Group("/settings")
	settings.Get("/", settingHandler.GetByCategory)
	settings.Post("/", settingHandler.UpdateSetting)
	settings.Delete("/:key", settingHandler.DeleteSetting)

	// Timeline routes
	admin.Get("/timeline", timelineHandler.GetEvents)

	return &Runtime{Hub: hub, Collectors: collectors}
}
