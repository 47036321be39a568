package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auditapp "github.com/crm/backend/internal/application/audit"
	catalogapp "github.com/crm/backend/internal/application/catalog"
	contentapp "github.com/crm/backend/internal/application/content"
	crmapp "github.com/crm/backend/internal/application/crm"
	identityapp "github.com/crm/backend/internal/application/identity"
	layoutapp "github.com/crm/backend/internal/application/layout"
	"github.com/crm/backend/internal/domain/content"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/event"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/migration"
	"github.com/crm/backend/internal/infrastructure/persistence"
	"github.com/crm/backend/internal/infrastructure/storage"
	"github.com/crm/backend/internal/infrastructure/telemetry"
	"github.com/crm/backend/internal/interfaces/http/handler"
	"github.com/crm/backend/internal/interfaces/http/middleware"
	"github.com/crm/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting CRM Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize tracing (if enabled)
	var tracerProvider *telemetry.TracerProvider
	if cfg.Telemetry.Enabled {
		tracerProvider, err = telemetry.NewTracerProvider(context.Background(), telemetry.Config{
			Enabled:           cfg.Telemetry.Enabled,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			SamplingRatio:     cfg.Telemetry.SamplingRatio,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize tracer provider", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(ctx); err != nil {
				log.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()

		if cfg.Telemetry.DBTraceEnabled {
			dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
				Enabled:         true,
				LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
				SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
			}, log)
			if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
				log.Warn("Failed to register database tracing", zap.Error(err))
			}
		}
		log.Info("Telemetry enabled",
			zap.String("collector", cfg.Telemetry.CollectorEndpoint),
			zap.Float64("sampling_ratio", cfg.Telemetry.SamplingRatio),
		)
	}

	// Initialize repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	teamRepo := persistence.NewGormTeamRepository(db.DB)
	departmentRepo := persistence.NewGormDepartmentRepository(db.DB)
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)
	leadRepo := persistence.NewGormLeadRepository(db.DB)
	opportunityRepo := persistence.NewGormOpportunityRepository(db.DB)
	pipelineRepo := persistence.NewGormPipelineRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	noteRepo := persistence.NewGormNoteRepository(db.DB)
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	customFieldRepo := persistence.NewGormCustomFieldRepository(db.DB)
	customTabRepo := persistence.NewGormCustomTabRepository(db.DB)
	fieldGroupRepo := persistence.NewGormCustomFieldGroupRepository(db.DB)
	pageLayoutRepo := persistence.NewGormPageLayoutRepository(db.DB)
	auditLogRepo := persistence.NewGormAuditLogRepository(db.DB)

	// Initialize event bus and audit trail
	eventBus := event.NewInMemoryEventBus(log)

	auditRecorder := auditapp.NewRecorder(auditLogRepo, log)
	eventBus.Subscribe(auditRecorder)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Object storage for documents and avatars
	var objectStorage contentapp.ObjectStorageService
	if cfg.Storage.Provider == "s3" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(context.Background()); err != nil {
			log.Warn("Failed to ensure storage bucket", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("S3 object storage initialized", zap.String("bucket", cfg.Storage.Bucket))
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("Using in-memory object storage; uploaded files will not survive restarts")
	}

	// Token blacklist backs logout; Redis when configured, in-memory otherwise
	var tokenBlacklist auth.TokenBlacklist
	if cfg.Redis.Host != "" {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal("Failed to connect to Redis for token blacklist", zap.Error(err))
		}
		tokenBlacklist = redisBlacklist
		log.Info("Redis token blacklist initialized", zap.String("host", cfg.Redis.Host))
	} else {
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
		log.Warn("Using in-memory token blacklist; revoked tokens reset on restart")
	}

	// Tenant schema provisioner for self-serve provisioning
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get underlying sql.DB", zap.Error(err))
	}
	provisioner := migration.NewSchemaProvisioner(sqlDB, defaultMigrationsPath, log)

	// Identity services
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(
		tenantRepo, userRepo, roleRepo, auditLogRepo,
		jwtService, tokenBlacklist,
		identityapp.DefaultAuthServiceConfig(), log,
	)
	userService := identityapp.NewUserService(userRepo, roleRepo, departmentRepo, teamRepo, eventBus, log)
	roleService := identityapp.NewRoleService(roleRepo, eventBus, log)
	teamService := identityapp.NewTeamService(teamRepo, userRepo, eventBus, log)
	departmentService := identityapp.NewDepartmentService(departmentRepo, userRepo, eventBus, log)
	tenantService := identityapp.NewTenantService(tenantRepo, provisioner, eventBus, log)

	// CRM services
	accountService := crmapp.NewAccountService(accountRepo, contactRepo, opportunityRepo, customFieldRepo, eventBus, log)
	contactService := crmapp.NewContactService(contactRepo, accountRepo, customFieldRepo, eventBus, log)
	leadService := crmapp.NewLeadService(leadRepo, accountRepo, contactRepo, opportunityRepo, pipelineRepo, customFieldRepo, eventBus, log)
	opportunityService := crmapp.NewOpportunityService(opportunityRepo, accountRepo, contactRepo, pipelineRepo, customFieldRepo, eventBus, log)
	pipelineService := crmapp.NewPipelineService(pipelineRepo, leadRepo, opportunityRepo, eventBus, log)

	// Catalog, content and layout services
	productService := catalogapp.NewProductService(productRepo, eventBus, log)
	noteService := contentapp.NewNoteService(noteRepo, log)
	documentService := contentapp.NewDocumentService(documentRepo, objectStorage, log)

	// Avatar uploads push the generated URL onto the owning record
	documentService.RegisterAvatarTarget(content.EntityTypeUser, contentapp.AvatarTargetFunc(
		func(ctx context.Context, tenantID, entityID uuid.UUID, url string) error {
			_, err := userService.SetAvatar(ctx, tenantID, entityID, url)
			return err
		}))
	documentService.RegisterAvatarTarget(content.EntityTypeContact, contentapp.AvatarTargetFunc(
		func(ctx context.Context, tenantID, entityID uuid.UUID, url string) error {
			_, err := contactService.SetAvatar(ctx, tenantID, entityID, url)
			return err
		}))
	documentService.RegisterAvatarTarget(content.EntityTypeAccount, contentapp.AvatarTargetFunc(
		func(ctx context.Context, tenantID, entityID uuid.UUID, url string) error {
			_, err := accountService.SetLogo(ctx, tenantID, entityID, url)
			return err
		}))
	customFieldService := layoutapp.NewCustomFieldService(customFieldRepo, log)
	containerService := layoutapp.NewContainerService(customTabRepo, fieldGroupRepo, customFieldRepo, log)
	pageLayoutService := layoutapp.NewPageLayoutService(pageLayoutRepo, log)
	renderService := layoutapp.NewRenderService(customFieldRepo, customTabRepo, fieldGroupRepo, pageLayoutRepo, log)

	// Audit query service
	auditQueryService := auditapp.NewQueryService(auditLogRepo, log)

	// Initialize HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	teamHandler := handler.NewTeamHandler(teamService)
	departmentHandler := handler.NewDepartmentHandler(departmentService)
	tenantHandler := handler.NewTenantHandler(tenantService)
	accountHandler := handler.NewAccountHandler(accountService)
	contactHandler := handler.NewContactHandler(contactService)
	leadHandler := handler.NewLeadHandler(leadService)
	opportunityHandler := handler.NewOpportunityHandler(opportunityService)
	pipelineHandler := handler.NewPipelineHandler(pipelineService)
	productHandler := handler.NewProductHandler(productService)
	noteHandler := handler.NewNoteHandler(noteService)
	documentHandler := handler.NewDocumentHandler(documentService)
	customFieldHandler := handler.NewCustomFieldHandler(customFieldService)
	containerHandler := handler.NewContainerHandler(containerService)
	pageLayoutHandler := handler.NewPageLayoutHandler(pageLayoutService, renderService)
	auditHandler := handler.NewAuditHandler(auditQueryService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - OpenTelemetry spans (if enabled)
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
	}
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	// Configure skip paths for public endpoints
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Load role data scopes after authentication so list queries can apply
	// ALL/TEAM/OWN visibility filters
	r.Use(middleware.DataScopeMiddleware(roleRepo, userRepo))

	// Auth routes - login/refresh are public, the rest require a token
	authRoutes := router.NewDomainGroup("auth", "/auth")
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authRoutes.Use(middleware.RateLimit(authLimiter))
		log.Info("Auth rate limiting enabled",
			zap.Int("requests", cfg.HTTP.AuthRateLimitRequests),
			zap.Duration("window", cfg.HTTP.AuthRateLimitWindow),
		)
	}
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.GetCurrentUser)
	authRoutes.PUT("/password", authHandler.ChangePassword)

	// Identity domain (users, roles, teams, departments, tenants)
	identityRoutes := router.NewDomainGroup("identity", "/identity")

	// User management routes
	identityRoutes.POST("/users", userHandler.Create)
	identityRoutes.GET("/users", userHandler.List)
	identityRoutes.GET("/users/:id", userHandler.GetByID)
	identityRoutes.PUT("/users/:id", userHandler.Update)
	identityRoutes.DELETE("/users/:id", userHandler.Delete)
	identityRoutes.POST("/users/:id/activate", userHandler.Activate)
	identityRoutes.POST("/users/:id/deactivate", userHandler.Deactivate)
	identityRoutes.POST("/users/:id/unlock", userHandler.Unlock)
	identityRoutes.POST("/users/:id/reset-password", userHandler.ResetPassword)
	identityRoutes.PUT("/users/:id/roles", userHandler.AssignRoles)

	// Role management routes
	identityRoutes.POST("/roles", roleHandler.Create)
	identityRoutes.GET("/roles", roleHandler.List)
	identityRoutes.GET("/roles/:id", roleHandler.GetByID)
	identityRoutes.PUT("/roles/:id", roleHandler.Update)
	identityRoutes.DELETE("/roles/:id", roleHandler.Delete)
	identityRoutes.POST("/roles/:id/enable", roleHandler.Enable)
	identityRoutes.POST("/roles/:id/disable", roleHandler.Disable)
	identityRoutes.PUT("/roles/:id/permissions", roleHandler.SetPermissions)
	identityRoutes.PUT("/roles/:id/data-scopes", roleHandler.SetDataScope)
	identityRoutes.DELETE("/roles/:id/data-scopes/:resource", roleHandler.RemoveDataScope)

	// Team management routes
	identityRoutes.POST("/teams", teamHandler.Create)
	identityRoutes.GET("/teams", teamHandler.List)
	identityRoutes.GET("/teams/:id", teamHandler.GetByID)
	identityRoutes.PUT("/teams/:id", teamHandler.Update)
	identityRoutes.DELETE("/teams/:id", teamHandler.Delete)
	identityRoutes.PUT("/teams/:id/lead", teamHandler.SetLead)
	identityRoutes.POST("/teams/:id/members", teamHandler.AddMember)
	identityRoutes.DELETE("/teams/:id/members", teamHandler.RemoveMember)
	identityRoutes.POST("/teams/:id/activate", teamHandler.Activate)
	identityRoutes.POST("/teams/:id/deactivate", teamHandler.Deactivate)

	// Department management routes
	identityRoutes.POST("/departments", departmentHandler.Create)
	identityRoutes.GET("/departments", departmentHandler.List)
	identityRoutes.GET("/departments/tree", departmentHandler.GetTree)
	identityRoutes.GET("/departments/:id", departmentHandler.GetByID)
	identityRoutes.PUT("/departments/:id", departmentHandler.Update)
	identityRoutes.DELETE("/departments/:id", departmentHandler.Delete)
	identityRoutes.POST("/departments/:id/move", departmentHandler.Move)
	identityRoutes.PUT("/departments/:id/manager", departmentHandler.SetManager)
	identityRoutes.POST("/departments/:id/activate", departmentHandler.Activate)
	identityRoutes.POST("/departments/:id/deactivate", departmentHandler.Deactivate)

	// Tenant management routes (platform-level administration)
	identityRoutes.POST("/tenants", tenantHandler.Create)
	identityRoutes.GET("/tenants", tenantHandler.List)
	identityRoutes.GET("/tenants/:id", tenantHandler.GetByID)
	identityRoutes.GET("/tenants/code/:code", tenantHandler.GetByCode)
	identityRoutes.PUT("/tenants/:id", tenantHandler.Update)
	identityRoutes.PUT("/tenants/:id/plan", tenantHandler.SetPlan)
	identityRoutes.POST("/tenants/:id/provision", tenantHandler.Provision)
	identityRoutes.POST("/tenants/:id/activate", tenantHandler.Activate)
	identityRoutes.POST("/tenants/:id/deactivate", tenantHandler.Deactivate)
	identityRoutes.POST("/tenants/:id/suspend", tenantHandler.Suspend)

	// CRM domain (accounts, contacts, leads, opportunities, pipelines)
	crmRoutes := router.NewDomainGroup("crm", "/crm")

	// Account routes
	crmRoutes.POST("/accounts", accountHandler.Create)
	crmRoutes.GET("/accounts", accountHandler.List)
	crmRoutes.GET("/accounts/:id", accountHandler.GetByID)
	crmRoutes.PUT("/accounts/:id", accountHandler.Update)
	crmRoutes.DELETE("/accounts/:id", accountHandler.Delete)
	crmRoutes.PUT("/accounts/:id/parent", accountHandler.SetParent)
	crmRoutes.PUT("/accounts/:id/owner", accountHandler.AssignOwner)
	crmRoutes.POST("/accounts/:id/activate", accountHandler.Activate)
	crmRoutes.POST("/accounts/:id/deactivate", accountHandler.Deactivate)
	crmRoutes.GET("/accounts/:id/contacts", contactHandler.ListByAccount)
	crmRoutes.GET("/accounts/:id/opportunities", opportunityHandler.ListByAccount)

	// Contact routes
	crmRoutes.POST("/contacts", contactHandler.Create)
	crmRoutes.GET("/contacts", contactHandler.List)
	crmRoutes.GET("/contacts/:id", contactHandler.GetByID)
	crmRoutes.PUT("/contacts/:id", contactHandler.Update)
	crmRoutes.DELETE("/contacts/:id", contactHandler.Delete)
	crmRoutes.PUT("/contacts/:id/owner", contactHandler.AssignOwner)
	crmRoutes.POST("/contacts/:id/methods", contactHandler.AddMethod)
	crmRoutes.DELETE("/contacts/:id/methods/:methodId", contactHandler.RemoveMethod)
	crmRoutes.PUT("/contacts/:id/methods/:methodId/primary", contactHandler.SetPrimaryMethod)
	crmRoutes.POST("/contacts/:id/accounts", contactHandler.LinkAccount)
	crmRoutes.DELETE("/contacts/:id/accounts/:accountId", contactHandler.UnlinkAccount)
	crmRoutes.PUT("/contacts/:id/accounts/:accountId/primary", contactHandler.SetPrimaryAccount)

	// Lead routes
	crmRoutes.POST("/leads", leadHandler.Create)
	crmRoutes.GET("/leads", leadHandler.List)
	crmRoutes.GET("/leads/:id", leadHandler.GetByID)
	crmRoutes.PUT("/leads/:id", leadHandler.Update)
	crmRoutes.DELETE("/leads/:id", leadHandler.Delete)
	crmRoutes.PUT("/leads/:id/owner", leadHandler.AssignOwner)
	crmRoutes.PUT("/leads/:id/stage", leadHandler.ChangeStage)
	crmRoutes.POST("/leads/:id/start-working", leadHandler.StartWorking)
	crmRoutes.POST("/leads/:id/qualify", leadHandler.Qualify)
	crmRoutes.POST("/leads/:id/disqualify", leadHandler.Disqualify)
	crmRoutes.POST("/leads/:id/reopen", leadHandler.Reopen)
	crmRoutes.POST("/leads/:id/convert", leadHandler.Convert)

	// Opportunity routes
	crmRoutes.POST("/opportunities", opportunityHandler.Create)
	crmRoutes.GET("/opportunities", opportunityHandler.List)
	crmRoutes.GET("/opportunities/:id", opportunityHandler.GetByID)
	crmRoutes.PUT("/opportunities/:id", opportunityHandler.Update)
	crmRoutes.DELETE("/opportunities/:id", opportunityHandler.Delete)
	crmRoutes.PUT("/opportunities/:id/owner", opportunityHandler.AssignOwner)
	crmRoutes.PUT("/opportunities/:id/stage", opportunityHandler.ChangeStage)
	crmRoutes.PUT("/opportunities/:id/probability", opportunityHandler.PinProbability)
	crmRoutes.DELETE("/opportunities/:id/probability", opportunityHandler.UnpinProbability)
	crmRoutes.POST("/opportunities/:id/close-won", opportunityHandler.CloseWon)
	crmRoutes.POST("/opportunities/:id/close-lost", opportunityHandler.CloseLost)
	crmRoutes.POST("/opportunities/:id/reopen", opportunityHandler.Reopen)

	// Pipeline routes
	crmRoutes.POST("/pipelines", pipelineHandler.Create)
	crmRoutes.GET("/pipelines", pipelineHandler.List)
	crmRoutes.GET("/pipelines/default", pipelineHandler.GetDefault)
	crmRoutes.GET("/pipelines/:id", pipelineHandler.GetByID)
	crmRoutes.PUT("/pipelines/:id", pipelineHandler.Rename)
	crmRoutes.POST("/pipelines/:id/stages", pipelineHandler.AddStage)
	crmRoutes.PUT("/pipelines/:id/stages/reorder", pipelineHandler.ReorderStages)
	crmRoutes.PUT("/pipelines/:id/stages/:stageId", pipelineHandler.UpdateStage)
	crmRoutes.DELETE("/pipelines/:id/stages/:stageId", pipelineHandler.RemoveStage)
	crmRoutes.POST("/pipelines/:id/default", pipelineHandler.SetDefault)
	crmRoutes.POST("/pipelines/:id/archive", pipelineHandler.Archive)
	crmRoutes.POST("/pipelines/:id/unarchive", pipelineHandler.Unarchive)

	// Catalog domain (products)
	catalogRoutes := router.NewDomainGroup("catalog", "/catalog")
	catalogRoutes.POST("/products", productHandler.Create)
	catalogRoutes.GET("/products", productHandler.List)
	catalogRoutes.GET("/products/active", productHandler.ListActive)
	catalogRoutes.GET("/products/:id", productHandler.GetByID)
	catalogRoutes.GET("/products/code/:code", productHandler.GetByCode)
	catalogRoutes.PUT("/products/:id", productHandler.Update)
	catalogRoutes.DELETE("/products/:id", productHandler.Delete)
	catalogRoutes.POST("/products/:id/activate", productHandler.Activate)
	catalogRoutes.POST("/products/:id/deactivate", productHandler.Deactivate)

	// Content domain (notes, documents)
	contentRoutes := router.NewDomainGroup("content", "/content")
	contentRoutes.POST("/notes", noteHandler.Create)
	contentRoutes.GET("/notes", noteHandler.ListByEntity)
	contentRoutes.GET("/notes/:id", noteHandler.GetByID)
	contentRoutes.PUT("/notes/:id", noteHandler.Update)
	contentRoutes.DELETE("/notes/:id", noteHandler.Delete)
	contentRoutes.POST("/notes/:id/pin", noteHandler.Pin)
	contentRoutes.POST("/notes/:id/unpin", noteHandler.Unpin)

	contentRoutes.POST("/documents", documentHandler.Upload)
	contentRoutes.POST("/documents/avatar", documentHandler.UploadAvatar)
	contentRoutes.GET("/documents", documentHandler.ListByEntity)
	contentRoutes.GET("/documents/:id", documentHandler.GetByID)
	contentRoutes.PUT("/documents/:id", documentHandler.Rename)
	contentRoutes.DELETE("/documents/:id", documentHandler.Delete)

	// Settings domain (custom fields, tabs, groups, page layouts)
	settingsRoutes := router.NewDomainGroup("settings", "/settings")
	settingsRoutes.POST("/fields", customFieldHandler.Create)
	settingsRoutes.GET("/fields", customFieldHandler.ListByModule)
	settingsRoutes.GET("/fields/:id", customFieldHandler.GetByID)
	settingsRoutes.PUT("/fields/:id", customFieldHandler.Update)
	settingsRoutes.DELETE("/fields/:id", customFieldHandler.Delete)
	settingsRoutes.PUT("/fields/:id/options", customFieldHandler.SetOptions)
	settingsRoutes.PUT("/fields/:id/dependency", customFieldHandler.SetDependency)
	settingsRoutes.POST("/fields/:id/activate", customFieldHandler.Activate)
	settingsRoutes.POST("/fields/:id/deactivate", customFieldHandler.Deactivate)

	settingsRoutes.POST("/tabs", containerHandler.CreateTab)
	settingsRoutes.GET("/tabs", containerHandler.ListTabs)
	settingsRoutes.PUT("/tabs/reorder", containerHandler.ReorderTabs)
	settingsRoutes.PUT("/tabs/:id", containerHandler.RenameTab)
	settingsRoutes.PUT("/tabs/:id/active", containerHandler.SetTabActive)
	settingsRoutes.DELETE("/tabs/:id", containerHandler.DeleteTab)

	settingsRoutes.POST("/groups", containerHandler.CreateGroup)
	settingsRoutes.GET("/groups", containerHandler.ListGroups)
	settingsRoutes.PUT("/groups/reorder", containerHandler.ReorderGroups)
	settingsRoutes.PUT("/groups/:id", containerHandler.RenameGroup)
	settingsRoutes.PUT("/groups/:id/tab", containerHandler.SetGroupTab)
	settingsRoutes.PUT("/groups/:id/columns", containerHandler.SetGroupColumns)
	settingsRoutes.DELETE("/groups/:id", containerHandler.DeleteGroup)

	settingsRoutes.POST("/layouts", pageLayoutHandler.Create)
	settingsRoutes.GET("/layouts", pageLayoutHandler.ListByModule)
	settingsRoutes.GET("/layouts/default", pageLayoutHandler.GetDefault)
	settingsRoutes.POST("/layouts/describe-form", pageLayoutHandler.DescribeForm)
	settingsRoutes.POST("/layouts/resolve", pageLayoutHandler.ResolveStates)
	settingsRoutes.GET("/layouts/:id", pageLayoutHandler.GetByID)
	settingsRoutes.PUT("/layouts/:id", pageLayoutHandler.Rename)
	settingsRoutes.PUT("/layouts/:id/body", pageLayoutHandler.SetBody)
	settingsRoutes.POST("/layouts/:id/default", pageLayoutHandler.SetDefault)
	settingsRoutes.DELETE("/layouts/:id", pageLayoutHandler.Delete)

	// Audit domain (immutable change log)
	auditRoutes := router.NewDomainGroup("audit", "/audit")
	auditRoutes.GET("/logs", auditHandler.Search)
	auditRoutes.GET("/logs/:id", auditHandler.GetByID)
	auditRoutes.POST("/logs/purge", middleware.RequirePermission("crm.audit.purge"), auditHandler.Purge)

	// System routes
	systemHandler := handler.NewSystemHandler()
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	// Register all domain groups
	r.Register(authRoutes).
		Register(identityRoutes).
		Register(crmRoutes).
		Register(catalogRoutes).
		Register(contentRoutes).
		Register(settingsRoutes).
		Register(auditRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
