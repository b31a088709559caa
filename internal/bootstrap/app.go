package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpHandler "github.com/Kenneth-Mwenda/e-commerce-website-project/internal/handler/http"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/infra/mail"
	gormpersistence "github.com/Kenneth-Mwenda/e-commerce-website-project/internal/infra/persistence/gorm"
	mongopersistence "github.com/Kenneth-Mwenda/e-commerce-website-project/internal/infra/persistence/mongo"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/infra/setup"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/middleware"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/repository"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/service"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/tasks"
	"github.com/Kenneth-Mwenda/e-commerce-website-project/internal/worker"
)

// App 结构体包含应用的所有组件和配置
type App struct {
	Config      *Config
	Log         *logrus.Logger
	Store       repository.Store
	RedisClient *redis.Client
	AsynqClient *asynq.Client
	Inspector   *asynq.Inspector
	AsynqServer *worker.WorkerServer
	Scheduler   *asynq.Scheduler
	Mailer      mail.Sender
	HttpServer  *http.Server

	redisClientOpt asynq.RedisClientOpt
}

// NewApp 创建并初始化应用的所有组件
func NewApp() (*App, error) {
	// 1. 加载配置
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 2. 初始化 Logger
	log := NewLogger(cfg)
	log.Infof("Logger initialized (Level: %s)", log.GetLevel())

	// 3. 初始化基础设施
	ctx := context.Background()
	store, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		_ = store.Close(ctx)
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}

	redisClientOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	asynqClient := asynq.NewClient(redisClientOpt)
	inspector := asynq.NewInspector(redisClientOpt)
	dispatcher := worker.NewAsynqDispatcher(asynqClient, inspector, cfg.NotifyMaxRetry)
	log.Info("Asynq client initialized")

	mailer := newMailer(cfg, log)

	// 4. 初始化 Services
	authService := service.NewAuthService(store, dispatcher)
	productService := service.NewProductService(store, cfg.ProductCacheTTL)
	orderService := service.NewOrderService(store, dispatcher, cfg.OrderPricing, cfg.Currency)
	orderService.OnCatalogChange(productService.InvalidateProducts)
	notificationService := service.NewNotificationService(store, mailer, dispatcher, cfg.NotifyRelayGrace)
	log.WithField("pricing", cfg.OrderPricing).Info("Services initialized")

	// 5. 初始化 Worker Server
	workerServer := worker.NewWorkerServer(redisClientOpt, notificationService, log)

	// 6. 初始化 Gin Engine 和路由
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := NewRouter(cfg, log, redisClient, httpHandler.Handlers{
		Auth:     httpHandler.NewAuthHandler(authService),
		Products: httpHandler.NewProductHandler(productService),
		Orders:   httpHandler.NewOrderHandler(orderService),
		Health:   httpHandler.NewHealthHandler(store),
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &App{
		Config:         cfg,
		Log:            log,
		Store:          store,
		RedisClient:    redisClient,
		AsynqClient:    asynqClient,
		Inspector:      inspector,
		AsynqServer:    workerServer,
		Mailer:         mailer,
		HttpServer:     httpServer,
		redisClientOpt: redisClientOpt,
	}, nil
}

// OpenStore 根据 STORE_DRIVER 打开存储后端并完成迁移 (或建索引)
func OpenStore(ctx context.Context, cfg *Config, log *logrus.Logger) (repository.Store, error) {
	switch cfg.StoreDriver {
	case DriverMongo:
		client, err := setup.InitMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("failed to init MongoDB: %w", err)
		}
		useTx := resolveMongoTransactions(ctx, cfg.MongoTransactions, func(ctx context.Context) (bool, error) {
			return mongopersistence.SupportsTransactions(ctx, client)
		}, log)
		store := mongopersistence.NewMongoStore(client, cfg.MongoDB, useTx)
		setup.MigrateMongo(ctx, store)
		log.WithFields(logrus.Fields{"db": cfg.MongoDB, "mode": cfg.MongoTransactions, "transactions": useTx}).Info("MongoDB store ready")
		return store, nil

	case DriverMySQL, DriverPostgres, DriverSQLite:
		var (
			store *gormpersistence.GormStore
			err   error
		)
		switch cfg.StoreDriver {
		case DriverMySQL:
			store, err = openGormStore(setup.InitMySQL(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName))
		case DriverPostgres:
			store, err = openGormStore(setup.InitPostgres(cfg.DatabaseURL, cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName))
		default:
			store, err = openGormStore(setup.InitSQLite(cfg.SQLitePath))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to init %s store: %w", cfg.StoreDriver, err)
		}
		log.WithField("driver", cfg.StoreDriver).Info("Relational store ready")
		return store, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// resolveMongoTransactions 决定 MongoStore 是否使用事务。
// auto 模式下检测失败 (例如启动时连不上) 按不支持处理，下单路径会自行补偿库存。
func resolveMongoTransactions(ctx context.Context, mode string, detect func(context.Context) (bool, error), log *logrus.Logger) bool {
	switch mode {
	case MongoTxOn:
		return true
	case MongoTxOff:
		return false
	}
	detectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ok, err := detect(detectCtx)
	if err != nil {
		log.WithError(err).Warn("Could not detect MongoDB topology, running without transactions")
		return false
	}
	if !ok {
		log.Info("MongoDB is a standalone server, running without transactions")
	}
	return ok
}

func openGormStore(db *gorm.DB, err error) (*gormpersistence.GormStore, error) {
	if err != nil {
		return nil, err
	}
	if err := setup.MigrateDB(db); err != nil {
		return nil, err
	}
	return gormpersistence.NewGormStore(db), nil
}

// newMailer 未配置 EMAIL_USER 时退化为只写日志
func newMailer(cfg *Config, log *logrus.Logger) mail.Sender {
	if cfg.EmailUser == "" {
		log.Warn("EMAIL_USER not set, notifications will be logged instead of sent")
		return mail.NewLogMailer(log)
	}
	log.WithFields(logrus.Fields{"host": cfg.SMTPHost, "port": cfg.SMTPPort}).Info("SMTP mailer configured")
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.EmailUser,
		Password: cfg.EmailPass,
		FromName: cfg.MailFromName,
	}, log)
}

// NewRouter 组装 Gin Engine: 中间件顺序为 Recovery、请求 ID、日志、CORS、限流
func NewRouter(cfg *Config, log *logrus.Logger, redisClient *redis.Client, handlers httpHandler.Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(LoggerMiddleware(log))
	router.Use(cors.New(corsConfig(cfg.CORSAllowedOrigin)))
	router.Use(middleware.RateLimit(redisClient, cfg.KeyPrefix, cfg.RateLimitMax, cfg.RateLimitWindow))

	httpHandler.RegisterRoutes(router, handlers)
	return router
}

func corsConfig(allowedOrigin string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if allowedOrigin == "*" {
		c.AllowAllOrigins = true
		return c
	}
	for _, o := range strings.Split(allowedOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			c.AllowOrigins = append(c.AllowOrigins, o)
		}
	}
	c.AllowCredentials = true
	return c
}

// Start 启动 Worker、周期任务和 HTTP 服务器
func (a *App) Start() {
	if err := a.AsynqServer.Start(); err != nil {
		a.Log.Fatalf("Failed to start worker server: %v", err)
	}
	a.Log.Info("Asynq worker server started")

	if err := a.registerPeriodicTasks(); err != nil {
		// 没有 relay 时快速路径仍然可用
		a.Log.Errorf("Could not start notification relay scheduler: %v", err)
	}

	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

func (a *App) registerPeriodicTasks() error {
	scheduler := asynq.NewScheduler(a.redisClientOpt, &asynq.SchedulerOpts{
		Location: time.UTC,
		Logger:   a.Log.WithField("component", "scheduler"),
		LogLevel: asynq.WarnLevel,
	})

	payload, err := tasks.NewNotificationRelayTask()
	if err != nil {
		return fmt.Errorf("create relay task payload: %w", err)
	}
	task := asynq.NewTask(tasks.TypeNotificationRelay, payload)

	schedule := "@every " + a.Config.NotifyRelayInterval.String()
	entryID, err := scheduler.Register(schedule, task,
		asynq.Queue("low"),
		asynq.MaxRetry(0),
		asynq.Unique(a.Config.NotifyRelayInterval),
	)
	if err != nil {
		return fmt.Errorf("register relay task: %w", err)
	}
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.Scheduler = scheduler
	a.Log.Infof("Notification relay registered with schedule '%s' (EntryID: %s)", schedule, entryID)
	return nil
}

// Shutdown 优雅地关闭应用: 先停止接收请求，再停后台任务，最后关闭连接
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	if a.Scheduler != nil {
		a.Scheduler.Shutdown()
	}
	if a.AsynqServer != nil {
		a.AsynqServer.Shutdown()
	}
	if a.AsynqClient != nil {
		if err := a.AsynqClient.Close(); err != nil {
			a.Log.Errorf("Error closing Asynq client: %v", err)
		}
	}
	if a.Inspector != nil {
		if err := a.Inspector.Close(); err != nil {
			a.Log.Errorf("Error closing Asynq inspector: %v", err)
		}
	}
	if a.Mailer != nil {
		if err := a.Mailer.Close(); err != nil {
			a.Log.Errorf("Error closing mailer: %v", err)
		}
	}
	if a.RedisClient != nil {
		if err := a.RedisClient.Close(); err != nil {
			a.Log.Errorf("Error closing Redis connection: %v", err)
		}
	}
	if a.Store != nil {
		if err := a.Store.Close(ctx); err != nil {
			a.Log.Errorf("Error closing store: %v", err)
		}
	}

	a.Log.Info("Application shutdown complete.")
}
