package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	// --- 导入内部包 ---
	httpHandler "music-room/internal/handler/http"
	wsHandler "music-room/internal/handler/websocket"
	"music-room/internal/hub"
	redisevents "music-room/internal/infra/events/redis"
	memdbpersistence "music-room/internal/infra/persistence/memdb"
	"music-room/internal/infra/setup"
	"music-room/internal/middleware"
	"music-room/internal/repository"
	"music-room/internal/service"
	"music-room/internal/version"
)

// Variant 区分两种部署形态
type Variant int

const (
	// VariantMusicRoom 提供健康检查和房间接口，并写入示例房间
	VariantMusicRoom Variant = iota
	// VariantStarter 只提供健康检查和根路径
	VariantStarter
)

func (v Variant) String() string {
	if v == VariantStarter {
		return "starter"
	}
	return "music-room"
}

// Info 返回该部署形态的静态元数据
func (v Variant) Info() httpHandler.AppInfo {
	if v == VariantStarter {
		return httpHandler.AppInfo{
			Title:          "Mobile App Starter API",
			Description:    "Backend starter for a mobile application",
			Tagline:        "A minimal backend starter with health checks",
			Version:        version.Version,
			WelcomeMessage: "Welcome to the Mobile App Starter API",
		}
	}
	return httpHandler.AppInfo{
		Title:          "Music Room API",
		Description:    "Backend API for Music Room - A collaborative music sharing platform",
		Tagline:        "A collaborative music sharing and discovery platform",
		Version:        version.Version,
		WelcomeMessage: "Welcome to Music Room API",
	}
}

// Config 结构体用于存储从环境变量或文件加载的配置
type Config struct {
	ServerPort         string
	AppEnv             string // development/production
	LogLevel           string
	SeedSampleRooms    bool
	SeedFile           string
	RedisAddr          string // 为空时不发布房间事件
	RedisPassword      string
	RedisDB            int
	KeyPrefix          string
	CORSAllowedOrigins []string // 为空时允许任意来源
}

// LoadConfig 从环境变量加载配置，所有变量都是可选的
func LoadConfig() (*Config, error) {
	// 优先加载 .env 文件 (如果存在)
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:      os.Getenv("SERVER_PORT"),
		AppEnv:          os.Getenv("APP_ENV"),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		SeedSampleRooms: true,
		SeedFile:        os.Getenv("SEED_FILE"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		KeyPrefix:       os.Getenv("REDIS_KEY_PREFIX"),
	}

	if raw := os.Getenv("REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q: %w", raw, err)
		}
		cfg.RedisDB = db
	}
	if raw := os.Getenv("SEED_SAMPLE_ROOMS"); raw != "" {
		seed, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SEED_SAMPLE_ROOMS %q: %w", raw, err)
		}
		cfg.SeedSampleRooms = seed
	}
	cfg.CORSAllowedOrigins = lo.Compact(lo.Map(strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ","),
		func(s string, _ int) string { return strings.TrimSpace(s) }))

	// --- 设置默认值 ---
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8000"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "mr:"
	}

	// 验证日志级别
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// App 结构体包含应用的所有组件和配置
type App struct {
	Variant     Variant
	Config      *Config
	Log         *logrus.Logger
	RedisClient *redis.Client // 未配置 REDIS_ADDR 时为 nil
	Hub         *hub.Hub      // starter 形态下为 nil
	RoomService *service.RoomService
	Router      *gin.Engine
	HttpServer  *http.Server
}

// NewApp 加载配置并初始化应用
func NewApp(variant Variant) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}
	return NewAppWithConfig(variant, cfg)
}

// NewAppWithConfig 使用给定配置创建并初始化应用的所有组件
func NewAppWithConfig(variant Variant, cfg *Config) (*App, error) {
	// 1. 初始化 Logger，同时配置全局 logger 供 service 层使用
	log := newLogger(cfg)
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(log.GetLevel())
	log.WithField("variant", variant.String()).Info("Configuration loaded successfully")

	app := &App{Variant: variant, Config: cfg, Log: log}
	info := variant.Info()

	// 2. 房间相关组件只在 music-room 形态下创建
	var roomHandler *httpHandler.RoomHandler
	var subscribeHandler *wsHandler.WebSocketHandler
	if variant == VariantMusicRoom {
		app.Hub = hub.NewHub()
		publishers := repository.RoomEventPublishers{app.Hub}
		if cfg.RedisAddr != "" {
			redisClient, err := setup.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
			if err != nil {
				return nil, fmt.Errorf("failed to init Redis: %w", err)
			}
			app.RedisClient = redisClient
			publishers = append(publishers, redisevents.NewRoomEventPublisher(redisClient, cfg.KeyPrefix))
			log.Info("Room events will be published to Redis")
		}

		roomRepo, err := memdbpersistence.NewRoomRepository()
		if err != nil {
			app.closeRedis()
			return nil, fmt.Errorf("failed to init room store: %w", err)
		}
		roomService := service.NewRoomService(roomRepo, publishers)
		app.RoomService = roomService

		if cfg.SeedSampleRooms {
			rooms, err := setup.LoadSeedRooms(cfg.SeedFile)
			if err != nil {
				app.closeRedis()
				return nil, fmt.Errorf("failed to load seed rooms: %w", err)
			}
			if err := roomService.SeedRooms(context.Background(), rooms); err != nil {
				app.closeRedis()
				return nil, fmt.Errorf("failed to seed rooms: %w", err)
			}
		}
		roomHandler = httpHandler.NewRoomHandler(roomService)
		subscribeHandler = wsHandler.NewWebSocketHandler(app.Hub, roomService, cfg.CORSAllowedOrigins)
	}

	// 3. 初始化 Gin Engine 和路由
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
	}
	app.Router = NewRouter(log, info, cfg, roomHandler, subscribeHandler)

	// 4. 初始化 HTTP Server
	app.HttpServer = &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Infof("%s initialized", info.Title)
	return app, nil
}

// NewRouter 组装中间件和路由。roomHandler 和 subscribeHandler 为 nil 时不挂载对应接口。
func NewRouter(log *logrus.Logger, info httpHandler.AppInfo, cfg *Config, roomHandler *httpHandler.RoomHandler, subscribeHandler *wsHandler.WebSocketHandler) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	healthHandler := httpHandler.NewHealthHandler("api", info.Version)
	rootHandler := httpHandler.NewRootHandler(info)

	api := router.Group("/api")
	{
		api.GET("/ping", healthHandler.Ping)
		api.GET("/health", healthHandler.Health)
		api.GET("/version", healthHandler.Version)
	}
	if roomHandler != nil {
		// 带和不带结尾斜杠都直接处理，不做重定向
		roomRoutes := api.Group("/rooms")
		{
			roomRoutes.GET("", roomHandler.ListRooms)
			roomRoutes.GET("/", roomHandler.ListRooms)
			roomRoutes.POST("", roomHandler.CreateRoom)
			roomRoutes.POST("/", roomHandler.CreateRoom)
			roomRoutes.GET("/:id", roomHandler.GetRoom)
			roomRoutes.DELETE("/:id", roomHandler.DeleteRoom)
		}
	}
	if subscribeHandler != nil {
		wsRoutes := router.Group("/ws")
		{
			wsRoutes.GET("/rooms", subscribeHandler.SubscribeAll)
			wsRoutes.GET("/rooms/:id", subscribeHandler.SubscribeRoom)
		}
	}
	router.GET("/", rootHandler.Welcome)
	router.NoRoute(func(c *gin.Context) {
		httpHandler.ErrorResponse(c, http.StatusNotFound, "Not Found")
	})
	return router
}

// Start 启动 Hub 和 HTTP 服务器的后台 Goroutine
func (a *App) Start() {
	if a.Hub != nil {
		go a.Hub.Run()
		a.Log.Info("Hub routine started")
	}

	go func() {
		a.Log.Infof("HTTP server starting to listen on %s", a.HttpServer.Addr)
		if err := a.HttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

// Shutdown 优雅地关闭应用
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HttpServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	// 断开所有订阅连接
	if a.Hub != nil {
		a.Hub.Stop()
	}

	a.closeRedis()
	a.Log.Info("Application shutdown complete.")
}

func (a *App) closeRedis() {
	if a.RedisClient == nil {
		return
	}
	if err := a.RedisClient.Close(); err != nil {
		a.Log.Errorf("Error closing Redis connection: %v", err)
	} else {
		a.Log.Info("Redis connection closed.")
	}
	a.RedisClient = nil
}

func newLogger(cfg *Config) *logrus.Logger {
	log := logrus.New()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetOutput(os.Stdout)
	return log
}
