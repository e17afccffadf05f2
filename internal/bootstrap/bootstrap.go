package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/tkaraca/registra/internal/app/controllers"
	appMigrations "github.com/tkaraca/registra/internal/app/migrations"
	appRepos "github.com/tkaraca/registra/internal/app/repositories"
	appRoutes "github.com/tkaraca/registra/internal/app/routes"
	appServices "github.com/tkaraca/registra/internal/app/services"
	"github.com/tkaraca/registra/internal/config"
	"github.com/tkaraca/registra/internal/db"
	appMiddleware "github.com/tkaraca/registra/internal/middleware"
	pkgAuth "github.com/tkaraca/registra/internal/pkg/auth"
	"github.com/tkaraca/registra/internal/pkg/cache"
	"github.com/tkaraca/registra/internal/pkg/helpers"
	"github.com/tkaraca/registra/internal/pkg/logger"
	"github.com/tkaraca/registra/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Services       *appServices.Services
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	TreeCache      *cache.TreeCache
	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(strings.ToLower(cfg.Logging.Level)),
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the initial data.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Pool.Ping(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	lgr.Info().Msg("Database connection established")

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	migrator := appMigrations.NewMigrator(database.Pool)
	if err := migrator.MigrateFromDirectory(context.Background(), migrationsDir); err != nil {
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations applied")

	if err := seed.CreateDefaultData(context.Background(), database.Pool); err != nil {
		lgr.Warn().Err(err).Msg("Failed to create default data")
	}

	return database, nil
}

// BuildDependencies wires repositories, services, controllers and middleware
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	repos := appRepos.NewRepositories(database.Pool)

	jwtService := pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	trees := cache.NewTreeCache(cfg)

	services := appServices.NewServices(repos, database, jwtService, trees, cfg.Grading.PassThreshold)

	return &Dependencies{
		Services:       services,
		Repos:          repos,
		JWTService:     jwtService,
		TreeCache:      trees,
		AuthMiddleware: appMiddleware.NewAuthMiddleware(jwtService, repos.UserRepository),
		Logger:         lgr,
	}, nil
}

// SetupRouter builds the gin engine with all middleware and routes
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger())

	appRoutes.SetupRouter(
		router,
		appControllers.NewAuthController(deps.Services.AuthService),
		appControllers.NewOfferingController(deps.Services.ClosingService),
		appControllers.NewEvaluationController(deps.Services.EvaluationService),
		appControllers.NewGradebookController(deps.Services.GradebookService),
		appControllers.NewPrerequisiteController(deps.Services.PrerequisiteService),
		deps.AuthMiddleware,
	)

	lgr.Info().Msg("Router configured")
	return router
}
