package router

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/spotdrop/backend/internal/clients/llm"
	"github.com/anonto42/spotdrop/backend/internal/clients/places"
	"github.com/anonto42/spotdrop/backend/internal/handlers"
	"github.com/anonto42/spotdrop/backend/internal/middleware"
	"github.com/anonto42/spotdrop/backend/internal/models"
	"github.com/anonto42/spotdrop/backend/internal/placecache"
	"github.com/anonto42/spotdrop/backend/internal/repositories"
	"github.com/anonto42/spotdrop/backend/internal/resolver"
	"github.com/anonto42/spotdrop/backend/internal/savedview"
	"github.com/anonto42/spotdrop/backend/pkg/config"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo, log logrus.FieldLogger) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.RequestIDWithConfig(eMiddleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))
	e.Use(eMiddleware.RequestLoggerWithConfig(eMiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v eMiddleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))
	log.Info("Global middleware configured.")
}

// SetupRoutes migrates the schema, builds every component and registers the
// API. The returned function releases what the components hold open.
func SetupRoutes(
	e *echo.Echo,
	cfg *config.Config,
	pgdb *gorm.DB,
	mgClient *mongo.Client,
	firebaseAuthClient *auth.Client,
	log logrus.FieldLogger,
) (func(), error) {
	if err := pgdb.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("failed to auto migrate models: %w", err)
	}
	log.Info("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	locationRepo := repositories.NewPostgresLocationRepository(pgdb)
	postRepo := repositories.NewPostgresPostRepository(pgdb)
	savedRepo := repositories.NewPostgresSavedLocationRepository(pgdb)
	folderRepo := repositories.NewPostgresFolderRepository(pgdb)
	editRepo := repositories.NewPostgresLocationEditRepository(pgdb)
	traceRepo := repositories.NewMongoResolutionTraceRepository(mgClient.Database(cfg.MongoDatabase))

	// --- External clients ---
	completer := llm.NewClient(llm.Config{
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
		Timeout: cfg.LLMTimeout,
	})
	placesClient := places.NewClient(places.Config{
		BaseURL: cfg.PlacesBaseURL,
		APIKey:  cfg.PlacesAPIKey,
		Timeout: cfg.PlacesTimeout,
	})

	var searcher resolver.PlaceSearcher = placesClient
	cache, err := newPlaceCache(cfg, log)
	if err != nil {
		return nil, err
	}
	cleanup := func() {}
	if cache != nil {
		searcher = placecache.NewCachedSearcher(placesClient, cache, cfg.PlaceCacheTTL, log)
		cleanup = func() {
			if err := cache.Close(); err != nil {
				log.WithError(err).Error("Error closing place cache")
			}
		}
		log.WithField("backend", cfg.PlaceCache).Info("Place search cache enabled.")
	}

	var renderer resolver.PageRenderer
	if cfg.BrowserRenderer {
		renderer = resolver.NewRodRenderer(cfg.MetadataTimeout, log)
		log.Info("Headless browser rendering enabled for page summaries.")
	}

	// --- Resolution pipeline ---
	extractor := resolver.NewMetadataExtractor(
		resolver.NewTikTokFetcher(cfg.TikTokOEmbedURL, cfg.MetadataTimeout, cfg.TikTokRetryBackoff, log),
		resolver.NewOpenGraphFetcher(cfg.MetadataTimeout, log),
		resolver.NewHTMLSummarizer(completer, renderer, log),
		log,
	)
	postResolver := resolver.NewPostResolver(
		extractor,
		resolver.NewLLMPlaceNameInferer(completer, log),
		searcher,
		placesClient,
		resolver.NewLLMTaglineGenerator(completer, log),
		locationRepo,
		postRepo,
		savedRepo,
		log,
	).WithTraceArchive(traceRepo)

	aggregator := savedview.NewAggregator(folderRepo, savedRepo, postRepo, editRepo, log)
	discoverer := savedview.NewDiscoverer(locationRepo, postRepo, log)

	// --- Protected routes ---
	api := e.Group("/api/v1")
	switch cfg.AuthProvider {
	case "firebase":
		if firebaseAuthClient == nil {
			cleanup()
			return nil, fmt.Errorf("firebase auth selected but no auth client configured")
		}
		api.Use(middleware.FirebaseAuthMiddleware(firebaseAuthClient, userRepo))
	default:
		api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	}
	log.WithField("provider", cfg.AuthProvider).Info("Authentication middleware applied to /api/v1 group.")

	handlers.NewUserHandler(userRepo).RegisterProfileRoutes(api)
	handlers.NewPostHandler(postResolver, traceRepo, log).RegisterPostRoutes(api)
	handlers.NewSavedLocationHandler(aggregator, savedRepo, locationRepo).RegisterSavedLocationRoutes(api)
	handlers.NewLocationEditHandler(editRepo, folderRepo, locationRepo).RegisterLocationEditRoutes(api)
	handlers.NewDiscoverHandler(discoverer).RegisterDiscoverRoutes(api)

	log.Info("All routes configured.")
	return cleanup, nil
}

func newPlaceCache(cfg *config.Config, log logrus.FieldLogger) (placecache.Cache, error) {
	switch cfg.PlaceCache {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), cfg.PlacesTimeout)
		defer cancel()
		c, err := placecache.NewRedisCache(ctx, &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return c, nil
	case "badger":
		c, err := placecache.NewBadgerCache(cfg.BadgerPath, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger store: %w", err)
		}
		return c, nil
	default:
		return nil, nil
	}
}
