package di

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/GoArmGo/RecipeApp/internal/adapter/cache/redis"
	"github.com/GoArmGo/RecipeApp/internal/adapter/storage/minio"
	"github.com/GoArmGo/RecipeApp/internal/app"
	"github.com/GoArmGo/RecipeApp/internal/config"
	"github.com/GoArmGo/RecipeApp/internal/core/ports"
	"github.com/GoArmGo/RecipeApp/internal/database/client"
	"github.com/GoArmGo/RecipeApp/internal/database/memory"
	"github.com/GoArmGo/RecipeApp/internal/database/storage"
	"github.com/GoArmGo/RecipeApp/internal/handler"
	"github.com/GoArmGo/RecipeApp/internal/logger"
	"github.com/GoArmGo/RecipeApp/internal/rabbitmq"
	"github.com/GoArmGo/RecipeApp/internal/usecase"
)

// storages набор хранилищ выбранного драйвера
type storages struct {
	users       ports.UserStorage
	tokens      ports.TokenStorage
	tags        ports.TagStorage
	ingredients ports.IngredientStorage
	recipes     ports.RecipeStorage
}

// BuildApp инициализирует все зависимости и возвращает готовый объект App.
func BuildApp(ctx context.Context) (*app.App, error) {
	// 1. Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	slogger := logger.NewSlog(logger.SlogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: os.Stdout,
	})
	slogger.Info("logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	var closers []func() error
	fail := func(err error) (*app.App, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		return nil, err
	}

	// 2. Инициализация хранилищ
	st, closeStore, err := buildStorages(cfg, slogger)
	if err != nil {
		return fail(err)
	}
	if closeStore != nil {
		closers = append(closers, closeStore)
	}

	// 3. Кэш токенов
	var tokenCache ports.TokenCache = redis.NopTokenCache{}
	if cfg.RedisAddr != "" {
		rdb, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, rdb.Close)
		tokenCache = redis.NewTokenCache(rdb, cfg.TokenCacheTTL, slogger)
		slogger.Info("token cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.TokenCacheTTL)
	}

	// 4. Объектное хранилище (S3 / MinIO). Интерфейс остается nil, если не настроено.
	var fileStorage ports.FileStorage
	if cfg.ImagesEnabled() {
		minioClient, err := minio.NewMinioClient(ctx, minio.Config{
			Endpoint:        cfg.MinioEndpoint,
			AccessKeyID:     cfg.MinioAccessKeyID,
			SecretAccessKey: cfg.MinioSecretAccessKey,
			UseSSL:          cfg.MinioUseSSL,
			BucketName:      cfg.MinioBucketName,
			Region:          cfg.MinioRegion,
			PublicURL:       cfg.ObjectStorePublicURL,
		}, slogger)
		if err != nil {
			return fail(err)
		}
		fileStorage = minioClient
	} else {
		slogger.Warn("MINIO_ENDPOINT is not set, image upload is disabled")
	}

	// 5. RabbitMQ: publisher для сервера, consumer для воркера
	var (
		publisher ports.ImageCleanupPublisher
		consumer  ports.ImageCleanupConsumer
	)
	if cfg.RabbitMQ.RabbitMQURL != "" {
		rabbitMQClient, err := rabbitmq.NewClient(cfg.RabbitMQ.RabbitMQURL, cfg.RabbitMQ.RabbitMQQueueName, slogger)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, rabbitMQClient.Close)
		publisher = rabbitMQClient
		consumer = rabbitMQClient
	}

	// 6. Инициализация бизнес-логики (usecases)
	accounts := usecase.NewAccountUseCase(st.users, cfg.BcryptCost, slogger)
	tokens := usecase.NewTokenUseCase(st.tokens, st.users, tokenCache, slogger)
	cleanup := usecase.NewImageCleanupUseCase(fileStorage, publisher, slogger)
	recipes := usecase.NewRecipeUseCase(st.recipes, st.tags, st.ingredients, fileStorage, cleanup, cfg.MaxImageBytes, slogger)

	router := handler.NewRouter(handler.RouterDeps{
		Accounts:       accounts,
		Tokens:         tokens,
		Tags:           usecase.NewTagUseCase(st.tags, slogger),
		Ingredients:    usecase.NewIngredientUseCase(st.ingredients, slogger),
		Recipes:        recipes,
		Logger:         slogger,
		RequestTimeout: cfg.RequestTimeout,
		AuthRateLimit:  cfg.AuthRateLimit,
		MaxImageBytes:  cfg.MaxImageBytes,
	})

	// 7. Сборка итогового приложения
	application := app.NewApp(cfg, slogger, router, accounts, cleanup, consumer, closers...)

	slogger.Info("dependencies initialized", "storage_driver", cfg.StorageDriver)
	return application, nil
}

func buildStorages(cfg *config.Config, slogger *slog.Logger) (storages, func() error, error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		slogger.Warn("using in-memory storage, data is lost on restart")
		store := memory.New()
		return storages{
			users:       store,
			tokens:      store,
			tags:        store.Tags(),
			ingredients: store.Ingredients(),
			recipes:     store,
		}, nil, nil

	case config.StorageDriverPostgres:
		dbClient, err := client.NewClient(cfg.DatabaseURL, slogger)
		if err != nil {
			return storages{}, nil, err
		}
		return storages{
			users:       storage.NewUserStorage(dbClient.DB, slogger),
			tokens:      storage.NewTokenStorage(dbClient.DB, slogger),
			tags:        storage.NewTagStorage(dbClient.DB, slogger),
			ingredients: storage.NewIngredientStorage(dbClient.DB, slogger),
			recipes:     storage.NewRecipeStorage(dbClient.DB, slogger),
		}, dbClient.Close, nil

	default:
		return storages{}, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
