package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/doclens-labs/doclens-core/internal/adapters/driven/ai"
	"github.com/doclens-labs/doclens-core/internal/adapters/driven/fetch"
	"github.com/doclens-labs/doclens-core/internal/adapters/driven/postgres"
	redisadapter "github.com/doclens-labs/doclens-core/internal/adapters/driven/redis"
	"github.com/doclens-labs/doclens-core/internal/adapters/driven/vespa"
	httpserver "github.com/doclens-labs/doclens-core/internal/adapters/driving/http"
	"github.com/doclens-labs/doclens-core/internal/chunker"
	"github.com/doclens-labs/doclens-core/internal/config"
	"github.com/doclens-labs/doclens-core/internal/core/ports/driven"
	"github.com/doclens-labs/doclens-core/internal/core/ports/driving"
	"github.com/doclens-labs/doclens-core/internal/core/services"
	"github.com/doclens-labs/doclens-core/internal/extract"
	"github.com/doclens-labs/doclens-core/internal/worker"
)

var version = "dev"

func main() {
	// Get run mode from environment (RUN_MODE) or command line arg
	mode := getEnv("RUN_MODE", "all")
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}

	log.Printf("doclens-core %s starting in %s mode", version, mode)

	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Shutdown signal received, stopping...")
		cancel()
	}()

	// ===== Initialize PostgreSQL =====
	log.Println("Connecting to PostgreSQL...")
	dbConfig := postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Minute,
	}
	db, err := postgres.Connect(ctx, dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize schema (idempotent)
	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("PostgreSQL connected and schema initialized")

	// ===== Initialize Redis (optional) =====
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	// ===== Initialize Vespa =====
	log.Println("Connecting to Vespa...")
	searchIndex := vespa.NewIndex(vespa.DefaultConfig(cfg.Vespa.URL))
	if err := searchIndex.HealthCheck(ctx); err != nil {
		log.Printf("Warning: Vespa health check failed: %v (search may not work)", err)
	} else {
		log.Println("Vespa connected")
	}

	// ===== AI backends =====
	baseEmbedder, err := ai.NewOpenAIEmbedding(cfg.AI.APIKey, cfg.AI.EmbeddingModel, cfg.AI.BaseURL)
	if err != nil {
		log.Fatalf("Failed to create embedding service: %v", err)
	}
	embedder := ai.NewRetryingEmbedding(baseEmbedder, ai.DefaultRetryConfig(), slog.Default())

	generator, err := ai.NewOpenAIGeneration(cfg.AI.APIKey, cfg.AI.GenerationModel, cfg.AI.BaseURL)
	if err != nil {
		log.Fatalf("Failed to create generation service: %v", err)
	}

	// ===== Stores =====
	documentStore := postgres.NewDocumentStore(db)
	chunkStore := postgres.NewChunkStore(db)

	// ===== Task Queue and Answer Cache (Redis only) =====
	var taskQueue driven.TaskQueue
	var answerCache driven.AnswerCache
	if redisClient != nil {
		taskQueue, err = redisadapter.NewQueue(redisClient, fmt.Sprintf("worker-%d", os.Getpid()))
		if err != nil {
			log.Fatalf("Failed to create task queue: %v", err)
		}
		answerCache = redisadapter.NewAnswerCache(redisClient)
		log.Println("Using Redis task queue and answer cache")
	} else {
		log.Println("Redis not configured: async ingestion and answer caching disabled")
	}

	// ===== Ingestion pipeline pieces =====
	splitter, err := chunker.New(chunker.Config{
		Size:    cfg.Ingest.ChunkSize,
		Overlap: cfg.Ingest.ChunkOverlap,
	})
	if err != nil {
		log.Fatalf("Invalid chunker config: %v", err)
	}

	fetcher := fetch.NewHTTPFetcher(fetch.DefaultConfig())
	extractors := extract.DefaultRegistry(cfg.Ingest.OCREndpoint, 60*time.Second)

	// ===== Services =====
	ingestionService := services.NewIngestionService(services.IngestionConfig{
		Fetcher:       fetcher,
		Extractors:    extractors,
		Chunker:       splitter,
		Embedder:      embedder,
		DocumentStore: documentStore,
		ChunkStore:    chunkStore,
		SearchIndex:   searchIndex,
		TaskQueue:     taskQueue,
		Logger:        slog.Default(),
	})

	queryService := services.NewQueryService(services.QueryConfig{
		Embedder:    embedder,
		SearchIndex: searchIndex,
		ChunkStore:  chunkStore,
		Generator:   generator,
		Ingestion:   ingestionService,
		AnswerCache: answerCache,
		Logger:      slog.Default(),
	})

	switch mode {
	case "api":
		runAPI(cfg, ingestionService, queryService, db, redisClient)

	case "worker":
		if taskQueue == nil {
			log.Fatal("Worker mode requires REDIS_URL")
		}
		runWorkerMode(ctx, cfg, taskQueue, ingestionService)

	case "all":
		if taskQueue != nil {
			go runWorkerMode(ctx, cfg, taskQueue, ingestionService)
		}
		runAPI(cfg, ingestionService, queryService, db, redisClient)

	default:
		log.Fatalf("Unknown mode: %s (use: api, worker, or all)", mode)
	}
}

func runAPI(
	cfg *config.Config,
	ingestionService driving.IngestionService,
	queryService driving.QueryService,
	db httpserver.Pinger,
	redisClient *redis.Client,
) {
	serverCfg := httpserver.Config{
		Host:       cfg.Server.Host,
		Port:       cfg.Server.Port,
		Version:    version,
		JWTSecret:  cfg.Server.JWTSecret,
		APIKeyHash: cfg.Server.APIKeyHash,
	}

	var redisPinger httpserver.Pinger
	if redisClient != nil {
		redisPinger = redisPing{client: redisClient}
	}

	server := httpserver.NewServer(serverCfg, ingestionService, queryService, db, redisPinger)

	log.Printf("API server starting on :%d", cfg.Server.Port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// runWorkerMode starts the background ingestion worker.
func runWorkerMode(
	ctx context.Context,
	cfg *config.Config,
	taskQueue driven.TaskQueue,
	ingestionService driving.IngestionService,
) {
	log.Println("Starting worker mode...")

	w := worker.New(worker.Config{
		TaskQueue:      taskQueue,
		Ingestion:      ingestionService,
		Logger:         slog.Default(),
		Concurrency:    cfg.Worker.Concurrency,
		DequeueTimeout: time.Duration(cfg.Worker.DequeueTimeoutSecs) * time.Second,
		MaxRetries:     cfg.Worker.MaxRetries,
	})

	if err := w.Start(ctx); err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}

	<-ctx.Done()
	w.Stop()
}

// redisPing adapts a redis client to the Pinger interface.
type redisPing struct {
	client *redis.Client
}

func (p redisPing) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
