package main

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/aura-site/api/api"
	"github.com/aura-site/api/clients"
	"github.com/aura-site/api/datastore"
	domainerrors "github.com/aura-site/api/errors"
	"github.com/aura-site/api/logger"
	"github.com/aura-site/api/migrations"
	"github.com/aura-site/api/models"
	"github.com/aura-site/api/palette"
	"github.com/aura-site/api/ratelimit"
	"github.com/aura-site/api/scheduler"
	"github.com/aura-site/api/sitegen"
	"github.com/aura-site/api/validation"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	log := logger.New(logger.Config{
		Format:      getEnv("LOG_FORMAT", ""),
		Environment: getEnv("ENVIRONMENT", "development"),
		Level:       logger.ParseLevel(getEnv("LOG_LEVEL", "info")),
	})
	slog.SetDefault(log)

	// Get configuration from environment
	config := api.Config{
		HTTPPort:            getEnv("HTTP_PORT", ":8080"),
		DatabaseType:        getEnv("DB_TYPE", "postgres"),
		DatabaseHost:        getEnv("DB_HOST", "localhost"),
		DatabasePort:        getEnv("DB_PORT", "5432"),
		DatabaseUser:        getEnv("DB_USER", "postgres"),
		DatabasePassword:    getEnv("DB_PASSWORD", ""),
		DatabaseName:        getEnv("DB_NAME", "aurasite"),
		SSLMode:             getEnv("SSL_MODE", "disable"),
		JwtSecret:           getEnv("JWT_SECRET", "your-secret-key-change-this"),
		JwtAccessDuration:   getEnvInt("JWT_ACCESS_DURATION", 3600), // 1 hour
		JwtDomain:           getEnv("JWT_DOMAIN", ""),
		AllowedOrigins:      getEnvSlice("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"),
		DevMode:             getEnvBool("DEV_MODE", true),
		CreateRatePerMinute: getEnvInt("CREATE_RATE_PER_MINUTE", 5),
		TrustProxyHeaders:   getEnvBool("TRUST_PROXY_HEADERS", false),
		MaxUploadBytes:      int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
	}

	// Create database connection
	connStr := datastore.BuildDBConnStr(
		config.DatabaseHost,
		config.DatabasePort,
		config.DatabaseUser,
		config.DatabasePassword,
		config.DatabaseName,
		config.SSLMode,
	)

	dbConn, dbErr := datastore.NewDB(config.DatabaseType, connStr)
	if dbErr != nil {
		fatal(log, "failed to connect to database", dbErr)
	}
	defer dbConn.Close()

	// Run database migrations
	if err := migrations.RunMigrations(dbConn, log); err != nil {
		fatal(log, "failed to run migrations", err)
	}

	siteRepo, err := datastore.NewSiteDatabase(dbConn)
	if err != nil {
		fatal(log, "failed to create site repository", err)
	}

	componentRepo, err := datastore.NewComponentDatabase(dbConn)
	if err != nil {
		fatal(log, "failed to create component repository", err)
	}

	featuredRepo, err := datastore.NewFeaturedDatabase(dbConn)
	if err != nil {
		fatal(log, "failed to create featured repository", err)
	}

	operatorRepo, err := datastore.NewOperatorDatabase(dbConn)
	if err != nil {
		fatal(log, "failed to create operator repository", err)
	}

	bootstrapOperator(log, operatorRepo, getEnv("OPERATOR_EMAIL", ""), getEnv("OPERATOR_PASSWORD", ""))

	// External providers
	social := clients.NewSocialClient(
		getEnv("SOCIALDATA_BASE_URL", clients.DefaultSocialBaseURL),
		getEnv("SOCIALDATA_API_KEY", ""),
		log,
	)
	openai := clients.NewOpenAIClient(
		getEnv("OPENAI_BASE_URL", clients.DefaultOpenAIBaseURL),
		getEnv("OPENAI_API_KEY", ""),
		getEnv("OPENAI_MODEL", clients.DefaultOpenAIModel),
		log,
	)
	search := clients.NewImageSearchClient(
		getEnv("GOOGLE_BASE_URL", clients.DefaultImageSearchBaseURL),
		getEnv("GOOGLE_API_KEY", ""),
		getEnv("GOOGLE_CX", ""),
		log,
	)
	fetcher := clients.NewImageFetcher(int64(getEnvInt("MAX_IMAGE_BYTES", clients.MaxImageBytes)), log)

	describer := palette.NewDescriber(palette.NewExtractor(fetcher, palette.Options{}, log))

	generator := sitegen.New(sitegen.Deps{
		Social:   social,
		Palette:  describer,
		Outlines: openai,
		Vision:   openai,
		Search:   search,
		Sites:    siteRepo,
		Logger:   log,
	})

	// Start scheduler for the daily featured site
	featuredScheduler := scheduler.NewScheduler(featuredRepo, siteRepo, log)
	featuredScheduler.Start()
	defer featuredScheduler.Stop()

	createLimiter := ratelimit.PerInterval(config.CreateRatePerMinute, time.Minute, max(1, config.CreateRatePerMinute))
	defer createLimiter.Stop()

	app := &api.Application{
		Config:        config,
		Logger:        log,
		SiteRepo:      siteRepo,
		ComponentRepo: componentRepo,
		FeaturedRepo:  featuredRepo,
		OperatorRepo:  operatorRepo,
		Generator:     generator,
		Palette:       describer,
		Featured:      featuredScheduler,
		Validator:     validation.New(),
		CreateLimiter: createLimiter,
	}

	// Create and start server
	mux := http.NewServeMux()

	log.Info("aura site api starting")
	if err := app.Serve(mux); err != nil {
		fatal(log, "server error", err)
	}
}

// bootstrapOperator creates the operator account from the environment once.
func bootstrapOperator(log *slog.Logger, repo datastore.OperatorRepository, email, password string) {
	if email == "" || password == "" {
		log.Warn("OPERATOR_EMAIL or OPERATOR_PASSWORD not set, operator endpoints are unusable until an account exists")
		return
	}

	operator, err := models.NewOperator(email, password)
	if err != nil {
		fatal(log, "failed to hash operator password", err)
	}

	if _, err := repo.Create(operator); err != nil {
		if domainerrors.CodeOf(err) == domainerrors.CodeConflict {
			log.Debug("operator already exists", "email", email)
			return
		}
		fatal(log, "failed to create operator", err)
	}
	log.Info("operator created", "email", email)
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intVal
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolVal, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

func getEnvSlice(key, defaultValue string) []string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	parts := strings.Split(value, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
