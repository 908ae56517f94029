package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/ulule/limiter/v3"

	"resume-portal/internal/account"
	googleauth "resume-portal/internal/auth"
	"resume-portal/internal/llm"
	"resume-portal/internal/llm/textcortex"
	"resume-portal/internal/pages"
	"resume-portal/internal/resumes"
	"resume-portal/internal/services/health"
	sharedauth "resume-portal/internal/shared/auth"
	"resume-portal/internal/shared/config"
	"resume-portal/internal/shared/server"
	"resume-portal/internal/shared/server/middleware"
	"resume-portal/internal/shared/storage/db"
	"resume-portal/internal/shared/telemetry"
	"resume-portal/internal/users"
)

const aiAnswerRateGroup = "AI_ANSWER"

// App holds shared dependencies and the wired router.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	SessionStore    sessions.Store
	UsersRepo       users.Repo
	ResumesRepo     resumes.Repo
	Completer       llm.Client
	UsersService    *users.Service
	ResumesService  *resumes.Service
	AccountService  *account.Service
	Policy          *resumes.Policy
	PagesHandler    *pages.Handler
	UsersHandler    *users.Handler
	ResumesHandler  *resumes.Handler
	AccountHandler  *account.Handler
	GoogleAuth      *googleauth.GoogleService
	HealthService   *health.Service
	AIAnswerLimiter *limiter.Limiter
}

// Build prepares dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if err := checkSessionSecret(cfg); err != nil {
		return nil, err
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:       cfg,
		DB:           sqlDB,
		SessionStore: middleware.NewSessionStore(cfg.SessionSecret, cfg.IsProduction()),
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         app.Config,
		SessionStore:   app.SessionStore,
		Health:         app.HealthService,
		PagesHandler:   app.PagesHandler,
		UserHandler:    app.UsersHandler,
		ResumeHandler:  app.ResumesHandler,
		AccountHandler: app.AccountHandler,
		GoogleAuth:     app.GoogleAuth,
	})

	return app, nil
}

func checkSessionSecret(cfg config.Config) error {
	if !cfg.IsProduction() {
		return nil
	}
	secret := strings.TrimSpace(cfg.SessionSecret)
	if secret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	if len(secret) < config.MinSessionSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes", config.MinSessionSecretLength)
	}
	return nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": "database connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildCompleter(cfg config.Config) (llm.Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		telemetry.Warn("bootstrap.completion_disabled", map[string]any{"reason": "API_KEY empty"})
		return llm.PlaceholderClient{}, nil
	}
	return textcortex.NewClient(cfg.APIKey, cfg.CompletionURL, cfg.CompletionTimeout)
}

func buildServices(app *App) error {
	passwords, err := sharedauth.NewPasswordConfig(app.Config.BcryptCost, app.Config.PasswordPepper)
	if err != nil {
		return err
	}

	completer, err := buildCompleter(app.Config)
	if err != nil {
		return err
	}

	var userRepo users.Repo
	var resumeRepo resumes.Repo
	if app.DB != nil {
		userRepo = &users.PGRepo{DB: app.DB}
		resumeRepo = &resumes.PGRepo{DB: app.DB}
	} else {
		memUsers := users.NewMemoryRepo()
		userRepo = memUsers
		resumeRepo = resumes.NewMemoryRepo(memUsers)
	}

	userSvc := users.NewService(userRepo, passwords)
	resumeSvc := resumes.NewService(resumeRepo, userSvc, completer)
	policy := resumes.NewPolicy(resumeRepo)
	googleAuthSvc := googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		userSvc,
	)

	var askLimit gin.HandlerFunc
	if app.Config.AIRatePerMinute > 0 && app.Config.AIRateBurst > 0 {
		app.AIAnswerLimiter = middleware.NewRateLimiter(
			middleware.PerMinute(app.Config.AIRatePerMinute, app.Config.AIRateBurst),
		)
		askLimit = middleware.RateLimit(middleware.RateLimitConfig{
			Group:   aiAnswerRateGroup,
			Limiter: app.AIAnswerLimiter,
		})
	}

	app.UsersRepo = userRepo
	app.ResumesRepo = resumeRepo
	app.Completer = completer
	app.UsersService = userSvc
	app.ResumesService = resumeSvc
	app.AccountService = account.NewService(userSvc)
	app.Policy = policy
	app.PagesHandler = pages.NewHandler(userSvc)
	app.UsersHandler = users.NewHandler(userSvc)
	app.ResumesHandler = resumes.NewHandler(resumeSvc, policy, askLimit)
	app.AccountHandler = account.NewHandler(app.AccountService, googleAuthSvc.Enabled())
	app.GoogleAuth = googleAuthSvc
	app.HealthService = health.NewService(app.DB, db.OptionsFromEnv(db.DefaultServerOptions()).PingTimeout)

	return nil
}
