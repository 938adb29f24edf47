package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hcissey0/lecture-notes-app/internal/config"
	"github.com/hcissey0/lecture-notes-app/internal/db"
	"github.com/hcissey0/lecture-notes-app/internal/markdown"
	"github.com/hcissey0/lecture-notes-app/internal/repository"
	"github.com/hcissey0/lecture-notes-app/internal/service"
	"github.com/hcissey0/lecture-notes-app/internal/storage"
	"github.com/hcissey0/lecture-notes-app/internal/validation"
)

type App struct {
	Cfg            *config.Config
	DB             *sqlx.DB
	Storage        storage.Storage
	Notes          repository.NoteRepository
	Profiles       repository.ProfileRepository
	AuthService    *service.AuthService
	SessionService *service.SessionService
	ProfileService *service.ProfileService
	NoteService    *service.NoteService
	EmailService   *service.EmailService
}

// New opens the database and storage backend named by cfg and wires the
// services.
func New(cfg *config.Config) (*App, error) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.AutoMigrate {
		err = db.RunMigrations(database.DB, cfg.DBDriver)
		if err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	fileStorage, err := storage.New(cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	a, err := Build(cfg, database, fileStorage)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	return a, nil
}

// Build wires the services over an open database and storage backend. It
// refuses to start when the schema lacks the note counter columns.
func Build(cfg *config.Config, database *sqlx.DB, fileStorage storage.Storage) (*App, error) {
	// Repositories
	noteRepository := repository.NewNoteRepository(database)
	profileRepository := repository.NewProfileRepository(database)

	err := noteRepository.VerifyCounters(context.Background())
	if err != nil {
		return nil, fmt.Errorf("notes schema is not usable, run migrations: %w", err)
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(cfg.JWTSecret, cfg.IsProduction(), cfg.JWTExpiry)
	sessionService := service.NewSessionService(profileRepository, emailService)
	profileService := service.NewProfileService(profileRepository)

	constraints := validation.NoteConstraints
	if cfg.MaxUploadSize > 0 {
		constraints = constraints.WithMaxSize(cfg.MaxUploadSize)
	}
	noteService := service.NewNoteService(
		noteRepository,
		fileStorage,
		sessionService,
		emailService,
		markdown.NewParser(),
		constraints,
		cfg.PreviewURLTTL,
	)

	return &App{
		Cfg:            cfg,
		DB:             database,
		Storage:        fileStorage,
		Notes:          noteRepository,
		Profiles:       profileRepository,
		AuthService:    authService,
		SessionService: sessionService,
		ProfileService: profileService,
		NoteService:    noteService,
		EmailService:   emailService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return db.Close(a.DB)
	}
	return nil
}
