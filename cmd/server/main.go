package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	users "github.com/mvelaz/go-users"
)

type logrusAdapter struct {
	log *logrus.Logger
}

func (l logrusAdapter) Debug(format string, args ...any) { l.log.Debugf(format, args...) }
func (l logrusAdapter) Info(format string, args ...any)  { l.log.Infof(format, args...) }
func (l logrusAdapter) Warn(format string, args ...any)  { l.log.Warnf(format, args...) }
func (l logrusAdapter) Error(format string, args ...any) { l.log.Errorf(format, args...) }

func loadConfig() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("database.dsn", "file:users.db?_pragma=foreign_keys(1)")
	v.SetDefault("log.level", "info")
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "noreply@my-app.com")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("USERS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional; env vars and defaults cover everything.
	_ = v.ReadInConfig()

	return v
}

func main() {
	cfg := loadConfig()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(cfg.GetString("log.level")); err == nil {
		log.SetLevel(level)
	}
	logger := logrusAdapter{log: log}

	localizer, err := users.NewLocalizer()
	if err != nil {
		log.Fatalf("localizer: %v", err)
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.GetString("database.dsn"))
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	if err := users.CreateSchema(context.Background(), db); err != nil {
		log.Fatalf("create schema: %v", err)
	}

	repo := users.NewRepositoryManager(db)
	if err := repo.Validate(); err != nil {
		log.Fatalf("repositories: %v", err)
	}

	var notifier users.Notifier
	if host := cfg.GetString("smtp.host"); host != "" {
		notifier, err = users.NewSMTPNotifier(users.SMTPConfig{
			Host:     host,
			Port:     cfg.GetInt("smtp.port"),
			Username: cfg.GetString("smtp.username"),
			Password: cfg.GetString("smtp.password"),
			From:     cfg.GetString("smtp.from"),
			BaseURL:  cfg.GetString("server.base_url"),
		})
		if err != nil {
			log.Fatalf("smtp notifier: %v", err)
		}
	} else {
		notifier = users.LogNotifier{
			Logger: logger,
			Base:   cfg.GetString("server.base_url"),
		}
	}

	auther := users.NewAuthenticator(repo).WithLogger(logger)
	registerer := users.NewRegisterUserHandler(repo, notifier).WithLogger(logger)
	activator := users.NewActivateAccountHandler(repo).WithLogger(logger)

	app := fiber.New(fiber.Config{
		AppName:      "go-users",
		ErrorHandler: users.NewErrorHandler(localizer, logger),
	})

	controller := users.NewUsersController(repo, auther, registerer, activator, localizer).
		WithLogger(logger)
	controller.RegisterRoutes(app)

	go func() {
		addr := cfg.GetString("server.addr")
		log.Infof("listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	waitExitSignal()

	log.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}

func waitExitSignal() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}
