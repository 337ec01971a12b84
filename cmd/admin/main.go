package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"portfolio-api/internal/core/config"
	"portfolio-api/internal/core/database"
	"portfolio-api/internal/core/logger"
	"portfolio-api/internal/repo"
	"portfolio-api/internal/seed"
	"portfolio-api/internal/service"
)

const usage = `usage: admin <command> [flags]

commands:
  create-admin -email E -name N -password P   create an admin, or promote an existing user
  seed                                        insert the sample projects into an empty table
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	db := mustOpenDB(cfg, log)
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("automigrate failed", zap.Error(err))
	}

	switch cmd {
	case "create-admin":
		err = createAdmin(ctx, db, log, args)
	case "seed":
		err = seedProjects(ctx, db, log)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Error(cmd+" failed", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
}

func createAdmin(ctx context.Context, db *gorm.DB, log *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	email := fs.String("email", "", "admin email")
	name := fs.String("name", "Admin", "display name")
	password := fs.String("password", "", "password (ignored when promoting)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return fmt.Errorf("-email is required")
	}

	// 令牌与吊销名单用不到
	svc := service.NewAuthService(repo.NewUserRepo(db), nil, nil)
	u, created, err := svc.EnsureAdmin(ctx, service.RegisterInput{Name: *name, Email: *email, Password: *password})
	if err != nil {
		return err
	}
	if created {
		log.Info("admin created", zap.String("id", u.ID), zap.String("email", u.Email))
	} else {
		log.Info("user is admin", zap.String("id", u.ID), zap.String("email", u.Email))
	}
	return nil
}

func seedProjects(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	projects := repo.NewProjectRepo(db)
	svc := service.NewProjectService(projects)
	n, err := seed.Projects(ctx, projects, seed.CreatorFunc(func(ctx context.Context, in service.ProjectInput) error {
		_, err := svc.Create(ctx, in)
		return err
	}))
	if err != nil {
		return err
	}
	if n == 0 {
		log.Info("projects table not empty, seed skipped")
		return nil
	}
	log.Info("sample projects inserted", zap.Int("count", n))
	return nil
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	w, err := logger.ToStdLogger(l.Named("gorm"), zapcore.WarnLevel)
	if err != nil {
		l.Fatal("gorm logger", zap.Error(err))
	}
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Writer:             w,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	l.Info("database connected", zap.String("driver", cfg.DB.Driver), zap.String("dsn", database.MaskDSN(cfg.DB.DSN)))
	return db
}
