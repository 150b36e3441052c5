package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/dreamslms/api/internal/config"
	"github.com/dreamslms/api/internal/logging"
	minioRepo "github.com/dreamslms/api/internal/repository/minio"
	"github.com/dreamslms/api/internal/repository/ports"
	"github.com/dreamslms/api/internal/repository/postgres"
	"github.com/dreamslms/api/internal/service"
	httpTransport "github.com/dreamslms/api/internal/transport/http"
	"github.com/dreamslms/api/internal/transport/mail"
	"github.com/dreamslms/api/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Printf("logstash mirror disabled: %v", err)
		} else {
			defer writer.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, writer))
		}
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to postgres: %v", err)
	}
	defer db.Close()

	accounts := postgres.NewAccountRepo(db)
	resets := postgres.NewPasswordResetRepo(db)
	sessions := postgres.NewSessionRepo(db)
	courses := postgres.NewCourseRepo(db)
	enrollments := postgres.NewEnrollmentRepo(db)
	quizzes := postgres.NewQuizRepo(db)

	var storage *minioRepo.Storage
	if cfg.MinIOEndpoint != "" {
		client, err := minioRepo.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
		if err != nil {
			log.Fatalf("connect to minio: %v", err)
		}
		storage = minioRepo.NewStorage(client, cfg.MinIOPublicURL)
	} else {
		log.Println("minio not configured; profile image uploads disabled")
	}

	var mailer *mail.PasswordResetMailer
	if cfg.SMTPHost != "" {
		mailer = mail.NewPasswordResetMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.FrontendBaseURL, cfg.SMTPTimeout)
	} else {
		log.Println("smtp not configured; password reset emails disabled")
	}

	var esClient *elasticsearch.Client
	if cfg.ElasticsearchURL != "" {
		esClient, err = elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{cfg.ElasticsearchURL}})
		if err != nil {
			log.Printf("elasticsearch disabled: %v", err)
			esClient = nil
		}
	}

	tokens := util.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL, cfg.ResetTokenTTL)

	auth := service.NewAuthService(
		accounts, resets, sessions, storageOrNil(storage), mailerOrNil(mailer), tokens,
		cfg.GoogleAudience, cfg.MinIOBucketProfile, cfg.ProfileImageMaxBytes,
		cfg.OTPTTL, cfg.OTPLength,
	)
	dashboards := service.NewDashboardService(accounts, courses, enrollments, quizzes)
	stats := service.NewCourseStatsService(esClient, cfg.CourseViewsIndex, 5*time.Second)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := auth.EnsureAdmin(seedCtx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Printf("admin seeding failed: %v", err)
	}
	cancelSeed()

	e := httpTransport.NewRouter(cfg.AllowOrigins)
	httpTransport.RegisterPages(e)
	httpTransport.RegisterSwagger(e)
	httpTransport.RegisterAuth(e, auth)
	httpTransport.RegisterProfile(e, auth)
	httpTransport.RegisterAdmin(e, auth)
	httpTransport.RegisterDashboards(e, auth, dashboards)
	httpTransport.RegisterCourses(e, auth, courses, stats)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// storageOrNil keeps the service's interface nil when minio is absent
// instead of handing it a typed nil pointer.
func storageOrNil(storage *minioRepo.Storage) ports.ObjectStorage {
	if storage == nil {
		return nil
	}
	return storage
}

func mailerOrNil(mailer *mail.PasswordResetMailer) service.PasswordResetSender {
	if mailer == nil {
		return nil
	}
	return mailer
}
