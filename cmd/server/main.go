package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	appointmenthandler "healthstack/internal/appointment/handler"
	appointmentservice "healthstack/internal/appointment/service"
	appointmentstore "healthstack/internal/appointment/store"
	authhandler "healthstack/internal/auth/handler"
	authservice "healthstack/internal/auth/service"
	authstore "healthstack/internal/auth/store"
	contactservice "healthstack/internal/contacts/service"
	contactstore "healthstack/internal/contacts/store"
	emergencyhandler "healthstack/internal/emergency/handler"
	notificationhandler "healthstack/internal/notification/handler"
	notificationservice "healthstack/internal/notification/service"
	notificationstore "healthstack/internal/notification/store"
	"healthstack/internal/notify"
	notifymemory "healthstack/internal/notify/memory"
	notifysmtp "healthstack/internal/notify/smtp"
	"healthstack/internal/platform/config"
	"healthstack/internal/platform/httpserver"
	"healthstack/internal/platform/logger"
	"healthstack/internal/platform/metrics"
	"healthstack/internal/platform/postgres"
	platformredis "healthstack/internal/platform/redis"
	presenceservice "healthstack/internal/presence/service"
	presencestore "healthstack/internal/presence/store"
	sosservice "healthstack/internal/sos/service"
	httptransport "healthstack/internal/transport/http"
	wellnesshandler "healthstack/internal/wellness/handler"
	wellnessservice "healthstack/internal/wellness/service"
	wellnessstore "healthstack/internal/wellness/store"
	auditkafka "healthstack/pkg/platform/audit/kafka"
	"healthstack/pkg/platform/audit/publisher"
	auditmemory "healthstack/pkg/platform/audit/store/memory"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	fatal := func(msg string, err error) {
		log.Error(msg, "error", err.Error())
		os.Exit(1)
	}

	db, err := postgres.Open(cfg.Postgres)
	if err != nil {
		fatal("postgres connection failed", err)
	}
	if db != nil {
		defer db.Close()
	} else {
		log.Warn("POSTGRES_DSN unset, using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		fatal("redis connection failed", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	} else {
		log.Warn("REDIS_URL unset, keeping presence in memory")
	}

	m := metrics.New()

	var messenger notify.Messenger
	if mailer := notifysmtp.New(cfg.SMTP); mailer != nil {
		messenger = mailer
	} else {
		log.Warn("SMTP host unset, emails are captured in memory")
		messenger = notifymemory.New()
	}

	var auditSink publisher.Store
	if len(cfg.Kafka.Seeds) > 0 {
		kafkaStore, err := auditkafka.New(cfg.Kafka.Seeds, cfg.Kafka.Topic)
		if err != nil {
			fatal("kafka connection failed", err)
		}
		defer kafkaStore.Close()
		auditSink = kafkaStore
	} else {
		auditSink = auditmemory.NewInMemoryStore()
	}
	auditor := publisher.NewPublisher(auditSink,
		publisher.WithAsyncBuffer(256),
		publisher.WithLogger(log))
	defer auditor.Close()

	var userStore authservice.Store
	var directory sosservice.Directory
	var contactStore contactservice.Store
	var wellnessStore wellnessservice.Store
	var appointmentStore appointmentservice.Store
	var notificationStore notificationservice.Store
	if db != nil {
		users := authstore.NewPostgres(db)
		userStore, directory = users, users
		contactStore = contactstore.NewPostgres(db)
		wellnessStore = wellnessstore.NewPostgres(db)
		appointmentStore = appointmentstore.NewPostgres(db)
		notificationStore = notificationstore.NewPostgres(db)
	} else {
		users := authstore.NewMemory()
		userStore, directory = users, users
		contactStore = contactstore.NewMemory()
		wellnessStore = wellnessstore.NewMemory()
		appointmentStore = appointmentstore.NewMemory()
		notificationStore = notificationstore.NewMemory()
	}

	var presenceStore presenceservice.Store
	if redisClient != nil {
		presenceStore = presencestore.NewRedis(redisClient.Client)
	} else {
		presenceStore = presencestore.NewMemory()
	}

	tokens := authservice.NewTokenManager(cfg.JWTSigningKey, cfg.TokenTTL)

	authSvc, err := authservice.New(userStore, tokens, m, auditor)
	if err != nil {
		fatal("auth service init failed", err)
	}
	contactSvc, err := contactservice.New(contactStore,
		contactservice.WithAuditEmitter(auditor))
	if err != nil {
		fatal("contact service init failed", err)
	}
	presenceSvc, err := presenceservice.New(presenceStore, m)
	if err != nil {
		fatal("presence service init failed", err)
	}
	sosSvc, err := sosservice.New(contactSvc, presenceSvc, messenger, cfg.SOS, log,
		sosservice.WithMetrics(m),
		sosservice.WithAuditEmitter(auditor),
		sosservice.WithDirectory(directory))
	if err != nil {
		fatal("sos service init failed", err)
	}
	wellnessSvc, err := wellnessservice.New(wellnessStore)
	if err != nil {
		fatal("wellness service init failed", err)
	}
	notificationSvc, err := notificationservice.New(notificationStore)
	if err != nil {
		fatal("notification service init failed", err)
	}
	appointmentSvc, err := appointmentservice.New(appointmentStore,
		func(ctx context.Context, userEmail, title, message string) error {
			_, err := notificationSvc.Notify(ctx, userEmail, title, message)
			return err
		},
		log,
		appointmentservice.WithAuditEmitter(auditor))
	if err != nil {
		fatal("appointment service init failed", err)
	}

	checks := map[string]httptransport.HealthChecker{}
	if db != nil {
		checks["postgres"] = httptransport.HealthFunc(db.PingContext)
	}
	if redisClient != nil {
		checks["redis"] = redisClient
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:       log,
		Metrics:      m,
		Messenger:    messenger,
		Auditor:      auditor,
		JWTValidator: tokens,
		Checks:       checks,
		Handlers: []httptransport.Registrar{
			authhandler.New(authSvc, log, m),
			emergencyhandler.New(contactSvc, presenceSvc, sosSvc, log, m, tokens),
			wellnesshandler.New(wellnessSvc, log, m, tokens),
			appointmenthandler.New(appointmentSvc, log, m, tokens),
			notificationhandler.New(notificationSvc, log, m, tokens),
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		fatal("server exited", err)
	}
}
