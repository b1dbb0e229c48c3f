// Command server runs the bisaathi API: product verification, the points
// ledger, complaints, and the leaderboard behind one chi router.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	authhandler "bisaathi/internal/auth/handler"
	authservice "bisaathi/internal/auth/service"
	authstore "bisaathi/internal/auth/store"
	complainthandler "bisaathi/internal/complaint/handler"
	complaintservice "bisaathi/internal/complaint/service"
	complaintstore "bisaathi/internal/complaint/store"
	gamifyhandler "bisaathi/internal/gamify/handler"
	gamifyservice "bisaathi/internal/gamify/service"
	gamifystore "bisaathi/internal/gamify/store"
	jwttoken "bisaathi/internal/jwt_token"
	"bisaathi/internal/leaderboard"
	lbhandler "bisaathi/internal/leaderboard/handler"
	"bisaathi/internal/platform/config"
	"bisaathi/internal/platform/httpserver"
	"bisaathi/internal/platform/logger"
	"bisaathi/internal/platform/metrics"
	"bisaathi/internal/platform/middleware"
	platformredis "bisaathi/internal/platform/redis"
	"bisaathi/internal/verify"
	verifyhandler "bisaathi/internal/verify/handler"
	auditpublisher "bisaathi/pkg/platform/audit/publisher"
	auditkafka "bisaathi/pkg/platform/audit/sink/kafka"
	auditmemory "bisaathi/pkg/platform/audit/store/memory"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Storage. Without DATABASE_URL everything runs in memory, which is enough
	// for local development and the e2e tests.
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		log.Info("connected to postgres")
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		log.Info("connected to redis")
	}

	// Audit pipeline: async publisher over the in-process store, with a Kafka
	// sink when brokers are configured.
	publisherOpts := []auditpublisher.Option{
		auditpublisher.WithAsyncBuffer(256),
		auditpublisher.WithLogger(log),
	}
	var kafkaSink *auditkafka.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err = auditkafka.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		publisherOpts = append(publisherOpts, auditpublisher.WithSink(kafkaSink))
		log.Info("audit sink connected", "topic", cfg.Kafka.Topic)
	}
	auditor := auditpublisher.NewPublisher(auditmemory.NewInMemoryStore(), publisherOpts...)
	defer auditor.Close()

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, "bisaathi", "bisaathi-api")
	validator := jwtValidatorAdapter{tokens}

	// Stores per deployment mode.
	var (
		users         authservice.UserStore
		snapshots     gamifyservice.SnapshotStore
		notifications gamifyservice.NotificationStore
		complaints    complaintservice.Store
		runner        complaintservice.TxRunner
		products      verify.ProductStore
		lbStore       leaderboard.Store
		lbRecorder    gamifyservice.LeaderboardRecorder
	)
	lbOpts := []leaderboard.Option{leaderboard.WithLogger(log)}
	if redisClient != nil {
		lbOpts = append(lbOpts, leaderboard.WithCache(redisClient))
	}
	if db != nil {
		users = authstore.NewPostgres(db)
		snapshots = gamifystore.NewPostgres(db)
		notifications = gamifystore.NewPostgresNotifications(db)
		complaints = complaintstore.NewPostgres(db)
		runner = sqlTxRunner{db}
		products = verify.NewPostgresStore(db)
		lbStore = leaderboard.NewPostgresStore(db)
	} else {
		users = authstore.NewMemory()
		snapshots = gamifystore.NewMemory()
		notifications = gamifystore.NewMemoryNotifications()
		complaints = complaintstore.NewMemory()
		runner = complaintservice.NoTxRunner{}
		products = verify.NewSeededMemoryStore()
		memLB := leaderboard.NewMemoryStore()
		lbStore = memLB
		lbRecorder = memLB
	}

	lbService, err := leaderboard.New(lbStore, lbOpts...)
	if err != nil {
		return err
	}
	if lbRecorder == nil {
		lbRecorder = lbService
	}

	// Services.
	authSvc, err := authservice.New(users, tokens, cfg.JWTTTL,
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(auditor),
	)
	if err != nil {
		return err
	}
	if cfg.OfficerEmail != "" && cfg.OfficerPassword != "" {
		if err := authSvc.EnsureOfficer(ctx, cfg.OfficerEmail, cfg.OfficerPassword); err != nil {
			return fmt.Errorf("bootstrap officer account: %w", err)
		}
	}
	gamifySvc, err := gamifyservice.New(snapshots, notifications,
		gamifyservice.WithLogger(log),
		gamifyservice.WithAuditPublisher(auditor),
		gamifyservice.WithMetrics(m),
		gamifyservice.WithLeaderboard(lbRecorder),
	)
	if err != nil {
		return err
	}
	verifySvc, err := verify.New(products, verify.WithLogger(log), verify.WithRecognizer(verify.TextRecognizer{}))
	if err != nil {
		return err
	}
	complaintSvc, err := complaintservice.New(complaints, runner, gamifySvc,
		complaintservice.WithLogger(log),
		complaintservice.WithAuditPublisher(auditor),
		complaintservice.WithMetrics(m),
		complaintservice.WithRanking(lbStore),
	)
	if err != nil {
		return err
	}

	router := buildRouter(routerDeps{
		log:        log,
		metrics:    m,
		validator:  validator,
		auth:       authhandler.NewHandler(authSvc),
		verify:     verifyhandler.NewHandler(verifySvc, gamifySvc),
		gamify:     gamifyhandler.NewHandler(gamifySvc),
		complaints: complainthandler.NewHandler(complaintSvc),
		board:      lbhandler.NewHandler(lbService),
		health:     healthChecker{db: db, redis: redisClient},
	})

	server := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// jwtValidatorAdapter narrows the token service to what the middleware needs.
type jwtValidatorAdapter struct {
	tokens *jwttoken.JWTService
}

func (a jwtValidatorAdapter) ValidateToken(tokenString string) (*middleware.JWTClaims, error) {
	claims, err := a.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.JWTClaims{UserID: claims.UserID, Role: claims.Role}, nil
}

type healthChecker struct {
	db    *sql.DB
	redis *platformredis.Client
}

func (h healthChecker) check(ctx context.Context) error {
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			return err
		}
	}
	if h.redis != nil {
		if err := h.redis.Health(ctx); err != nil {
			return err
		}
	}
	return nil
}

type routerDeps struct {
	log        *slog.Logger
	metrics    *metrics.Metrics
	validator  middleware.JWTValidator
	auth       *authhandler.Handler
	verify     *verifyhandler.Handler
	gamify     *gamifyhandler.Handler
	complaints *complainthandler.Handler
	board      *lbhandler.Handler
	health     healthChecker
}

func buildRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recovery(deps.log),
		middleware.RequestID,
		middleware.Logger(deps.log),
		middleware.Tracing("bisaathi"),
		middleware.Timeout(30*time.Second),
		middleware.LatencyMiddleware(deps.metrics),
	)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := deps.health.check(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		r.Route("/auth", func(r chi.Router) {
			deps.auth.PublicRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(deps.validator, deps.log))
				deps.auth.UserRoutes(r)
			})
		})

		r.Route("/verify", func(r chi.Router) {
			r.Use(middleware.OptionalAuth(deps.validator))
			deps.verify.Routes(r)
		})

		r.Route("/me", func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.validator, deps.log))
			deps.gamify.Routes(r)
		})

		r.Route("/leaderboard", func(r chi.Router) {
			deps.board.Routes(r)
		})

		r.Route("/complaints", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.OptionalAuth(deps.validator))
				deps.complaints.PublicRoutes(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(deps.validator, deps.log))
				deps.complaints.UserRoutes(r)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(deps.validator, deps.log), middleware.RequireOfficer(deps.log))
				deps.complaints.OfficerRoutes(r)
			})
		})
	})

	return r
}
