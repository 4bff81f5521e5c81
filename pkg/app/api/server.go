// Package api implements app.Runner for the API server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apphttp "github.com/chainsafe/canton-backing/pkg/app/http"
	"github.com/chainsafe/canton-backing/pkg/auth"
	backingservice "github.com/chainsafe/canton-backing/pkg/backing/service"
	campaignservice "github.com/chainsafe/canton-backing/pkg/campaign/service"
	"github.com/chainsafe/canton-backing/pkg/canton"
	"github.com/chainsafe/canton-backing/pkg/config"
	entityservice "github.com/chainsafe/canton-backing/pkg/entity/service"
	interestservice "github.com/chainsafe/canton-backing/pkg/interest/service"
	inviteservice "github.com/chainsafe/canton-backing/pkg/invite/service"
	"github.com/chainsafe/canton-backing/pkg/fundingstore"
	"github.com/chainsafe/canton-backing/pkg/pgutil"
	"github.com/chainsafe/canton-backing/pkg/recalc"
	"github.com/chainsafe/canton-backing/pkg/sweeper"
)

const defaultRequestTimeout = 60

// Server holds cfg to init the api server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes new api server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("api server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting API server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() { _ = db.Close() }()

	store := fundingstore.NewStore(db)
	cantonClient := canton.NewClient(&cfg.Canton, logger)

	entitySvc := entityservice.NewLog(
		entityservice.NewService(store, cantonClient, logger), logger)
	campaignSvc := campaignservice.NewLog(
		campaignservice.NewService(store, logger), logger)
	interestSvc := interestservice.NewLog(
		interestservice.NewService(store, logger), logger)
	inviteSvc := inviteservice.NewLog(
		inviteservice.NewService(store, cantonClient, logger), logger)
	backingSvc := backingservice.NewLog(
		backingservice.NewService(store, cfg.Backing.UnlockPeriod(), logger), logger)

	stopJobs := s.startBackgroundJobs(store, backingSvc, logger)
	defer stopJobs()

	router := s.setupRouter(entitySvc, campaignSvc, interestSvc, inviteSvc, backingSvc, logger)

	err = apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)

	// Stop background work before deferred DB closes kick in.
	stopJobs()

	return err
}

func (s *Server) startBackgroundJobs(
	store fundingstore.Store,
	backings backingservice.Service,
	logger *zap.Logger,
) func() {
	var stoppers []func()

	if s.cfg.Sweep.Enabled && s.cfg.Sweep.Interval > 0 {
		sw := sweeper.New(backings, store, logger)
		sw.Start(s.cfg.Sweep.Interval)
		stoppers = append(stoppers, sw.Stop)
	}

	if s.cfg.Reconciliation.Enabled && s.cfg.Reconciliation.Interval > 0 {
		rc := recalc.New(store, logger)
		rc.StartPeriodic(s.cfg.Reconciliation.Interval)
		stoppers = append(stoppers, rc.Stop)
	}

	var stopped bool
	return func() {
		if stopped {
			return
		}
		stopped = true
		for _, stop := range stoppers {
			stop()
		}
	}
}

func (s *Server) setupRouter(
	entitySvc entityservice.Service,
	campaignSvc campaignservice.Service,
	interestSvc interestservice.Service,
	inviteSvc inviteservice.Service,
	backingSvc backingservice.Service,
	logger *zap.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Second * defaultRequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if s.cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	validator := auth.NewJWTValidator(s.cfg.JWKS.URL, s.cfg.JWKS.Issuer)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(validator))

		entityservice.RegisterRoutes(r, entitySvc, logger)
		campaignservice.RegisterRoutes(r, campaignSvc, logger)
		interestservice.RegisterRoutes(r, interestSvc, logger)
		inviteservice.RegisterRoutes(r, inviteSvc, logger)
		backingservice.RegisterRoutes(r, backingSvc, logger)
	})

	return r
}
