package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/gymvisits/api"
	"github.com/Domenick1991/gymvisits/config"
	"github.com/Domenick1991/gymvisits/internal/repository"
	"github.com/Domenick1991/gymvisits/internal/service/admission"
	"github.com/Domenick1991/gymvisits/internal/service/branches"
	"github.com/Domenick1991/gymvisits/internal/service/reviews"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Run starts the HTTP server and blocks until the context is canceled or
// the server fails.
func Run(
	ctx context.Context,
	cfg *config.Config,
	log zerolog.Logger,
	admissionSvc admission.AdmissionUseCase,
	reviewSvc reviews.ReviewUseCase,
	branchSvc branches.BranchUseCase,
	wallets repository.WalletRepository,
) error {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	v1 := router.Group("/api/v1")
	api.NewVisitHandler(admissionSvc).Register(v1)
	api.NewReviewHandler(reviewSvc).Register(v1)
	api.NewBranchHandler(branchSvc).Register(v1)
	api.NewWalletHandler(wallets).Register(v1)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}
