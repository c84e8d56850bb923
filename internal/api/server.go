// Package api exposes the pool engine over HTTP.
package api

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"pairSwap/internal/amm"
)

// Funder credits and reads custody accounts.
type Funder interface {
	Deposit(ctx context.Context, asset, holder common.Address, amount *big.Int) error
	Balance(ctx context.Context, asset, holder common.Address) (*big.Int, error)
}

// Options configures the optional surfaces of the server.
type Options struct {
	Faucet  bool
	Journal string
}

type Server struct {
	// mu serializes engine calls; the engine rejects overlapping operations.
	mu       sync.Mutex
	engine   *amm.Engine
	funder   Funder
	opts     Options
	logger   *zap.Logger
	metrics  *Metrics
	registry *prometheus.Registry
}

func NewServer(engine *amm.Engine, funder Funder, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := prometheus.NewRegistry()
	return &Server{
		engine:   engine,
		funder:   funder,
		opts:     opts,
		logger:   logger,
		metrics:  NewMetrics(registry),
		registry: registry,
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.observe())

	routes := router.Group("/", s.serialize())
	routes.GET("/pool", s.getPool)
	routes.GET("/shares/:holder", s.getShares)
	routes.GET("/balances/:holder", s.getBalances)
	routes.GET("/price", s.getPrice)
	routes.GET("/quote", s.getQuote)
	routes.GET("/operations", s.getOperations)
	routes.POST("/provide", s.provide)
	routes.POST("/withdraw", s.withdraw)
	routes.POST("/swap", s.swap)
	if s.opts.Faucet {
		routes.POST("/fund", s.fund)
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	return router
}

// Serve runs the HTTP server until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.refreshGauges(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		s.metrics.Requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
		s.logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("elapsed", elapsed),
		)
	}
}

// serialize runs one pool request at a time.
func (s *Server) serialize() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) refreshGauges(ctx context.Context) {
	s.metrics.TotalShares.Set(toFloat(s.engine.TotalShares()))
	rx, ry, err := s.engine.Reserves(ctx)
	if err != nil {
		s.logger.Warn("read reserves for metrics", zap.Error(err))
		return
	}
	x, y := s.engine.Pair()
	s.metrics.Reserves.WithLabelValues(x.Hex()).Set(toFloat(rx))
	s.metrics.Reserves.WithLabelValues(y.Hex()).Set(toFloat(ry))
}

func (s *Server) countOperation(op string, err error) {
	result := "ok"
	if err != nil {
		result = amm.KindOf(err).String()
	}
	s.metrics.Operations.WithLabelValues(op, result).Inc()
}

// statusFor maps an engine error kind onto an HTTP status.
func statusFor(err error) int {
	if errors.Is(err, amm.ErrReentrant) {
		return http.StatusInternalServerError
	}
	switch amm.KindOf(err) {
	case amm.KindValidation:
		return http.StatusBadRequest
	case amm.KindSlippage:
		return http.StatusConflict
	case amm.KindInsufficientState:
		return http.StatusUnprocessableEntity
	case amm.KindCollaborator:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, errorResponse{Error: err.Error(), Kind: amm.KindOf(err).String()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: amm.KindValidation.String()})
}

func toFloat(v *big.Int) float64 {
	f, _ := new(big.Float).SetInt(v).Float64()
	return f
}
