// Package httpapi exposes a read-only JSON view of orders for operators.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/example/orderbot/internal/apperr"
	"github.com/example/orderbot/internal/ports/primary"
)

const shutdownTimeout = 5 * time.Second

// orderView is the JSON shape of an order.
type orderView struct {
	ID        int64      `json:"id"`
	ThreadKey string     `json:"thread_key"`
	CreatorID string     `json:"creator_id"`
	Completed bool       `json:"completed"`
	CreatedAt string     `json:"created_at"`
	Items     []itemView `json:"items,omitempty"`
	Report    string     `json:"report,omitempty"`
}

type itemView struct {
	ProductName string `json:"product_name"`
	Quantity    int32  `json:"quantity"`
	Progress    int32  `json:"progress"`
	Completed   bool   `json:"completed"`
}

// Setup registers all HTTP routes.
func Setup(r *gin.Engine, orders primary.OrderService, directory primary.OrderDirectory, summaries primary.SummaryService) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "pong"})
	})
	r.GET("/api/orders", listOrders(orders))
	r.GET("/api/orders/:thread_key", getOrder(orders, directory, summaries))
}

// listOrders lists open orders, or all of them with ?all=true.
func listOrders(orders primary.OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		all := false
		if v := c.Query("all"); v != "" {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "all must be a boolean"})
				return
			}
			all = parsed
		}

		list, err := orders.ListOrders(c.Request.Context(), all)
		if err != nil {
			writeError(c, err)
			return
		}

		views := make([]orderView, 0, len(list))
		for _, o := range list {
			views = append(views, toView(o))
		}
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": views})
	}
}

// getOrder returns the order bound to a thread, with items and the rendered report.
func getOrder(orders primary.OrderService, directory primary.OrderDirectory, summaries primary.SummaryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		threadKey := c.Param("thread_key")

		orderID, ok, err := directory.Resolve(ctx, threadKey)
		if err != nil {
			writeError(c, err)
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": apperr.ErrNoOrderInThread().Message})
			return
		}

		o, err := orders.GetOrder(ctx, orderID)
		if err != nil {
			writeError(c, err)
			return
		}
		report, err := summaries.Render(ctx, orderID)
		if err != nil {
			writeError(c, err)
			return
		}

		view := toView(o)
		view.Report = report
		c.JSON(http.StatusOK, gin.H{"code": 0, "data": view})
	}
}

func toView(o *primary.Order) orderView {
	v := orderView{
		ID:        o.ID,
		ThreadKey: o.ThreadKey,
		CreatorID: o.CreatorID,
		Completed: o.Completed,
		CreatedAt: o.CreatedAt,
	}
	for _, it := range o.Items {
		v.Items = append(v.Items, itemView{
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Progress:    it.Progress,
			Completed:   it.Completed,
		})
	}
	return v
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindAuthorization:
		status = http.StatusForbidden
	case apperr.KindCollaborator:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"code": status, "msg": apperr.UserMessage(err)})
}

// Server runs the API until its context is cancelled.
type Server struct {
	srv    *http.Server
	logger zerolog.Logger
}

// NewServer builds a release-mode engine with the order routes.
func NewServer(addr string, orders primary.OrderService, directory primary.OrderDirectory, summaries primary.SummaryService, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))
	Setup(r, orders, directory, summaries)

	return &Server{
		srv:    &http.Server{Addr: addr, Handler: r},
		logger: logger,
	}
}

// Run listens until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.srv.Addr).Msg("http api listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}
