// Package api exposes the searcher over HTTP and provides a client for it.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bitfsorg/slugline/internal/log"
	"github.com/bitfsorg/slugline/network"
	"github.com/bitfsorg/slugline/searcher"
)

// Processor is the searcher pipeline the server drives.
type Processor interface {
	Process(ctx context.Context, encoded string) (*searcher.Result, error)
	Health(ctx context.Context) (*network.NetworkInfo, error)
}

// Server is the searcher's HTTP front end.
type Server struct {
	proc   Processor
	engine *gin.Engine
	http   *http.Server
}

// NewServer builds a Server listening on addr.
func NewServer(addr string, proc Processor) (*Server, error) {
	if err := SetupCustomValidators(); err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), RequestLogger())

	s := &Server{
		proc:   proc,
		engine: engine,
		http: &http.Server{
			Addr:              addr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	engine.POST("/submit-psbt", ValidateInput[SubmitRequest](), s.submitPSBT)
	engine.GET("/health", s.health)
	return s, nil
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves until Shutdown is called.
func (s *Server) ListenAndServe() error {
	log.Infow("searcher listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) submitPSBT(c *gin.Context) {
	req := GetInput[SubmitRequest](c)

	res, err := s.proc.Process(c.Request.Context(), req.PSBT)
	if err != nil {
		kind := searcher.KindOf(err)
		body := &ErrorBody{Kind: kind, Message: err.Error()}
		var rejected *searcher.PackageRejectedError
		if errors.As(err, &rejected) {
			body.TxID = rejected.TxID
			body.Message = rejected.Message
		}
		SendErrorResponse(c, statusFor(kind), body)
		return
	}

	SendResponse(c, http.StatusOK, SubmitResponse{
		Success:      true,
		Message:      "Package submitted successfully",
		PackageTxIDs: []string{res.ParentTxID, res.ChildTxID},
		Fee:          res.Fee,
	})
}

func (s *Server) health(c *gin.Context) {
	info, err := s.proc.Health(c.Request.Context())
	if err != nil {
		SendResponse(c, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Error: err.Error()})
		return
	}
	SendResponse(c, http.StatusOK, HealthResponse{Status: "ok", Node: info.Subversion})
}
