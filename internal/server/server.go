package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/cosmos/cosmos-sdk/telemetry"

	photonerrors "github.com/Chiplis/Photon-solana-contracts/internal/errors"
	"github.com/Chiplis/Photon-solana-contracts/internal/validate"
	"github.com/Chiplis/Photon-solana-contracts/modules/gov/types"
)

const shutdownTimeout = 5 * time.Second

// Querier reads the protocol registry.
type Querier interface {
	ProtocolInfo(protocolID types.ProtocolID) (types.ProtocolInfo, bool, error)
	Protocols() ([]types.GenesisProtocol, error)
	Params() (types.Params, error)
	Height() int64
}

// ProtocolResponse is the body of a single registry entry query.
type ProtocolResponse struct {
	ProtocolID types.ProtocolID   `json:"protocol_id"`
	Info       types.ProtocolInfo `json:"info"`
	Height     int64              `json:"height"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewRouter registers the registry query routes, and the metrics route when metrics
// is not nil.
func NewRouter(querier Querier, metrics *telemetry.Metrics) *mux.Router {
	rtr := mux.NewRouter()

	rtr.HandleFunc("/protocols", protocolsHandler(querier)).Methods(http.MethodGet)
	rtr.HandleFunc("/protocols/{id}", protocolHandler(querier)).Methods(http.MethodGet)
	rtr.HandleFunc("/params", paramsHandler(querier)).Methods(http.MethodGet)
	if metrics != nil {
		rtr.HandleFunc("/metrics", metricsHandler(metrics)).Methods(http.MethodGet)
	}

	return rtr
}

func protocolHandler(querier Querier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		protocolID, err := validate.ProtocolRequest(mux.Vars(r)["id"])
		if err != nil {
			writeError(w, err)
			return
		}

		info, found, err := querier.ProtocolInfo(protocolID)
		if err != nil {
			writeError(w, err)
			return
		}
		if !found {
			writeErrorResponse(w, http.StatusNotFound, fmt.Sprintf("protocol %s not found", protocolID))
			return
		}

		writeJSON(w, http.StatusOK, ProtocolResponse{ProtocolID: protocolID, Info: info, Height: querier.Height()})
	}
}

func protocolsHandler(querier Querier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		protocols, err := querier.Protocols()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, protocols)
	}
}

func paramsHandler(querier Querier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := querier.Params()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, params)
	}
}

func metricsHandler(metrics *telemetry.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format := strings.TrimSpace(r.FormValue("format"))

		gr, err := metrics.Gather(format)
		if err != nil {
			writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("failed to gather metrics: %s", err))
			return
		}

		w.Header().Set("Content-Type", gr.ContentType)
		_, _ = w.Write(gr.Metrics)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrInvalidProtocolIdentity):
		status = http.StatusBadRequest
	case errors.Is(err, photonerrors.ErrLedgerClosed):
		status = http.StatusServiceUnavailable
	}
	writeErrorResponse(w, status, err.Error())
}

func writeErrorResponse(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	bz, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		bz = []byte(`{"error":"failed to encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(bz)
}

// Server serves a router until its context is cancelled.
type Server struct {
	srv    *http.Server
	logger log.Logger
}

// New creates a Server listening on addr.
func New(addr string, handler http.Handler, logger log.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger.With("module", "server"),
	}
}

// Start listens and serves until ctx is done, then shuts the server down.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving registry API", "address", ln.Addr().String())
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}
