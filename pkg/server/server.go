// Package server exposes the policy callback router and the vendor model
// resource over HTTP
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.githedgehog.com/provisioner/pkg/engine"
	"go.githedgehog.com/provisioner/pkg/log"
	"go.githedgehog.com/provisioner/pkg/vmodel"
	"go.githedgehog.com/provisioner/pkg/vmodel/fsm"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("server: invalid config")

func invalidConfigError(str string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, str)
}

// Engine is what the HTTP handlers need from the workflow engine
type Engine interface {
	Callback(ctx context.Context, policyID, namespace string, args []string) (string, error)
	MkCall(ctx context.Context, policyID string) (*vmodel.MkCallReply, error)
	BootCall(ctx context.Context, policyID string) (string, error)
	Act(ctx context.Context, id string, action fsm.Action, nodeID string) (*vmodel.VModel, error)
	CreateVModel(ctx context.Context, template, label string, md map[string]any) (*vmodel.VModel, error)
	UpdateVModel(ctx context.Context, id string, label *string, md map[string]any) (*vmodel.VModel, error)
	DeleteVModel(ctx context.Context, id string) error
	GetVModel(ctx context.Context, id string) (*vmodel.VModel, error)
	ListVModels(ctx context.Context) ([]*vmodel.VModel, error)
	Templates() []engine.TemplateInfo
	Template(name string) (*engine.TemplateInfo, error)
}

var _ Engine = &engine.Engine{}

// BindInfo provides all the necessary information for binding to an address and configuring TLS as necessary.
type BindInfo struct {
	// Address is a set of addresses that the server should bind on. At least one address must be provided.
	Address []string

	// ClientCAPath points to a file containing one or more CA certificates that client certificates will be
	// validated against if a client certificate is provided. This setting is ignored if no server key and
	// certificate were provided.
	ClientCAPath string

	// ServerKeyPath points to a file containing the server key used for the TLS server. If this is empty,
	// a plain HTTP server will be initiated.
	ServerKeyPath string

	// ServerCertPath points to a file containing the server certificate used for the TLS server.
	ServerCertPath string
}

// Server runs one HTTP server per bind address, all serving the same routes
type Server struct {
	httpServers []*httpServer
}

// New creates the servers for `b`
func New(b *BindInfo, e Engine) (*Server, error) {
	if b == nil || len(b.Address) == 0 {
		return nil, invalidConfigError("no address in server config")
	}
	if (b.ServerKeyPath != "" && b.ServerCertPath == "") || (b.ServerCertPath != "" && b.ServerKeyPath == "") {
		return nil, invalidConfigError("server key and server cert must always be set together")
	}
	if e == nil {
		return nil, invalidConfigError("no engine")
	}

	handler := Handler(e)
	ret := &Server{}
	for _, addr := range b.Address {
		if addr == "" {
			return nil, invalidConfigError("address must not be empty")
		}
		ret.httpServers = append(ret.httpServers, newHTTPServer(addr, b.ServerKeyPath, b.ServerCertPath, b.ClientCAPath, handler))
	}
	return ret, nil
}

// Start starts all servers in the background
func (s *Server) Start() {
	for _, srv := range s.httpServers {
		srv.Start()
	}
}

// Done returns a channel which receives the error of the first server which stopped
func (s *Server) Done() <-chan error {
	ch := make(chan error, len(s.httpServers))
	for _, srv := range s.httpServers {
		go func(srv *httpServer) {
			<-srv.Done()
			err := srv.Err()
			if err == nil {
				err = http.ErrServerClosed
			}
			ch <- fmt.Errorf("%s: %w", srv.srv.Addr, err)
		}(srv)
	}
	return ch
}

// Stop tries a graceful shutdown first, but closes the servers if the context
// is done or after 30 seconds.
func (s *Server) Stop(pctx context.Context) {
	ctx, cancel := context.WithTimeout(pctx, time.Second*30)
	defer cancel()

	done := make(chan struct{})
	var wg sync.WaitGroup
	for _, srv := range s.httpServers {
		wg.Add(1)
		go func(srv *httpServer) {
			defer wg.Done()
			if err := srv.Shutdown(ctx); err != nil {
				log.L().Warn("graceful shutdown failed", zap.String("address", srv.srv.Addr), zap.Error(err))
			}
		}(srv)
	}
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		for _, srv := range s.httpServers {
			if err := srv.Close(); err != nil {
				log.L().Debug("error on close", zap.String("address", srv.srv.Addr), zap.Error(err))
			}
		}
	case <-done:
	}
}
