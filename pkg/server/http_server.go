// Copyright 2023 Hedgehog
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"
)

var ErrNoCertsAdded = errors.New("httpServer: no certs added to Client CA Pool")

type httpServer struct {
	done           chan struct{}
	err            error
	clientCAPath   string
	serverKeyPath  string
	serverCertPath string
	tlsCfg         *tls.Config
	tlsCfgLock     sync.RWMutex
	srv            *http.Server
}

func newHTTPServer(addr, serverKeyPath, serverCertPath, clientCAPath string, handler http.Handler) *httpServer {
	return &httpServer{
		done:           make(chan struct{}),
		clientCAPath:   clientCAPath,
		serverKeyPath:  serverKeyPath,
		serverCertPath: serverCertPath,
		srv: &http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			// boot agents download firmware bundles through artifact callbacks
			WriteTimeout: 300 * time.Second,
			IdleTimeout:  90 * time.Second,
			Handler:      handler,
		},
	}
}

// tlsConfig will always return an up to date version of the TLS config. This allows us to reload/redo
// TLS configuration and we will serve those immediately to the next connection.
func (s *httpServer) tlsConfig(*tls.ClientHelloInfo) (*tls.Config, error) {
	s.tlsCfgLock.RLock()
	defer s.tlsCfgLock.RUnlock()
	return s.tlsCfg, nil
}

func (s *httpServer) ReloadTLSConfig() error {
	// nothing to do if this is not a TLS server
	if s.serverKeyPath == "" {
		return nil
	}

	cert, err := tls.LoadX509KeyPair(s.serverCertPath, s.serverKeyPath)
	if err != nil {
		return err
	}

	var clientCAPool *x509.CertPool
	if s.clientCAPath != "" {
		b, err := os.ReadFile(s.clientCAPath)
		if err != nil {
			return err
		}
		clientCAPool = x509.NewCertPool()
		if !clientCAPool.AppendCertsFromPEM(b) {
			return ErrNoCertsAdded
		}
	}

	s.tlsCfgLock.Lock()
	defer s.tlsCfgLock.Unlock()
	s.tlsCfg = &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ClientCAs:          clientCAPool,
		ClientAuth:         tls.VerifyClientCertIfGiven,
		Certificates:       []tls.Certificate{cert},
		GetConfigForClient: s.tlsConfig,
	}
	return nil
}

func (s *httpServer) Done() <-chan struct{} {
	return s.done
}

func (s *httpServer) Err() error {
	return s.err
}

func (s *httpServer) Start() {
	// if we cannot make a TLS config at all, we need to abort on startup
	if err := s.ReloadTLSConfig(); err != nil {
		s.err = err
		close(s.done)
		return
	}
	if s.tlsCfg != nil {
		s.srv.TLSConfig = s.tlsCfg
		go s.listenAndServeTLS()
		return
	}
	go s.listenAndServe()
}

func (s *httpServer) listenAndServeTLS() {
	if err := s.srv.ListenAndServeTLS("", ""); err != nil {
		s.err = err
	}
	close(s.done)
}

func (s *httpServer) listenAndServe() {
	if err := s.srv.ListenAndServe(); err != nil {
		s.err = err
	}
	close(s.done)
}

func (s *httpServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *httpServer) Close() error {
	return s.srv.Close()
}
