/*
 * Copyright © 2025 Kaleido, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
 * the License. You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
 * an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations under the License.
 *
 * SPDX-License-Identifier: Apache-2.0
 */

package metricsserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/internal/msgs"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/config"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/confutil"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/log"
	"github.com/gorilla/mux"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type MetricsServer interface {
	Start() error
	Stop()
	Addr() net.Addr
}

var _ MetricsServer = &metricsServer{}

type metricsServer struct {
	ctx             context.Context
	listener        net.Listener
	httpServer      *http.Server
	httpServerDone  chan error
	shutdownTimeout time.Duration
	started         bool
}

// NewMetricsServer listens straight away when enabled, so Addr is known before Start.
// When disabled, Start and Stop do nothing.
func NewMetricsServer(ctx context.Context, registry *prometheus.Registry, conf *config.MetricsConfig) (_ *metricsServer, err error) {
	s := &metricsServer{
		ctx:             log.WithLogField(ctx, "role", "metrics-server"),
		httpServerDone:  make(chan error, 1),
		shutdownTimeout: confutil.DurationMin(conf.ShutdownTimeout, 0, *config.MetricsDefaults.ShutdownTimeout),
	}
	if !confutil.Bool(conf.Enabled, *config.MetricsDefaults.Enabled) {
		return s, nil
	}

	listenAddr := confutil.StringNotEmpty(conf.Address, *config.MetricsDefaults.Address)
	if s.listener, err = net.Listen("tcp", listenAddr); err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgMetricsServerStartFailed, listenAddr)
	}
	log.L(s.ctx).Infof("Metrics server listening on %s", s.listener.Addr())

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	s.httpServer = &http.Server{
		Handler:           s.withLog(r),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *metricsServer) withLog(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		startTime := time.Now()
		log.L(s.ctx).Debugf("--> %s %s", req.Method, req.URL.Path)
		handler.ServeHTTP(res, req)
		log.L(s.ctx).Debugf("<-- %s %s (%.2fms)", req.Method, req.URL.Path, float64(time.Since(startTime))/float64(time.Millisecond))
	})
}

func (s *metricsServer) Addr() (a net.Addr) {
	if s.listener != nil {
		a = s.listener.Addr()
	}
	return a
}

func (s *metricsServer) Start() error {
	if s.httpServer == nil {
		return nil
	}
	s.started = true
	go func() {
		s.httpServerDone <- s.httpServer.Serve(s.listener)
	}()
	return nil
}

func (s *metricsServer) Stop() {
	if s.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.L(s.ctx).Warnf("Metrics server shutdown: %s", err)
	}
	if s.started {
		err := <-s.httpServerDone
		log.L(s.ctx).Debugf("Metrics server stopped: %v", err)
	} else {
		_ = s.listener.Close()
	}
}
