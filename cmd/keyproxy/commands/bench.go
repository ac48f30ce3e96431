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

package commands

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/LF-Decentralized-Trust-labs/keyproxy/internal/metricsserver"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/internal/msgs"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/confutil"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keyproxy"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/keystore/keystores"
	"github.com/LF-Decentralized-Trust-labs/keyproxy/pkg/log"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type benchResult struct {
	requests  int
	succeeded atomic.Int64
	queueFull atomic.Int64
	elapsed   time.Duration
}

func benchCmd(a *app) *cobra.Command {
	var requests, concurrency int
	var perSecond float64
	var serveMetrics bool
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Drive signing requests through the proxy and report throughput",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.ctx
			kt, _ := cmd.Flags().GetString("key-type")
			keyType, err := keystore.ParseKeyTypeID(ctx, kt)
			if err != nil {
				return err
			}

			if serveMetrics {
				a.conf.Metrics.Enabled = confutil.P(true)
			}
			ms, err := metricsserver.NewMetricsServer(ctx, a.registry, &a.conf.Metrics)
			if err == nil {
				err = ms.Start()
			}
			if err != nil {
				return err
			}
			defer ms.Stop()

			proxy, err := a.proxy()
			if err != nil {
				return err
			}
			result, err := runBench(a, proxy, keyType, requests, concurrency, perSecond)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "requests=%d succeeded=%d queueFull=%d elapsed=%s throughput=%.1f/s\n",
				result.requests, result.succeeded.Load(), result.queueFull.Load(), result.elapsed,
				float64(result.succeeded.Load())/result.elapsed.Seconds())
			return nil
		},
	}
	cmd.Flags().String("key-type", "bnch", "key type the benchmark key is inserted under")
	cmd.Flags().IntVar(&requests, "requests", 1000, "number of SignWith requests to send")
	cmd.Flags().IntVar(&concurrency, "concurrency", 10, "maximum requests awaiting a response at once")
	cmd.Flags().Float64Var(&perSecond, "rate", 0, "maximum requests per second (0 for unlimited)")
	cmd.Flags().BoolVar(&serveMetrics, "metrics", false, "serve /metrics while the benchmark runs")
	return cmd
}

func runBench(a *app, proxy *keyproxy.Proxy, keyType keystore.KeyTypeID, requests, concurrency int, perSecond float64) (*benchResult, error) {
	ctx := a.ctx
	public, err := keystores.PublicKeyFor(ctx, keystore.CryptoTypeECDSA, "//Alice", a.devPhrase())
	if err == nil {
		err = proxy.Insert(ctx, keyType, "//Alice", public)
	}
	if err != nil {
		return nil, err
	}
	key := keystore.CryptoTypePublicPair{CryptoType: keystore.CryptoTypeECDSA, PublicKey: public}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if perSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
	}
	log.L(ctx).Infof("Sending %d requests: rate=%f burst=%d concurrency=%d", requests, limiter.Limit(), limiter.Burst(), concurrency)

	result := &benchResult{requests: requests}
	start := time.Now()
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, concurrency))
	for i := 0; i < requests; i++ {
		if err := limiter.Wait(gCtx); err != nil {
			break
		}
		g.Go(func() error {
			h := proxy.SignWith(gCtx, keyType, key, []byte(fmt.Sprintf("bench-%d", i)))
			if keyproxy.IsQueueFull(h.Err()) {
				result.queueFull.Add(1)
				return nil
			}
			resp, err := h.Wait(gCtx)
			if err != nil {
				return i18n.NewError(gCtx, msgs.MsgCLIBenchSignFailed, i, err)
			}
			signed, ok := resp.(keyproxy.SignWithResult)
			if !ok {
				return i18n.NewError(gCtx, msgs.MsgUnexpectedResponseType, resp, keyproxy.MethodSignWith)
			}
			if signed.Err != nil {
				return i18n.NewError(gCtx, msgs.MsgCLIBenchSignFailed, i, signed.Err)
			}
			result.succeeded.Add(1)
			return nil
		})
	}
	err = g.Wait()
	result.elapsed = time.Since(start)
	return result, err
}
