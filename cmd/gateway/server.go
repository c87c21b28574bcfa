/*
Copyright 2024 Terrazzo Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gravitational/trace"
	"github.com/jonboulle/clockwork"
	"github.com/julienschmidt/httprouter"
	"google.golang.org/grpc"

	"github.com/terrazzo-project/terrazzo/internal/assets"
	"github.com/terrazzo-project/terrazzo/internal/termapi"
	"github.com/terrazzo-project/terrazzo/internal/tunnelcommon"
	"github.com/terrazzo-project/terrazzo/internal/tunnelserver"
)

// poolPicker adapts tunnelserver.ConnectionPool to termapi.ChannelPicker,
// translating its *Channel result down to the bare *grpc.ClientConn
// termapi needs and its plain client name into a tunnelcommon.ClientID.
type poolPicker struct {
	pool *tunnelserver.ConnectionPool
}

func (p poolPicker) Pick(client string) (*grpc.ClientConn, error) {
	ch, err := p.pool.Pick(tunnelcommon.ClientID(client))
	if err != nil {
		return nil, trace.Wrap(err)
	}
	return ch.Conn(), nil
}

func onRun(ctx context.Context, f flags) error {
	ca, err := tunnelserver.LoadOrBootstrapRootCA(f.DataDir)
	if err != nil {
		return trace.Wrap(err, "load root CA")
	}

	authCode := tunnelcommon.NewAuthCode(clockwork.NewRealClock())
	go logAuthCode(ctx, authCode)

	issuance := tunnelserver.NewCertificateIssuance(ca, authCode)
	pool := tunnelserver.NewConnectionPool(clockwork.NewRealClock())
	tunnelHandler := tunnelserver.NewTunnelHandler(pool, ca)
	acmeCfg := tunnelserver.NewAcmeCertificateConfig(f.Domain, f.AcmeDirectory, f.DataDir)

	registry := termapi.NewRegistry()
	termServer := termapi.NewServer(registry, poolPicker{pool: pool})

	assetRegistry := assets.NewRegistry()
	// Built assets (the compiled reactive UI bundle) are installed by
	// the build step; an empty registry still serves /api and /remote
	// correctly, just with no index page.

	router := buildRouter(termServer, issuance, tunnelHandler, ca, assetRegistry)

	listener, err := net.Listen("tcp", f.Listen)
	if err != nil {
		return trace.Wrap(err, "listen on %s", f.Listen)
	}
	demux := tunnelserver.NewDemux(listener)
	defer demux.Close()

	errs := make(chan error, 2)
	go func() { errs <- serveHTTPChallenges(demux.HTTP(), acmeCfg) }()
	go func() { errs <- serveTLS(demux.TLS(), acmeCfg, router) }()

	log.WithField("listen", f.Listen).WithField("domain", f.Domain).Info("gateway started")
	select {
	case <-ctx.Done():
		return nil
	case err := <-errs:
		return trace.Wrap(err)
	}
}

func logAuthCode(ctx context.Context, code *tunnelcommon.AuthCode) {
	log.WithField("auth_code", code.Current()).Info("agent enrollment auth code")
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.WithField("auth_code", code.Current()).Info("agent enrollment auth code rotated")
		}
	}
}

func buildRouter(termServer *termapi.Server, issuance *tunnelserver.CertificateIssuance, tunnelHandler *tunnelserver.TunnelHandler, ca *tunnelserver.RootCA, assetRegistry *assets.Registry) *httprouter.Router {
	router := httprouter.New()
	router.UseRawPath = true

	mountUnder(router, "/api", &termServer.Router)

	router.Handler(http.MethodPost, "/remote/certificate", issuance)
	router.Handler(http.MethodGet, "/remote/ca", ca)
	router.GET("/remote/tunnel/:client", tunnelHandler.Handle)
	router.NotFound = assetRegistry

	return router
}

// mountUnder registers every method+path inner knows about under
// prefix, delegating to inner's own ServeHTTP so termapi.Server keeps
// using the httprouter.Params it was built around.
func mountUnder(outer *httprouter.Router, prefix string, inner http.Handler) {
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete} {
		outer.Handle(method, prefix+"/*rest", stripPrefix(prefix, inner))
	}
}

func stripPrefix(prefix string, inner http.Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		r2 := r.Clone(r.Context())
		r2.URL.Path = strings.TrimPrefix(r.URL.Path, prefix)
		inner.ServeHTTP(w, r2)
	}
}

func serveHTTPChallenges(listener net.Listener, acmeCfg *tunnelserver.AcmeCertificateConfig) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/acme-challenge/", func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.URL.Path, "/.well-known/acme-challenge/")
		keyAuth, err := acmeCfg.Handler(token)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(keyAuth))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		target := "https://" + r.Host + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusMovedPermanently)
	})
	return trace.Wrap((&http.Server{Handler: mux}).Serve(listener))
}

func serveTLS(listener net.Listener, acmeCfg *tunnelserver.AcmeCertificateConfig, router *httprouter.Router) error {
	tlsListener := tls.NewListener(listener, &tls.Config{
		GetCertificate: func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
			return acmeCfg.Certificate()
		},
		MinVersion: tls.VersionTLS12,
	})
	return trace.Wrap((&http.Server{Handler: router}).Serve(tlsListener))
}
