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

// Command agent dials out to a Terrazzo gateway and exposes this
// host's terminals over the resulting reverse tunnel.
package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gravitational/kingpin"
	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"

	"github.com/terrazzo-project/terrazzo/internal/tunnelclient"
	"github.com/terrazzo-project/terrazzo/internal/tunnelcommon"
)

var log = logrus.WithField(trace.Component, "agent")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.WithError(err).Error("agent exited with error")
		os.Exit(1)
	}
}

type flags struct {
	Gateway    string
	ClientName string
	AuthCode   string
	DataDir    string
	TrustFile  string
	Debug      bool
}

func run(ctx context.Context, args []string) error {
	app := kingpin.New("agent", "Terrazzo agent: exposes this host's terminals over a reverse tunnel to a gateway.")
	app.HelpFlag.Short('h')

	var f flags
	runCmd := app.Command("run", "Connect to the gateway and serve terminals.")
	runCmd.Flag("gateway", "Gateway base URL, e.g. https://gateway.example.com").Required().StringVar(&f.Gateway)
	runCmd.Flag("client-name", "Name this agent presents to the gateway").Required().StringVar(&f.ClientName)
	runCmd.Flag("auth-code", "Enrollment auth code, required only the first time this agent connects").StringVar(&f.AuthCode)
	runCmd.Flag("data-dir", "Directory holding this agent's key and issued certificate").Default("/var/lib/terrazzo-agent").StringVar(&f.DataDir)
	runCmd.Flag("trust-bundle", "PEM file of trust roots, if not using the gateway's own root CA discovery").StringVar(&f.TrustFile)
	runCmd.Flag("debug", "Enable verbose logging").BoolVar(&f.Debug)

	command, err := app.Parse(args)
	if err != nil {
		return trace.Wrap(err)
	}
	if f.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	switch command {
	case runCmd.FullCommand():
		return trace.Wrap(onRun(ctx, f))
	}
	return trace.BadParameter("unrecognized command %q", command)
}

func onRun(ctx context.Context, f flags) error {
	identity, err := tunnelclient.LoadOrEnroll(f.Gateway, f.ClientName, f.AuthCode, f.DataDir)
	if err != nil {
		return trace.Wrap(err, "establish agent identity")
	}

	trust, err := loadTrust(f)
	if err != nil {
		return trace.Wrap(err)
	}

	retry := tunnelcommon.Fixed(time.Second).ExponentialBackoff(1.6, 30*time.Second)
	dialer := &tunnelclient.Dialer{
		GatewayURL: f.Gateway,
		ClientName: f.ClientName,
		Identity:   identity,
		Trust:      trust,
		Retry:      retry,
	}

	log.WithField("gateway", f.Gateway).WithField("client", f.ClientName).Info("agent connecting")
	return trace.Wrap(dialer.Run(ctx))
}

// loadTrust returns the agent's trust store: an explicit --trust-bundle
// file if one was given, otherwise the gateway's own root CA fetched
// over GET /remote/ca, the either-configuration from spec.md §4.4.
func loadTrust(f flags) (tunnelcommon.TrustStore, error) {
	if f.TrustFile != "" {
		data, err := os.ReadFile(f.TrustFile)
		if err != nil {
			return nil, trace.Wrap(err, "read trust bundle")
		}
		bundle, err := tunnelcommon.NewPEMBundle(data)
		if err != nil {
			return nil, trace.Wrap(err)
		}
		return bundle, nil
	}

	resp, err := http.Get(f.Gateway + "/remote/ca")
	if err != nil {
		return nil, trace.ConnectionProblem(err, "fetch gateway root CA")
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, trace.Wrap(err, "read gateway root CA")
	}
	bundle, err := tunnelcommon.NewPEMBundle(data)
	if err != nil {
		return nil, trace.Wrap(err, "parse gateway root CA")
	}
	return bundle, nil
}
