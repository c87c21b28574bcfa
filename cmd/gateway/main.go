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

// Command gateway runs the Terrazzo gateway: the browser-facing HTTP
// API, the asset server, and the reverse-tunnel endpoint agents dial
// into.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gravitational/kingpin"
	"github.com/gravitational/trace"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField(trace.Component, "gateway")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.WithError(err).Error("gateway exited with error")
		os.Exit(1)
	}
}

// flags holds every CLI-configurable option for the "run" command.
type flags struct {
	Listen        string
	DataDir       string
	Domain        string
	AcmeDirectory string
	Debug         bool
}

func run(ctx context.Context, args []string) error {
	app := kingpin.New("gateway", "Terrazzo gateway: terminal API, asset server and reverse-tunnel endpoint.")
	app.HelpFlag.Short('h')

	var f flags
	runCmd := app.Command("run", "Run the gateway.")
	runCmd.Flag("listen", "Address to listen on").Default("0.0.0.0:443").StringVar(&f.Listen)
	runCmd.Flag("data-dir", "Directory holding the root CA and ACME state").Default("/var/lib/terrazzo").StringVar(&f.DataDir)
	runCmd.Flag("domain", "Public domain name the gateway serves, used for ACME").Required().StringVar(&f.Domain)
	runCmd.Flag("acme-directory", "ACME directory URL").Default("https://acme-v02.api.letsencrypt.org/directory").StringVar(&f.AcmeDirectory)
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
