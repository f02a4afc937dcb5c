// Copyright © 2025 Inkbound Contributors
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/inkbound-io/inkbound/internal/api"
	"github.com/inkbound-io/inkbound/internal/config"
	"github.com/inkbound-io/inkbound/internal/docsign"
	"github.com/inkbound-io/inkbound/internal/document"
	"github.com/inkbound-io/inkbound/internal/ethclient"
	"github.com/inkbound-io/inkbound/internal/httpserver"
	"github.com/spf13/cobra"
)

var (
	configFile  string
	environment string
)

var rootCmd = &cobra.Command{
	Use:          "inkbound",
	Short:        "Blockchain document signing service",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the document signing API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "f", "inkbound.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&environment, "environment", "e", "", "Network environment to use (overrides the config file)")
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	conf, err := config.ReadConfig(ctx, configFile)
	if err != nil {
		return err
	}
	conf.InitLogging(ctx)

	networkName, network, err := conf.SelectNetwork(ctx, environment)
	if err != nil {
		return err
	}
	log.L(ctx).Infof("Using network '%s'", networkName)

	ec, err := ethclient.NewEthClient(ctx, &network.RPC)
	if err != nil {
		return err
	}
	defer ec.Close()

	workflow, err := docsign.New(ctx, ec, network.WorkflowConfig(networkName))
	if err != nil {
		return err
	}

	store, err := document.NewStore(ctx, &conf.Store)
	if err != nil {
		return err
	}

	server, err := httpserver.NewServer(ctx, "api", &conf.API, api.NewAPI(networkName, workflow, store, ec).Router())
	if err != nil {
		return err
	}
	if err := server.Start(); err != nil {
		return err
	}
	defer server.Stop()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigs:
		log.L(ctx).Infof("Shutting down on signal %s", sig)
	case <-ctx.Done():
	}
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
