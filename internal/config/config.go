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

// Package config loads the process configuration: a set of named networks
// (one selected at startup by the environment discriminator), the document
// store endpoint, and the API server settings.
package config

import (
	"context"
	"os"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/inkbound-io/inkbound/internal/confutil"
	"github.com/inkbound-io/inkbound/internal/docsign"
	"github.com/inkbound-io/inkbound/internal/document"
	"github.com/inkbound-io/inkbound/internal/ethclient"
	"github.com/inkbound-io/inkbound/internal/httpserver"
	"github.com/inkbound-io/inkbound/internal/msgs"
	"sigs.k8s.io/yaml"
)

type LogConfig struct {
	Level *string `json:"level"`
}

// NetworkConfig is one chain endpoint: the RPC connection, the expected chain
// ID, and the (optional) factory deployment on that chain. Absence of a
// factory address is a valid state - creation and listing degrade, the rest
// of the workflow still works.
type NetworkConfig struct {
	RPC                    ethclient.Config `json:"rpc"`
	FactoryAddress         string           `json:"factoryAddress"`
	TXVersion              *string          `json:"txVersion"`
	ReceiptWait            *string          `json:"receiptWait"`
	ReceiptPollingInterval *string          `json:"receiptPollingInterval"`
}

type Config struct {
	Log         LogConfig                 `json:"log"`
	Environment string                    `json:"environment"`
	Networks    map[string]*NetworkConfig `json:"networks"`
	Store       document.StoreConfig      `json:"store"`
	API         httpserver.Config         `json:"api"`
}

const DefaultEnvironment = "development"

// ReadConfig loads and parses the YAML configuration file.
func ReadConfig(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgConfigFileReadFailed, path)
	}
	var conf Config
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgConfigFileParseFailed, path)
	}
	return &conf, nil
}

// InitLogging applies the configured log level process-wide.
func (c *Config) InitLogging(ctx context.Context) {
	log.SetLevel(confutil.StringNotEmpty(c.Log.Level, "info"))
	log.L(ctx).Debugf("Logging initialized (level=%s)", confutil.StringNotEmpty(c.Log.Level, "info"))
}

// SelectNetwork resolves the environment discriminator (command-line override
// first, then the config file, then the default) to one configured network.
func (c *Config) SelectNetwork(ctx context.Context, override string) (string, *NetworkConfig, error) {
	name := override
	if name == "" {
		name = c.Environment
	}
	if name == "" {
		name = DefaultEnvironment
	}
	network := c.Networks[name]
	if network == nil {
		return "", nil, i18n.NewError(ctx, msgs.MsgUnknownNetwork, name)
	}
	if network.RPC.HTTP.URL == "" && network.RPC.WS.URL == "" {
		return "", nil, i18n.NewError(ctx, msgs.MsgNetworkMissingRPCURL, name)
	}
	return name, network, nil
}

// WorkflowConfig maps a selected network onto the signing workflow settings.
func (n *NetworkConfig) WorkflowConfig(name string) *docsign.Config {
	return &docsign.Config{
		Network:                name,
		FactoryAddress:         n.FactoryAddress,
		TXVersion:              n.TXVersion,
		ReceiptWait:            n.ReceiptWait,
		ReceiptPollingInterval: n.ReceiptPollingInterval,
	}
}
