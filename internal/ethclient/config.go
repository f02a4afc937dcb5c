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

package ethclient

import (
	"github.com/inkbound-io/inkbound/internal/confutil"
	"github.com/inkbound-io/inkbound/internal/retry"
	"github.com/inkbound-io/inkbound/internal/rpcclient"
)

type Config struct {
	HTTP rpcclient.HTTPConfig `json:"http"`
	WS   rpcclient.WSConfig   `json:"ws"`

	// ChainID the endpoint is expected to serve. Zero or unset accepts whatever the
	// node reports; a non-zero mismatch is a configuration error at connect time.
	ChainID *int64 `json:"chainId"`

	// Multiplier applied to eth_estimateGas results before submission
	GasEstimateFactor *float64 `json:"gasEstimateFactor"`

	// Default receipt polling interval for WaitForReceipt (callers bound the wait
	// itself with their context deadline)
	ReceiptPollingInterval *string `json:"receiptPollingInterval"`

	// Connectivity establishment is the one place retries are allowed - nothing is
	// ever retried once a transaction has been broadcast
	ConnectRetry retry.ConfigWithMax `json:"connectRetry"`
}

var Defaults = &Config{
	GasEstimateFactor:      confutil.P(1.5),
	ReceiptPollingInterval: confutil.P("1s"),
}
