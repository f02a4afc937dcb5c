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

package msgs

import (
	"fmt"
	"strings"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"golang.org/x/text/language"
)

const inkboundPrefix = "IB01"

var registered = false
var ffe = func(key, translation string, statusHint ...int) i18n.ErrorMessageKey {
	if !registered {
		i18n.RegisterPrefix(inkboundPrefix, "Inkbound Document Signing")
		registered = true
	}
	if !strings.HasPrefix(key, inkboundPrefix) {
		panic(fmt.Errorf("must have prefix '%s': %s", inkboundPrefix, key))
	}
	return i18n.FFE(language.AmericanEnglish, key, translation, statusHint...)
}

var (

	// Config IB0101XX
	MsgConfigFileReadFailed  = ffe("IB010100", "Failed to read config file %s")
	MsgConfigFileParseFailed = ffe("IB010101", "Failed to parse config file %s")
	MsgUnknownNetwork        = ffe("IB010102", "Network '%s' is not defined in the configuration")
	MsgNetworkMissingRPCURL  = ffe("IB010103", "Network '%s' has no RPC URL configured")
	MsgFactoryNotConfigured  = ffe("IB010104", "No factory contract address is configured for network '%s' - contract creation and listing are unavailable")
	MsgInvalidFactoryAddress = ffe("IB010105", "Invalid factory contract address '%s' for network '%s'")
	MsgChainIDMismatch       = ffe("IB010106", "Chain ID mismatch: node reports %d, configuration expects %d")
	MsgStoreNotConfigured    = ffe("IB010107", "No document store API URL is configured")
	MsgHTTPServerMissingPort = ffe("IB010108", "HTTP server port must be configured for %s")
	MsgHTTPServerStartFailed = ffe("IB010109", "Failed to start %s server on %s")
	MsgHTTPServerNoWSUpgrade = ffe("IB010110", "HTTP server does not support hijacking connections %T")
	MsgContextCanceled       = ffe("IB010111", "Context canceled")

	// RPC client IB0102XX
	MsgRPCInvalidHTTPURL      = ffe("IB010200", "Invalid HTTP URL for JSON/RPC endpoint: %v")
	MsgRPCInvalidWebSocketURL = ffe("IB010201", "Invalid WebSocket URL for JSON/RPC endpoint: %v")
	MsgConnectivityFailed     = ffe("IB010202", "JSON/RPC endpoint %s is unreachable")
	MsgChainIDFailed          = ffe("IB010203", "Failed to query the chain ID from the JSON/RPC endpoint")

	// Eth client IB0103XX
	MsgEthClientABIJson          = ffe("IB010300", "JSON ABI parsing failed")
	MsgEthClientFunctionNotFound = ffe("IB010301", "Function '%s' not found on ABI")
	MsgEthClientMissingInput     = ffe("IB010302", "Missing input to function call")
	MsgEthClientMissingOutput    = ffe("IB010303", "Missing output for function call")
	MsgEthClientMissingTo        = ffe("IB010304", "Missing 'to' address for function call")
	MsgEthClientMissingSigner    = ffe("IB010305", "Missing signer for transaction")
	MsgEthClientInvalidInput     = ffe("IB010306", "Unable to parse input as %s")
	MsgEthClientInvalidTXVersion = ffe("IB010307", "Invalid transaction version %v")
	MsgReceiptTimeout            = ffe("IB010308", "Timed out waiting for receipt of transaction %s - the transaction outcome is unknown, re-query status rather than resubmitting")
	MsgReturnValueNotDecoded     = ffe("IB010309", "Transaction reverted, and the revert return value could not be decoded %s")
	MsgReturnValueNotAvailable   = ffe("IB010310", "Error return value unavailable")

	// Signing IB0104XX
	MsgInvalidCredential  = ffe("IB010400", "Invalid signing key material")
	MsgSigningKeyReleased = ffe("IB010401", "Signing key has been released and can no longer be used")
	MsgInvalidCompactRSV  = ffe("IB010402", "Invalid signature data (len=%d)")

	// Document IB0105XX
	MsgDocumentEmpty     = ffe("IB010500", "Document is empty")
	MsgStoreUploadFailed = ffe("IB010501", "Document store upload failed [%d]: %s")
	MsgStoreEmptyPointer = ffe("IB010502", "Document store returned an empty storage pointer")

	// Signing workflow IB0106XX
	MsgCreateNoSigners           = ffe("IB010600", "At least one required signer must be supplied")
	MsgInvalidSignerAddress      = ffe("IB010601", "Invalid signer address '%s'")
	MsgInvalidContractAddress    = ffe("IB010602", "Invalid signing contract address '%s'")
	MsgBroadcastAmbiguous        = ffe("IB010603", "Transaction broadcast failed after submission to the network for operation '%s' - the outcome is ambiguous and the transaction must not be resubmitted")
	MsgTransactionRejected       = ffe("IB010604", "Transaction rejected before acceptance into the mempool for operation '%s'")
	MsgTransactionReverted       = ffe("IB010605", "Transaction reverted on-chain for operation '%s' (contract=%s): %s")
	MsgCreationEventNotFound     = ffe("IB010606", "Confirmed receipt %s does not contain a ContractCreated event - factory ABI mismatch")
	MsgSnapshotInvariantViolated = ffe("IB010607", "Contract %s returned an inconsistent snapshot: signedCount=%d signatures=%d totalSigners=%d")

	// API IB0107XX
	MsgAPIBadRequest   = ffe("IB010700", "Invalid request: %s", 400)
	MsgAPIMissingField = ffe("IB010701", "Missing required field '%s'", 400)
)
