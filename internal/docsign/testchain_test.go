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

package docsign

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/inkbound-io/inkbound/internal/confutil"
	"github.com/inkbound-io/inkbound/internal/ethclient"
	"github.com/inkbound-io/inkbound/internal/keymgr"
	"github.com/inkbound-io/inkbound/internal/retry"
	"github.com/inkbound-io/inkbound/internal/rpcclient"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

const testChainID = int64(31337)

// Development chain accounts #0 and #1
const (
	keyHexX  = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	addrX    = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"
	keyHexY  = "0x59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d"
	addrY    = "0x70997970c51812dc3a010c7d01b50e0d17dc79c8"
	factoryA = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
)

// testChain is a stand-in JSON/RPC node. Read calls are dispatched by
// decoded function name, transactions are recovered from their raw bytes and
// handed to the invoke hook, which decides the receipt.
type testChain struct {
	t       *testing.T
	lock    sync.Mutex
	factory abi.ABI
	signer  abi.ABI
	server  *httptest.Server

	nonces       map[string]uint64
	receipts     map[string]*ethclient.TransactionReceipt
	receiptDelay int

	// calls maps a view function name to its handler; output is marshalled to
	// JSON and ABI-encoded against the function's outputs
	calls map[string]func(to ethtypes.Address0xHex, input map[string]interface{}) (interface{}, error)
	// invoke decides the receipt for a recovered transaction
	invoke  func(from string, to ethtypes.Address0xHex, fn string, input map[string]interface{}, txHash ethtypes.HexBytes0xPrefix) (*ethclient.TransactionReceipt, error)
	sendErr error
}

func newTestChain(t *testing.T) *testChain {
	tc := &testChain{
		t:        t,
		nonces:   make(map[string]uint64),
		receipts: make(map[string]*ethclient.TransactionReceipt),
		calls:    make(map[string]func(ethtypes.Address0xHex, map[string]interface{}) (interface{}, error)),
	}
	err := json.Unmarshal(FactoryABIJSON, &tc.factory)
	require.NoError(t, err)
	err = json.Unmarshal(SignerABIJSON, &tc.signer)
	require.NoError(t, err)
	tc.server = httptest.NewServer(http.HandlerFunc(tc.handleRPC))
	return tc
}

func (tc *testChain) close() {
	tc.server.Close()
}

func (tc *testChain) entryForSelector(data []byte) *abi.Entry {
	for _, a := range []abi.ABI{tc.factory, tc.signer} {
		for _, e := range a {
			if e.IsFunction() && bytes.Equal(e.FunctionSelectorBytes(), data[0:4]) {
				return e
			}
		}
	}
	return nil
}

func (tc *testChain) decodeCallData(ctx context.Context, data ethtypes.HexBytes0xPrefix) (*abi.Entry, map[string]interface{}) {
	entry := tc.entryForSelector(data)
	require.NotNil(tc.t, entry, "no ABI function matches selector")
	cv, err := entry.DecodeCallDataCtx(ctx, data)
	require.NoError(tc.t, err)
	jsonData, err := ethclient.StandardABISerializer().SerializeJSONCtx(ctx, cv)
	require.NoError(tc.t, err)
	var input map[string]interface{}
	require.NoError(tc.t, json.Unmarshal(jsonData, &input))
	return entry, input
}

func (tc *testChain) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage   `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	err := json.NewDecoder(r.Body).Decode(&req)
	require.NoError(tc.t, err)

	tc.lock.Lock()
	defer tc.lock.Unlock()
	result, err := tc.dispatch(r.Context(), req.Method, req.Params)

	resMap := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if err != nil {
		resMap["error"] = map[string]interface{}{"code": -32000, "message": err.Error()}
	} else {
		resMap["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resMap)
}

func (tc *testChain) dispatch(ctx context.Context, method string, params []json.RawMessage) (interface{}, error) {
	switch method {
	case "eth_chainId":
		return ethtypes.NewHexIntegerU64(uint64(testChainID)), nil
	case "eth_gasPrice":
		return ethtypes.NewHexInteger64(20000000000), nil
	case "eth_getTransactionCount":
		var addr ethtypes.Address0xHex
		_ = json.Unmarshal(params[0], &addr)
		return ethtypes.NewHexIntegerU64(tc.nonces[addr.String()]), nil
	case "eth_estimateGas":
		return ethtypes.NewHexInteger64(100000), nil
	case "eth_call":
		var tx ethsigner.Transaction
		if err := json.Unmarshal(params[0], &tx); err != nil {
			return nil, err
		}
		entry, input := tc.decodeCallData(ctx, ethtypes.HexBytes0xPrefix(tx.Data))
		handler := tc.calls[entry.Name]
		if handler == nil {
			return nil, fmt.Errorf("no handler for %s", entry.Name)
		}
		output, err := handler(*tx.To, input)
		if err != nil {
			return nil, err
		}
		outputJSON, err := json.Marshal(output)
		if err != nil {
			return nil, err
		}
		return entry.Outputs.EncodeABIDataJSONCtx(ctx, outputJSON)
	case "eth_sendRawTransaction":
		if tc.sendErr != nil {
			return nil, tc.sendErr
		}
		var rawTX ethtypes.HexBytes0xPrefix
		if err := json.Unmarshal(params[0], &rawTX); err != nil {
			return nil, err
		}
		from, recovered, err := ethsigner.RecoverRawTransaction(ctx, rawTX, testChainID)
		require.NoError(tc.t, err)
		hash := sha3.NewLegacyKeccak256()
		_, _ = hash.Write(rawTX)
		txHash := ethtypes.HexBytes0xPrefix(hash.Sum(nil))
		entry, input := tc.decodeCallData(ctx, ethtypes.HexBytes0xPrefix(recovered.Transaction.Data))
		receipt, err := tc.invoke(from.String(), *recovered.Transaction.To, entry.Name, input, txHash)
		if err != nil {
			return nil, err
		}
		tc.nonces[from.String()]++
		receipt.TransactionHash = txHash
		tc.receipts[txHash.String()] = receipt
		return txHash, nil
	case "eth_getTransactionReceipt":
		var txHash ethtypes.HexBytes0xPrefix
		_ = json.Unmarshal(params[0], &txHash)
		if tc.receiptDelay > 0 {
			tc.receiptDelay--
			return nil, nil
		}
		return tc.receipts[txHash.String()], nil
	default:
		return nil, fmt.Errorf("method %s not mocked", method)
	}
}

func padTopicAddress(addr string) ethtypes.HexBytes0xPrefix {
	a := ethtypes.MustNewAddress(addr)
	topic := make([]byte, 32)
	copy(topic[12:], a[:])
	return topic
}

func (tc *testChain) creationLog(contractAddr, initiator string, docHash ethtypes.HexBytes0xPrefix) *ethclient.LogJSONRPC {
	return &ethclient.LogJSONRPC{
		LogIndex: ethtypes.NewHexInteger64(0),
		Address:  ethtypes.MustNewAddress(factoryA),
		Topics: []ethtypes.HexBytes0xPrefix{
			tc.factory.Events()["ContractCreated"].SignatureHashBytes(),
			padTopicAddress(contractAddr),
			padTopicAddress(initiator),
		},
		Data: docHash,
	}
}

func unrelatedLog() *ethclient.LogJSONRPC {
	return &ethclient.LogJSONRPC{
		LogIndex: ethtypes.NewHexInteger64(1),
		Address:  ethtypes.MustNewAddress("0x000000000000000000000000000000000000beef"),
		Topics: []ethtypes.HexBytes0xPrefix{
			ethtypes.MustNewHexBytes0xPrefix("0x1111111111111111111111111111111111111111111111111111111111111111"),
		},
		Data: ethtypes.MustNewHexBytes0xPrefix("0x00"),
	}
}

func successReceipt(logs ...*ethclient.LogJSONRPC) *ethclient.TransactionReceipt {
	return &ethclient.TransactionReceipt{
		BlockNumber: ethtypes.NewHexInteger64(1000),
		Status:      ethtypes.NewHexInteger64(1),
		Logs:        logs,
	}
}

func newTestWorkflow(t *testing.T, tc *testChain, mods ...func(*Config)) (context.Context, *Client, func()) {
	ctx := context.Background()
	ec, err := ethclient.NewEthClient(ctx, &ethclient.Config{
		HTTP:         rpcclient.HTTPConfig{URL: tc.server.URL},
		ConnectRetry: retry.ConfigWithMax{MaxAttempts: confutil.P(1)},
	})
	require.NoError(t, err)

	conf := &Config{
		Network:                "development",
		FactoryAddress:         factoryA,
		ReceiptWait:            confutil.P("1s"),
		ReceiptPollingInterval: confutil.P("10ms"),
	}
	for _, mod := range mods {
		mod(conf)
	}
	c, err := New(ctx, ec, conf)
	require.NoError(t, err)
	return ctx, c, func() {
		ec.Close()
		tc.close()
	}
}

func newTestKey(t *testing.T, keyHex string) keymgr.KeyManager {
	km, err := keymgr.NewTransientKeyManager(context.Background(), keyHex)
	require.NoError(t, err)
	return km
}
