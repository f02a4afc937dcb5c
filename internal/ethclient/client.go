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
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/hyperledger/firefly-common/pkg/wsclient"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/rpcbackend"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"github.com/inkbound-io/inkbound/internal/confutil"
	"github.com/inkbound-io/inkbound/internal/keymgr"
	"github.com/inkbound-io/inkbound/internal/msgs"
	"github.com/inkbound-io/inkbound/internal/retry"
	"github.com/inkbound-io/inkbound/internal/rpcclient"
	"golang.org/x/crypto/sha3"
)

// EthClient is a thin, stateless wrapper over a JSON/RPC endpoint for TX submission
// and contract reads. It holds no state between calls beyond the endpoint connection,
// and it never retries: retry policy belongs to the caller so it stays swappable.
type EthClient interface {
	Close()
	ChainID() int64
	IsConnected(ctx context.Context) bool
	BlockNumber(ctx context.Context) (uint64, error)
	ABI(ctx context.Context, a abi.ABI) (ABIClient, error)
	ABIJSON(ctx context.Context, abiJson []byte) (ABIClient, error)
	MustABIJSON(abiJson []byte) ABIClient

	// Below are the raw functions that the ABI() above provides wrappers for
	GasPrice(ctx context.Context) (gasPrice *ethtypes.HexInteger, err error)
	GetBalance(ctx context.Context, address string, block string) (balance *ethtypes.HexInteger, err error)
	EstimateGas(ctx context.Context, tx *ethsigner.Transaction) (gasLimit *ethtypes.HexInteger, err error)
	GetTransactionCount(ctx context.Context, fromAddr string) (transactionCount *ethtypes.HexUint64, err error)
	CallContract(ctx context.Context, from *string, tx *ethsigner.Transaction, block string) (data ethtypes.HexBytes0xPrefix, err error)
	BuildRawTransaction(ctx context.Context, txVersion EthTXVersion, signer keymgr.KeyManager, tx *ethsigner.Transaction) (ethtypes.HexBytes0xPrefix, error)
	SendRawTransaction(ctx context.Context, rawTX ethtypes.HexBytes0xPrefix) (txHash ethtypes.HexBytes0xPrefix, err error)

	// GetTransactionReceipt returns (nil, nil) while the transaction is not yet mined
	GetTransactionReceipt(ctx context.Context, txHash ethtypes.HexBytes0xPrefix) (*TransactionReceipt, error)
	// WaitForReceipt polls until a receipt appears, or the supplied context expires.
	// Expiry means the outcome is UNKNOWN - re-query, never resubmit.
	WaitForReceipt(ctx context.Context, txHash ethtypes.HexBytes0xPrefix, pollInterval time.Duration) (*TransactionReceipt, error)
}

type ethClient struct {
	chainID            int64
	gasEstimateFactor  float64
	receiptPollDefault time.Duration
	rpc                rpcbackend.RPC
}

func NewEthClient(ctx context.Context, conf *Config) (_ EthClient, err error) {
	var rpc rpcbackend.RPC
	if conf.HTTP.URL != "" {
		// Use HTTP by preference (provides parallelism on performance)
		rpcConf, err := rpcclient.ParseHTTPConfig(ctx, &conf.HTTP)
		if err != nil {
			return nil, err
		}
		rpc = rpcbackend.NewRPCClient(rpcConf)
	} else {
		// Otherwise use WS
		var wsRPC rpcbackend.WebSocketRPCClient
		var wsConf *wsclient.WSConfig
		wsConf, err = rpcclient.ParseWSConfig(ctx, &conf.WS)
		if err == nil {
			wsRPC = rpcbackend.NewWSRPCClient(wsConf)
			err = wsRPC.Connect(ctx)
		}
		if err != nil {
			return nil, err
		}
		rpc = wsRPC
	}
	return WrapRPCClient(ctx, rpc, conf)
}

func WrapRPCClient(ctx context.Context, rpc rpcbackend.RPC, conf *Config) (EthClient, error) {
	ec := &ethClient{
		rpc:                rpc,
		gasEstimateFactor:  confutil.Float64Min(conf.GasEstimateFactor, 1.0, *Defaults.GasEstimateFactor),
		receiptPollDefault: confutil.DurationMin(conf.ReceiptPollingInterval, 10*time.Millisecond, *Defaults.ReceiptPollingInterval),
	}
	connectRetry := retry.NewRetryLimited(&conf.ConnectRetry)
	err := connectRetry.Do(ctx, func(attempt int) (bool, error) {
		return true, ec.setupChainID(ctx)
	})
	if err != nil {
		return nil, err
	}
	if expected := confutil.Int64(conf.ChainID, 0); expected != 0 && expected != ec.chainID {
		return nil, i18n.NewError(ctx, msgs.MsgChainIDMismatch, ec.chainID, expected)
	}
	return ec, nil
}

func (ec *ethClient) Close() {
	wsRPC, isWS := ec.rpc.(rpcbackend.WebSocketRPCClient)
	if isWS {
		wsRPC.Close()
	}
}

func (ec *ethClient) ChainID() int64 {
	return ec.chainID
}

func (ec *ethClient) setupChainID(ctx context.Context) error {
	var chainID ethtypes.HexUint64
	if rpcErr := ec.rpc.CallRPC(ctx, &chainID, "eth_chainId"); rpcErr != nil {
		log.L(ctx).Errorf("eth_chainId failed: %+v", rpcErr)
		return i18n.WrapError(ctx, rpcErr.Error(), msgs.MsgChainIDFailed)
	}
	ec.chainID = int64(chainID.Uint64())
	return nil
}

func (ec *ethClient) IsConnected(ctx context.Context) bool {
	_, err := ec.BlockNumber(ctx)
	return err == nil
}

func (ec *ethClient) BlockNumber(ctx context.Context) (uint64, error) {
	var blockNumber ethtypes.HexUint64
	if rpcErr := ec.rpc.CallRPC(ctx, &blockNumber, "eth_blockNumber"); rpcErr != nil {
		log.L(ctx).Errorf("eth_blockNumber failed: %+v", rpcErr)
		return 0, rpcErr.Error()
	}
	return blockNumber.Uint64(), nil
}

func (ec *ethClient) GasPrice(ctx context.Context) (*ethtypes.HexInteger, error) {
	// Only London style gas pricing currently - EIP1559 would add eth_maxPriorityFeePerGas here
	var gasPrice ethtypes.HexInteger
	if rpcErr := ec.rpc.CallRPC(ctx, &gasPrice, "eth_gasPrice"); rpcErr != nil {
		log.L(ctx).Errorf("eth_gasPrice failed: %+v", rpcErr)
		return nil, rpcErr.Error()
	}
	return &gasPrice, nil
}

func (ec *ethClient) GetBalance(ctx context.Context, address string, block string) (*ethtypes.HexInteger, error) {
	var addressBalance ethtypes.HexInteger
	if rpcErr := ec.rpc.CallRPC(ctx, &addressBalance, "eth_getBalance", address, block); rpcErr != nil {
		log.L(ctx).Errorf("eth_getBalance failed: %+v", rpcErr)
		return nil, rpcErr.Error()
	}
	return &addressBalance, nil
}

func (ec *ethClient) GetTransactionCount(ctx context.Context, fromAddr string) (*ethtypes.HexUint64, error) {
	var transactionCount ethtypes.HexUint64
	if rpcErr := ec.rpc.CallRPC(ctx, &transactionCount, "eth_getTransactionCount", fromAddr, "latest"); rpcErr != nil {
		log.L(ctx).Errorf("eth_getTransactionCount(%s) failed: %+v", fromAddr, rpcErr)
		return nil, rpcErr.Error()
	}
	return &transactionCount, nil
}

func (ec *ethClient) EstimateGas(ctx context.Context, tx *ethsigner.Transaction) (*ethtypes.HexInteger, error) {
	var gasEstimate ethtypes.HexInteger
	if rpcErr := ec.rpc.CallRPC(ctx, &gasEstimate, "eth_estimateGas", tx); rpcErr != nil {
		log.L(ctx).Errorf("eth_estimateGas failed: %+v", rpcErr)
		return nil, rpcErr.Error()
	}
	return &gasEstimate, nil
}

func (ec *ethClient) CallContract(ctx context.Context, from *string, tx *ethsigner.Transaction, block string) (data ethtypes.HexBytes0xPrefix, err error) {
	if from != nil {
		tx.From = json.RawMessage(fmt.Sprintf(`"%s"`, *from))
	}
	if rpcErr := ec.rpc.CallRPC(ctx, &data, "eth_call", tx, block); rpcErr != nil {
		log.L(ctx).Errorf("eth_call failed: %+v", rpcErr)
		return nil, rpcErr.Error()
	}
	return data, err
}

func (ec *ethClient) BuildRawTransaction(ctx context.Context, txVersion EthTXVersion, signer keymgr.KeyManager, tx *ethsigner.Transaction) (ethtypes.HexBytes0xPrefix, error) {
	fromAddr, err := signer.Address(ctx)
	if err != nil {
		return nil, err
	}
	tx.From = json.RawMessage(fmt.Sprintf(`"%s"`, fromAddr.String()))

	// Trivial nonce management in the client - get the current nonce for this signer,
	// from the local node mempool, for each TX
	if tx.Nonce == nil {
		transactionCount, err := ec.GetTransactionCount(ctx, fromAddr.String())
		if err != nil {
			return nil, err
		}
		tx.Nonce = ethtypes.NewHexInteger(new(big.Int).SetUint64(transactionCount.Uint64()))
	}

	if tx.GasLimit == nil {
		// Estimate gas before submission, then submit with a bump on the estimation
		gasEstimate, err := ec.EstimateGas(ctx, tx)
		if err != nil {
			return nil, err
		}
		gasLimitFactored := new(big.Float).SetInt(gasEstimate.BigInt())
		gasLimitFactored = gasLimitFactored.Mul(gasLimitFactored, big.NewFloat(ec.gasEstimateFactor))
		gasLimit, _ := gasLimitFactored.Int(nil)
		tx.GasLimit = ethtypes.NewHexInteger(gasLimit)
	}

	// Sign
	var sigPayload *ethsigner.TransactionSignaturePayload
	switch txVersion {
	case EIP1559:
		sigPayload = tx.SignaturePayloadEIP1559(ec.chainID)
	case LEGACY_EIP155:
		sigPayload = tx.SignaturePayloadLegacyEIP155(ec.chainID)
	case LEGACY_ORIGINAL:
		sigPayload = tx.SignaturePayloadLegacyOriginal()
	default:
		return nil, i18n.NewError(ctx, msgs.MsgEthClientInvalidTXVersion, txVersion)
	}
	hash := sha3.NewLegacyKeccak256()
	_, _ = hash.Write(sigPayload.Bytes())
	signature, err := signer.Sign(ctx, hash.Sum(nil))
	var sig *secp256k1.SignatureData
	if err == nil {
		sig, err = keymgr.DecodeCompactRSV(ctx, signature)
	}
	var rawTX []byte
	if err == nil {
		switch txVersion {
		case EIP1559:
			rawTX, err = tx.FinalizeEIP1559WithSignature(sigPayload, sig)
		case LEGACY_EIP155:
			rawTX, err = tx.FinalizeLegacyEIP155WithSignature(sigPayload, sig, ec.chainID)
		case LEGACY_ORIGINAL:
			rawTX, err = tx.FinalizeLegacyOriginalWithSignature(sigPayload, sig)
		}
	}
	if err != nil {
		log.L(ctx).Errorf("signing failed (addr=%s): %s", &fromAddr, err)
		return nil, err
	}
	return rawTX, nil
}

func (ec *ethClient) SendRawTransaction(ctx context.Context, rawTX ethtypes.HexBytes0xPrefix) (ethtypes.HexBytes0xPrefix, error) {
	var txHash ethtypes.HexBytes0xPrefix
	if rpcErr := ec.rpc.CallRPC(ctx, &txHash, "eth_sendRawTransaction", rawTX); rpcErr != nil {
		addr, decodedTX, err := ethsigner.RecoverRawTransaction(ctx, rawTX, ec.chainID)
		if err != nil {
			log.L(ctx).Errorf("Invalid transaction build during signing: %s", err)
		} else {
			log.L(ctx).Errorf("Rejected TX (from=%s): %+v", addr, logJSON(decodedTX.Transaction))
		}
		return nil, fmt.Errorf("eth_sendRawTransaction failed: %s", rpcErr.Message)
	}
	return txHash, nil
}

func (ec *ethClient) GetTransactionReceipt(ctx context.Context, txHash ethtypes.HexBytes0xPrefix) (*TransactionReceipt, error) {
	var receipt *TransactionReceipt
	if rpcErr := ec.rpc.CallRPC(ctx, &receipt, "eth_getTransactionReceipt", txHash); rpcErr != nil {
		log.L(ctx).Errorf("eth_getTransactionReceipt(%s) failed: %+v", txHash, rpcErr)
		return nil, rpcErr.Error()
	}
	// A nil result means the transaction is not yet mined - that is not an error,
	// the caller decides how long to keep polling
	return receipt, nil
}

func (ec *ethClient) WaitForReceipt(ctx context.Context, txHash ethtypes.HexBytes0xPrefix, pollInterval time.Duration) (*TransactionReceipt, error) {
	if pollInterval <= 0 {
		pollInterval = ec.receiptPollDefault
	}
	attempts := 0
	for {
		receipt, err := ec.GetTransactionReceipt(ctx, txHash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			log.L(ctx).Debugf("Receipt for %s in block %s (polls=%d)", txHash, receipt.BlockNumber, attempts)
			return receipt, nil
		}
		attempts++
		select {
		case <-time.After(pollInterval):
		case <-ctx.Done():
			return nil, i18n.NewError(ctx, msgs.MsgReceiptTimeout, txHash)
		}
	}
}

// See https://docs.soliditylang.org/en/v0.8.14/control-structures.html#revert
// The default error for revert("some error") is a function Error(string)
var defaultError = &abi.Entry{
	Type: abi.Error,
	Name: "Error",
	Inputs: abi.ParameterArray{
		{Type: "string"},
	},
}
var defaultErrorID = defaultError.FunctionSelectorBytes()

// RevertErrorMessage extracts a human readable message from the revert reason bytes of
// a failed receipt, if the contract used the default Error(string) shape.
func RevertErrorMessage(ctx context.Context, receipt *TransactionReceipt) string {
	var revertReason string
	if receipt.RevertReason != nil {
		revertReason = receipt.RevertReason.String()
	}
	returnDataBytes, _ := hex.DecodeString(padHexData(revertReason))
	if len(returnDataBytes) > 4 && bytes.Equal(returnDataBytes[0:4], defaultErrorID) {
		value, err := defaultError.DecodeCallDataCtx(ctx, returnDataBytes)
		if err == nil {
			if errorMessage, ok := value.Children[0].Value.(string); ok {
				return errorMessage
			}
		}
	}
	if len(returnDataBytes) > 0 {
		return i18n.NewError(ctx, msgs.MsgReturnValueNotDecoded, revertReason).Error()
	}
	return i18n.NewError(ctx, msgs.MsgReturnValueNotAvailable).Error()
}

func padHexData(hexString string) string {
	hexString = strings.TrimPrefix(hexString, "0x")
	if len(hexString)%2 == 1 {
		hexString = "0" + hexString
	}
	return hexString
}

func logJSON(v interface{}) string {
	ret := ""
	b, _ := json.Marshal(v)
	if len(b) > 0 {
		ret = (string)(b)
	}
	return ret
}
