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

// Package docsign drives the multi-signatory document signing workflow against
// the factory and signer contracts: building, signing and broadcasting
// transactions, confirming them via receipts, and reading back consistent
// status snapshots.
package docsign

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/hyperledger/firefly-signer/pkg/abi"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/inkbound-io/inkbound/internal/confutil"
	"github.com/inkbound-io/inkbound/internal/ethclient"
	"github.com/inkbound-io/inkbound/internal/keymgr"
	"github.com/inkbound-io/inkbound/internal/msgs"
)

type Config struct {
	Network                string  `json:"network"`
	FactoryAddress         string  `json:"factoryAddress"`
	TXVersion              *string `json:"txVersion"`
	ReceiptWait            *string `json:"receiptWait"`
	ReceiptPollingInterval *string `json:"receiptPollingInterval"`
}

var Defaults = &Config{
	TXVersion:              confutil.P(string(ethclient.EIP1559)),
	ReceiptWait:            confutil.P("60s"),
	ReceiptPollingInterval: confutil.P("1s"),
}

// Client is the session-scoped workflow engine. It holds only immutable
// endpoint/contract configuration - every operation is an independent
// end-to-end flow, and all authority lives on-chain.
type Client struct {
	ec                 ethclient.EthClient
	network            string
	factoryAddr        *ethtypes.Address0xHex
	factory            ethclient.ABIClient
	signer             ethclient.ABIClient
	contractCreated    *abi.Entry
	contractCreatedSig []byte
	txVersion          ethclient.EthTXVersion
	receiptWait        time.Duration
	pollInterval       time.Duration
}

func New(ctx context.Context, ec ethclient.EthClient, conf *Config) (*Client, error) {
	c := &Client{
		ec:           ec,
		network:      conf.Network,
		txVersion:    ethclient.EthTXVersion(confutil.StringNotEmpty(conf.TXVersion, *Defaults.TXVersion)),
		receiptWait:  confutil.DurationMin(conf.ReceiptWait, 1*time.Second, *Defaults.ReceiptWait),
		pollInterval: confutil.DurationMin(conf.ReceiptPollingInterval, 10*time.Millisecond, *Defaults.ReceiptPollingInterval),
	}
	switch c.txVersion {
	case ethclient.EIP1559, ethclient.LEGACY_EIP155, ethclient.LEGACY_ORIGINAL:
	default:
		return nil, i18n.NewError(ctx, msgs.MsgEthClientInvalidTXVersion, c.txVersion)
	}
	// An absent factory address is a valid state - creation and listing are
	// degraded, status reads and signing still work
	if conf.FactoryAddress != "" {
		factoryAddr, err := ethtypes.NewAddress(conf.FactoryAddress)
		if err != nil {
			return nil, i18n.WrapError(ctx, err, msgs.MsgInvalidFactoryAddress, conf.FactoryAddress, conf.Network)
		}
		c.factoryAddr = factoryAddr
	}
	var err error
	c.factory, err = ec.ABIJSON(ctx, FactoryABIJSON)
	if err == nil {
		c.signer, err = ec.ABIJSON(ctx, SignerABIJSON)
	}
	if err != nil {
		return nil, err
	}
	c.contractCreated = c.factory.ABI().Events()["ContractCreated"]
	c.contractCreatedSig = c.contractCreated.SignatureHashBytes()
	return c, nil
}

// FactoryConfigured reports whether factory-backed operations (creation,
// directory listing) are available on this network.
func (c *Client) FactoryConfigured() bool {
	return c.factoryAddr != nil
}

// NormalizeSigners validates and deduplicates the required signer list,
// preserving first-occurrence order, and guarantees the initiator appears
// exactly once even when the caller omitted it.
func NormalizeSigners(ctx context.Context, initiator ethtypes.Address0xHex, rawSigners []string) ([]ethtypes.Address0xHex, error) {
	if len(rawSigners) == 0 {
		return nil, i18n.NewError(ctx, msgs.MsgCreateNoSigners)
	}
	seen := make(map[ethtypes.Address0xHex]bool, len(rawSigners)+1)
	signers := make([]ethtypes.Address0xHex, 0, len(rawSigners)+1)
	for _, raw := range rawSigners {
		addr, err := ethtypes.NewAddress(raw)
		if err != nil {
			return nil, i18n.WrapError(ctx, err, msgs.MsgInvalidSignerAddress, raw)
		}
		if !seen[*addr] {
			seen[*addr] = true
			signers = append(signers, *addr)
		}
	}
	if !seen[initiator] {
		signers = append(signers, initiator)
	}
	return signers, nil
}

// CreateContract registers a new signing contract via the factory, waits for
// the creation transaction to confirm, and recovers the assigned contract
// address from the ContractCreated event in the receipt.
func (c *Client) CreateContract(ctx context.Context, signer keymgr.KeyManager, req *CreateRequest) (*CreateResult, error) {
	if c.factoryAddr == nil {
		return nil, i18n.NewError(ctx, msgs.MsgFactoryNotConfigured, c.network)
	}
	initiator, err := signer.Address(ctx)
	if err != nil {
		return nil, err
	}
	signers, err := NormalizeSigners(ctx, initiator, req.RequiredSigners)
	if err != nil {
		return nil, err
	}
	log.L(ctx).Infof("Creating signing contract (initiator=%s signers=%d hash=%s)", &initiator, len(signers), req.DocumentHash)

	signerStrs := make([]string, len(signers))
	for i := range signers {
		signerStrs[i] = signers[i].String()
	}
	builder := c.factory.MustFunction("createSigningContract").R(ctx).
		TXVersion(c.txVersion).
		Signer(signer).
		To(c.factoryAddr).
		Input(map[string]interface{}{
			"documentHash":      req.DocumentHash.String(),
			"ipfsCid":           req.StoragePointer,
			"requiredSigners":   signerStrs,
			"sequentialSigning": req.SequentialSigning,
			"title":             req.Title,
			"description":       req.Description,
		})
	receipt, txHash, err := c.submitAndConfirm(ctx, "createSigningContract", c.factoryAddr, builder)
	if err != nil {
		return nil, err
	}
	contractAddr, err := c.creationEventAddress(ctx, receipt)
	if err != nil {
		return nil, err
	}
	log.L(ctx).Infof("Signing contract created at %s (tx=%s)", contractAddr, txHash)
	return &CreateResult{
		ContractAddress: *contractAddr,
		TransactionHash: txHash,
		BlockNumber:     receipt.BlockNumber,
	}, nil
}

// SignDocument submits one signing transaction against an existing contract.
// Acceptance order under concurrent signing races is arbitrated by the
// contract alone - a rejection here is a normal outcome, not a client bug.
func (c *Client) SignDocument(ctx context.Context, signer keymgr.KeyManager, contractAddress string, metadata string) (*SignResult, error) {
	contractAddr, err := ethtypes.NewAddress(contractAddress)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgInvalidContractAddress, contractAddress)
	}
	builder := c.signer.MustFunction("signDocument").R(ctx).
		TXVersion(c.txVersion).
		Signer(signer).
		To(contractAddr).
		Input(map[string]interface{}{
			"metadata": metadata,
		})
	receipt, txHash, err := c.submitAndConfirm(ctx, "signDocument", contractAddr, builder)
	if err != nil {
		return nil, err
	}
	log.L(ctx).Infof("Document signed on %s (tx=%s)", contractAddr, txHash)
	return &SignResult{
		ContractAddress: *contractAddr,
		TransactionHash: txHash,
		BlockNumber:     receipt.BlockNumber,
	}, nil
}

// submitAndConfirm runs the build -> sign -> broadcast -> confirm sequence for
// one transaction. Build and signing failures fail closed (nothing was
// broadcast). After broadcast nothing is ever retried automatically: a
// rejection the node definitively reported is distinguished from an ambiguous
// failure where the transaction may still be in flight.
func (c *Client) submitAndConfirm(ctx context.Context, op string, to *ethtypes.Address0xHex, builder ethclient.ABIFunctionRequestBuilder) (*ethclient.TransactionReceipt, ethtypes.HexBytes0xPrefix, error) {
	if c.txVersion != ethclient.EIP1559 {
		gasPrice, err := c.ec.GasPrice(ctx)
		if err != nil {
			return nil, nil, err
		}
		builder.GasPrice(gasPrice.BigInt())
	}
	rawTX, err := builder.RawTransaction()
	if err != nil {
		return nil, nil, err
	}
	txHash, err := c.ec.SendRawTransaction(ctx, rawTX)
	if err != nil {
		if ethclient.MapSubmissionRejected(err) {
			return nil, nil, i18n.WrapError(ctx, err, msgs.MsgTransactionRejected, op)
		}
		return nil, nil, i18n.WrapError(ctx, err, msgs.MsgBroadcastAmbiguous, op)
	}
	waitCtx, cancel := context.WithTimeout(ctx, c.receiptWait)
	defer cancel()
	receipt, err := c.ec.WaitForReceipt(waitCtx, txHash, c.pollInterval)
	if err != nil {
		return nil, txHash, err
	}
	if !receipt.Success() {
		return nil, txHash, i18n.NewError(ctx, msgs.MsgTransactionReverted, op, to, ethclient.RevertErrorMessage(ctx, receipt))
	}
	return receipt, txHash, nil
}

type contractCreatedEvent struct {
	ContractAddress *ethtypes.Address0xHex    `json:"contractAddress"`
	Initiator       *ethtypes.Address0xHex    `json:"initiator"`
	DocumentHash    ethtypes.HexBytes0xPrefix `json:"documentHash"`
}

// creationEventAddress scans the receipt logs for the factory's
// ContractCreated event. Unrelated logs (other contracts emitting in the same
// transaction) are classified by topic signature and skipped; only a receipt
// with no matching log at all is an error.
func (c *Client) creationEventAddress(ctx context.Context, receipt *ethclient.TransactionReceipt) (*ethtypes.Address0xHex, error) {
	for _, l := range receipt.Logs {
		if len(l.Topics) == 0 || !bytes.Equal(l.Topics[0], c.contractCreatedSig) {
			continue
		}
		cv, err := c.contractCreated.DecodeEventDataCtx(ctx, l.Topics, l.Data)
		if err != nil {
			log.L(ctx).Warnf("Log %s/%d matched the ContractCreated signature but failed to decode: %s", l.TransactionHash, l.LogIndex.BigInt().Int64(), err)
			continue
		}
		jsonData, err := ethclient.StandardABISerializer().SerializeJSONCtx(ctx, cv)
		if err != nil {
			return nil, err
		}
		var event contractCreatedEvent
		if err := json.Unmarshal(jsonData, &event); err != nil {
			return nil, err
		}
		return event.ContractAddress, nil
	}
	return nil, i18n.NewError(ctx, msgs.MsgCreationEventNotFound, receipt.TransactionHash)
}
