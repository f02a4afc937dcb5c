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
	"context"
	"fmt"
	"testing"

	"github.com/hyperledger/firefly-signer/pkg/ethsigner"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/inkbound-io/inkbound/internal/keymgr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

// Well-known development chain account #0
const testKeyHex = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
const testKeyAddr = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"

var testABIJSON = ([]byte)(`[
	{
		"name": "registerEnvelope",
		"type": "function",
		"inputs": [
			{
				"name": "envelope",
				"type": "tuple",
				"components": [
					{
						"name": "documentHash",
						"type": "bytes32"
					},
					{
						"name": "title",
						"type": "string"
					},
					{
						"name": "signers",
						"type": "address[]"
					}
				]
			}
		],
		"outputs": []
	},
	{
		"name": "getEnvelopes",
		"type": "function",
		"inputs": [
			{
				"name": "initiator",
				"type": "address"
			}
		],
		"outputs": [
			{
				"name": "envelopes",
				"type": "tuple[]",
				"components": [
					{
						"name": "documentHash",
						"type": "bytes32"
					},
					{
						"name": "title",
						"type": "string"
					},
					{
						"name": "signers",
						"type": "address[]"
					}
				]
			}
		]
	}
]`)

type envelope struct {
	DocumentHash ethtypes.HexBytes0xPrefix `json:"documentHash"`
	Title        string                    `json:"title"`
	Signers      []ethtypes.Address0xHex   `json:"signers"`
}

type registerEnvelopeInput struct {
	Envelope envelope `json:"envelope"`
}

type getEnvelopesOutput struct {
	Envelopes []*envelope `json:"envelopes"`
}

func newTestKeyManager(t *testing.T) keymgr.KeyManager {
	km, err := keymgr.NewTransientKeyManager(context.Background(), testKeyHex)
	require.NoError(t, err)
	return km
}

func testInvokeRegisterEnvelopeOk(t *testing.T, txVersion EthTXVersion) {

	envelopeA := &envelope{
		DocumentHash: ethtypes.MustNewHexBytes0xPrefix("0x25c98d2b39a18e6e5a5fdb3ad4a2f48979c42bbe74eb1a0706219e62bcb1fbe1"),
		Title:        "Master services agreement",
		Signers: []ethtypes.Address0xHex{
			*ethtypes.MustNewAddress("0xFd33700f0511AbB60FF31A8A533854dB90B0a32A"),
		},
	}

	var testABI ABIClient
	ctx, ec, done := newTestClientAndServer(t, &mockEth{
		eth_getTransactionCount: func(ctx context.Context, a ethtypes.Address0xHex, block string) (ethtypes.HexUint64, error) {
			assert.Equal(t, testKeyAddr, a.String())
			assert.Equal(t, "latest", block)
			return 10, nil
		},
		eth_estimateGas: func(ctx context.Context, tx ethsigner.Transaction) (ethtypes.HexInteger, error) {
			return *ethtypes.NewHexInteger64(100000), nil
		},
		eth_sendRawTransaction: func(ctx context.Context, rawTX ethtypes.HexBytes0xPrefix) (ethtypes.HexBytes0xPrefix, error) {
			addr, tx, err := ethsigner.RecoverRawTransaction(ctx, rawTX, 12345)
			require.NoError(t, err)
			assert.Equal(t, testKeyAddr, addr.String())
			assert.Equal(t, int64(10), tx.Nonce.Int64())
			assert.Equal(t, int64(150000 /* 1.5x */), tx.GasLimit.Int64())

			cv, err := testABI.ABI().Functions()["registerEnvelope"].DecodeCallData(tx.Data)
			require.NoError(t, err)
			jsonData, err := StandardABISerializer().SerializeJSON(cv)
			require.NoError(t, err)
			assert.JSONEq(t, `{
				"envelope": {
					"documentHash": "0x25c98d2b39a18e6e5a5fdb3ad4a2f48979c42bbe74eb1a0706219e62bcb1fbe1",
					"title":        "Master services agreement",
					"signers":      ["0xfd33700f0511abb60ff31a8a533854db90b0a32a"]
				}
			}`, string(jsonData))

			hash := sha3.NewLegacyKeccak256()
			_, _ = hash.Write(rawTX)
			return hash.Sum(nil), nil
		},
	})
	defer done()

	km := newTestKeyManager(t)
	defer km.Close()

	fakeContractAddr := ethtypes.MustNewAddress("0xCC3b61E636B395a4821Df122d652820361FF26f1")

	testABI = ec.MustABIJSON(testABIJSON)
	txHash, err := testABI.MustFunction("registerEnvelope").R(ctx).
		TXVersion(txVersion).
		Signer(km).
		To(fakeContractAddr).
		Input(&registerEnvelopeInput{
			Envelope: *envelopeA,
		}).
		SignAndSend()

	require.NoError(t, err)
	assert.NotEmpty(t, txHash)

}

func TestInvokeRegisterEnvelopeOk_EIP1559(t *testing.T) {
	testInvokeRegisterEnvelopeOk(t, EIP1559)
}

func TestInvokeRegisterEnvelopeOk_LEGACY_EIP155(t *testing.T) {
	testInvokeRegisterEnvelopeOk(t, LEGACY_EIP155)
}

func TestInvokeRegisterEnvelopeOk_LEGACY_ORIGINAL(t *testing.T) {
	testInvokeRegisterEnvelopeOk(t, LEGACY_ORIGINAL)
}

func TestInvokeBadTXVersion(t *testing.T) {
	ctx, ec, done := newTestClientAndServer(t, &mockEth{
		eth_getTransactionCount: func(ctx context.Context, a ethtypes.Address0xHex, block string) (ethtypes.HexUint64, error) {
			return 0, nil
		},
		eth_estimateGas: func(ctx context.Context, tx ethsigner.Transaction) (ethtypes.HexInteger, error) {
			return *ethtypes.NewHexInteger64(100000), nil
		},
	})
	defer done()

	km := newTestKeyManager(t)
	defer km.Close()

	_, err := ec.MustABIJSON(testABIJSON).MustFunction("getEnvelopes").R(ctx).
		TXVersion(EthTXVersion("wrong")).
		Signer(km).
		To(ethtypes.MustNewAddress("0xCC3b61E636B395a4821Df122d652820361FF26f1")).
		Input(fmt.Sprintf(`{"initiator": "%s"}`, testKeyAddr)).
		RawTransaction()
	assert.Regexp(t, "IB010307", err)
}

func testCallGetEnvelopesOk(t *testing.T, withFrom, withBlock, withBlockRef bool) {

	var testABI ABIClient
	ctx, ec, done := newTestClientAndServer(t, &mockEth{
		eth_call: func(ctx context.Context, tx ethsigner.Transaction, s string) (ethtypes.HexBytes0xPrefix, error) {
			if withBlock {
				assert.Equal(t, "0x3039", s)
			} else if withBlockRef {
				assert.Equal(t, "pending", s)
			} else {
				assert.Equal(t, "latest", s)
			}
			if withFrom {
				assert.Equal(t, fmt.Sprintf(`"%s"`, testKeyAddr), string(tx.From))
			} else {
				assert.Nil(t, tx.From)
			}
			cv, err := testABI.ABI().Functions()["getEnvelopes"].DecodeCallData(tx.Data)
			require.NoError(t, err)
			jsonData, err := StandardABISerializer().SerializeJSON(cv)
			require.NoError(t, err)
			assert.JSONEq(t, fmt.Sprintf(`{
				"initiator": "%s"
			}`, testKeyAddr), string(jsonData))

			retJSON := ([]byte)(`{
				"envelopes": [
					{
						"documentHash": "0x25c98d2b39a18e6e5a5fdb3ad4a2f48979c42bbe74eb1a0706219e62bcb1fbe1",
						"title":        "Master services agreement",
						"signers":      ["0xfd33700f0511abb60ff31a8a533854db90b0a32a"]
					}
				]
			}`)
			return testABI.ABI().Functions()["getEnvelopes"].Outputs.EncodeABIDataJSON(retJSON)
		},
	})
	defer done()

	fakeContractAddr := ethtypes.MustNewAddress("0xCC3b61E636B395a4821Df122d652820361FF26f1")

	testABI = ec.MustABIJSON(testABIJSON)
	getEnvelopesReq := testABI.MustFunction("getEnvelopes").R(ctx).
		To(fakeContractAddr).
		Input(fmt.Sprintf(`{"initiator": "%s"}`, testKeyAddr))
	if withFrom {
		getEnvelopesReq.From(testKeyAddr)
	}
	if withBlock {
		getEnvelopesReq.Block(12345)
	} else if withBlockRef {
		getEnvelopesReq.BlockRef(PENDING)
	}
	jsonRes, err := getEnvelopesReq.CallJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"envelopes": [
			{
				"documentHash": "0x25c98d2b39a18e6e5a5fdb3ad4a2f48979c42bbe74eb1a0706219e62bcb1fbe1",
				"title":        "Master services agreement",
				"signers":      ["0xfd33700f0511abb60ff31a8a533854db90b0a32a"]
			}
		]
	}`, string(jsonRes))

	var getEnvelopesRes getEnvelopesOutput
	err = getEnvelopesReq.
		Output(&getEnvelopesRes).
		Call()

	require.NoError(t, err)
	require.Len(t, getEnvelopesRes.Envelopes, 1)
	assert.Equal(t, "Master services agreement", getEnvelopesRes.Envelopes[0].Title)

}

func TestCallGetEnvelopesWithFromOk(t *testing.T) {
	testCallGetEnvelopesOk(t, true, false, false)
}

func TestCallGetEnvelopesNoFromWithBlockOk(t *testing.T) {
	testCallGetEnvelopesOk(t, false, true, false)
}

func TestCallGetEnvelopesFromWithBlockRefOk(t *testing.T) {
	testCallGetEnvelopesOk(t, true, false, true)
}

func TestBuildCallDataErrors(t *testing.T) {
	ctx, ec, done := newTestClientAndServer(t, &mockEth{})
	defer done()

	testABI := ec.MustABIJSON(testABIJSON)

	// Missing input
	err := testABI.MustFunction("getEnvelopes").R(ctx).
		To(ethtypes.MustNewAddress("0xCC3b61E636B395a4821Df122d652820361FF26f1")).
		Output(&getEnvelopesOutput{}).
		Call()
	assert.Regexp(t, "IB010302", err)

	// Missing to
	err = testABI.MustFunction("getEnvelopes").R(ctx).
		Input(`{}`).
		Output(&getEnvelopesOutput{}).
		Call()
	assert.Regexp(t, "IB010304", err)

	// Missing output
	err = testABI.MustFunction("getEnvelopes").R(ctx).
		To(ethtypes.MustNewAddress("0xCC3b61E636B395a4821Df122d652820361FF26f1")).
		Input(`{}`).
		Call()
	assert.Regexp(t, "IB010303", err)

	// Bad input for the selected function
	err = testABI.MustFunction("getEnvelopes").R(ctx).
		To(ethtypes.MustNewAddress("0xCC3b61E636B395a4821Df122d652820361FF26f1")).
		Input(`{"initiator": "not an address"}`).
		Output(&getEnvelopesOutput{}).
		Call()
	assert.Regexp(t, "IB010306", err)

	// Missing signer for a transaction
	_, err = testABI.MustFunction("registerEnvelope").R(ctx).
		To(ethtypes.MustNewAddress("0xCC3b61E636B395a4821Df122d652820361FF26f1")).
		Input(`{"envelope":{"documentHash":"0x25c98d2b39a18e6e5a5fdb3ad4a2f48979c42bbe74eb1a0706219e62bcb1fbe1","title":"t","signers":[]}}`).
		RawTransaction()
	assert.Regexp(t, "IB010305", err)
}
