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

package keymgr

import (
	"context"
	"encoding/hex"
	"math/big"
	"strings"
	"sync"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/hyperledger/firefly-signer/pkg/secp256k1"
	"github.com/inkbound-io/inkbound/internal/msgs"
)

// KeyManager is the signing boundary consumed by the eth client. The payload passed
// to Sign is the keccak-256 hash of the transaction signature payload, and the
// response is packed in the ethereum R,S,V compact convention.
type KeyManager interface {
	Address(ctx context.Context) (ethtypes.Address0xHex, error)
	Verifier(ctx context.Context) (string, error)
	Sign(ctx context.Context, payload []byte) ([]byte, error)
	Close()
}

// transientKeyManager wraps a single credential for the duration of one signing
// operation. The key material never leaves the process and is zeroed on Close.
type transientKeyManager struct {
	lock     sync.Mutex
	keypair  *secp256k1.KeyPair
	released bool
}

func NewTransientKeyManager(ctx context.Context, privateKeyHex string) (KeyManager, error) {
	keyBytes, err := hex.DecodeString(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil || len(keyBytes) != 32 {
		return nil, i18n.NewError(ctx, msgs.MsgInvalidCredential)
	}
	defer zero(keyBytes)
	keypair, err := secp256k1.NewSecp256k1KeyPair(keyBytes)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgInvalidCredential)
	}
	return &transientKeyManager{keypair: keypair}, nil
}

func (km *transientKeyManager) Address(ctx context.Context) (ethtypes.Address0xHex, error) {
	km.lock.Lock()
	defer km.lock.Unlock()
	if km.released {
		return ethtypes.Address0xHex{}, i18n.NewError(ctx, msgs.MsgSigningKeyReleased)
	}
	return km.keypair.Address, nil
}

func (km *transientKeyManager) Verifier(ctx context.Context) (string, error) {
	addr, err := km.Address(ctx)
	if err != nil {
		return "", err
	}
	return (ethtypes.AddressWithChecksum)(addr).String(), nil
}

func (km *transientKeyManager) Sign(ctx context.Context, payload []byte) ([]byte, error) {
	km.lock.Lock()
	defer km.lock.Unlock()
	if km.released {
		return nil, i18n.NewError(ctx, msgs.MsgSigningKeyReleased)
	}
	sig, err := km.keypair.SignDirect(payload)
	if err != nil {
		return nil, err
	}
	return CompactRSV(sig), nil
}

func (km *transientKeyManager) Close() {
	km.lock.Lock()
	defer km.lock.Unlock()
	if !km.released {
		km.keypair.PrivateKey.Zero()
		km.released = true
	}
}

// We use the ethereum convention of R,S,V for compact packing (mentioned because Golang tends to prefer V,R,S)
func CompactRSV(sig *secp256k1.SignatureData) []byte {
	signatureBytes := make([]byte, 65)
	sig.R.FillBytes(signatureBytes[0:32])
	sig.S.FillBytes(signatureBytes[32:64])
	signatureBytes[64] = byte(sig.V.Int64())
	return signatureBytes
}

func DecodeCompactRSV(ctx context.Context, compactRSV []byte) (*secp256k1.SignatureData, error) {
	if len(compactRSV) != 65 {
		return nil, i18n.NewError(ctx, msgs.MsgInvalidCompactRSV, len(compactRSV))
	}
	var sig secp256k1.SignatureData
	sig.R = new(big.Int).SetBytes(compactRSV[0:32])
	sig.S = new(big.Int).SetBytes(compactRSV[32:64])
	sig.V = new(big.Int).SetInt64(int64(compactRSV[64]))
	return &sig, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
