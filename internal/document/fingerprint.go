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

// Package document computes the canonical fingerprint of a document and
// anchors its content in an external store. Only the fingerprint goes
// on-chain; the raw bytes never do.
package document

import (
	"context"
	"crypto/sha256"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/inkbound-io/inkbound/internal/msgs"
)

// Fingerprint is the digest pair that identifies a document: the SHA-256
// content hash that is bound into the on-chain contract, and the storage
// pointer where the full content can be retrieved.
type Fingerprint struct {
	ContentHash    ethtypes.HexBytes0xPrefix `json:"contentHash"`
	StoragePointer string                    `json:"storagePointer"`
}

// HashContent computes the 32-byte SHA-256 digest of the document bytes.
// The same bytes always produce the same digest, so equality of digests is
// the system's definition of "the same document".
func HashContent(ctx context.Context, data []byte) (ethtypes.HexBytes0xPrefix, error) {
	if len(data) == 0 {
		return nil, i18n.NewError(ctx, msgs.MsgDocumentEmpty)
	}
	digest := sha256.Sum256(data)
	return digest[:], nil
}

// Compute hashes the document and anchors it in the store, returning the
// combined fingerprint. The hash is pure; the pointer may legitimately vary
// run-to-run with a non-deterministic store, and callers must not assume
// pointer stability.
func Compute(ctx context.Context, store Store, filename string, data []byte) (*Fingerprint, error) {
	contentHash, err := HashContent(ctx, data)
	if err != nil {
		return nil, err
	}
	pointer, err := store.Upload(ctx, filename, data)
	if err != nil {
		return nil, err
	}
	return &Fingerprint{
		ContentHash:    contentHash,
		StoragePointer: pointer,
	}, nil
}
