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
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
)

// LifecycleStatus is the application-level view of the status code owned by
// the signer contract. The client never re-derives it from other fields, and
// any code outside the known table maps to UNKNOWN rather than failing.
type LifecycleStatus string

const (
	StatusInitiated  LifecycleStatus = "INITIATED"
	StatusInProgress LifecycleStatus = "IN_PROGRESS"
	StatusCompleted  LifecycleStatus = "COMPLETED"
	StatusCancelled  LifecycleStatus = "CANCELLED"
	StatusUnknown    LifecycleStatus = "UNKNOWN"
)

var lifecycleStatusCodes = []LifecycleStatus{
	StatusInitiated,
	StatusInProgress,
	StatusCompleted,
	StatusCancelled,
}

func LifecycleStatusFromCode(code int64) LifecycleStatus {
	if code < 0 || code >= int64(len(lifecycleStatusCodes)) {
		return StatusUnknown
	}
	return lifecycleStatusCodes[code]
}

// SignatureRecord is one recorded signature on a signing contract.
type SignatureRecord struct {
	Signer        ethtypes.Address0xHex     `json:"signer"`
	Timestamp     *ethtypes.HexInteger      `json:"timestamp"`
	SignatureHash ethtypes.HexBytes0xPrefix `json:"signatureHash"`
	Metadata      string                    `json:"metadata"`
}

// StatusSnapshot is a best-effort point-in-time view of a signing contract,
// merged from several independent read calls. The reads are not atomic
// on-chain, so a snapshot is never a committed multi-field transaction.
type StatusSnapshot struct {
	ContractAddress ethtypes.Address0xHex     `json:"contractAddress"`
	RequiredSigners []ethtypes.Address0xHex   `json:"requiredSigners"`
	Signatures      []*SignatureRecord        `json:"signatures"`
	IsFullySigned   bool                      `json:"isFullySigned"`
	SignedCount     int64                     `json:"signedCount"`
	TotalSigners    int64                     `json:"totalSigners"`
	LifecycleStatus LifecycleStatus           `json:"lifecycleStatus"`
	DocumentHash    ethtypes.HexBytes0xPrefix `json:"documentHash"`
	StoragePointer  string                    `json:"storagePointer"`
}

// CreateRequest describes a new signing contract to register via the factory.
type CreateRequest struct {
	DocumentHash      ethtypes.HexBytes0xPrefix `json:"documentHash"`
	StoragePointer    string                    `json:"storagePointer"`
	RequiredSigners   []string                  `json:"requiredSigners"`
	SequentialSigning bool                      `json:"sequentialSigning"`
	Title             string                    `json:"title"`
	Description       string                    `json:"description"`
}

// CreateResult carries the on-chain identifiers assigned during creation. The
// contract address is recovered from the ContractCreated event - it is not a
// deterministic function of the inputs.
type CreateResult struct {
	ContractAddress ethtypes.Address0xHex     `json:"contractAddress"`
	TransactionHash ethtypes.HexBytes0xPrefix `json:"transactionHash"`
	BlockNumber     *ethtypes.HexInteger      `json:"blockNumber"`
}

// SignResult is the confirmation of a single signDocument transaction.
type SignResult struct {
	ContractAddress ethtypes.Address0xHex     `json:"contractAddress"`
	TransactionHash ethtypes.HexBytes0xPrefix `json:"transactionHash"`
	BlockNumber     *ethtypes.HexInteger      `json:"blockNumber"`
}

// ContractSummary is one entry of a directory listing - the factory's base
// metadata for a contract enriched with its reconciled status snapshot.
type ContractSummary struct {
	Address        ethtypes.Address0xHex     `json:"address"`
	Title          string                    `json:"title"`
	Description    string                    `json:"description"`
	DocumentHash   ethtypes.HexBytes0xPrefix `json:"documentHash"`
	StoragePointer string                    `json:"storagePointer"`
	CreatedAt      *ethtypes.HexInteger      `json:"createdAt"`
	IsActive       bool                      `json:"isActive"`
	Status         *StatusSnapshot           `json:"status"`
}
