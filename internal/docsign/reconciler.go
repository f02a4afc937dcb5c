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
	"context"

	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/inkbound-io/inkbound/internal/msgs"
)

type signaturesOutput struct {
	Signatures []*SignatureRecord `json:"signatures"`
}

type fullySignedOutput struct {
	FullySigned bool `json:"fullySigned"`
}

type requiredSignersOutput struct {
	Signers []ethtypes.Address0xHex `json:"signers"`
}

type progressOutput struct {
	SignedCount  *ethtypes.HexInteger `json:"signedCount"`
	TotalSigners *ethtypes.HexInteger `json:"totalSigners"`
}

type statusOutput struct {
	Code *ethtypes.HexInteger `json:"code"`
}

type documentHashOutput struct {
	Hash ethtypes.HexBytes0xPrefix `json:"hash"`
}

type ipfsCidOutput struct {
	Cid string `json:"cid"`
}

// GetStatus reads the full state of a signing contract and merges it into one
// snapshot. The individual getter calls are independent reads that could in
// principle observe different block heights under a reorganizing chain, so
// the snapshot is a best-effort point-in-time view. Re-querying is always
// safe and idempotent.
func (c *Client) GetStatus(ctx context.Context, contractAddress string) (*StatusSnapshot, error) {
	contractAddr, err := ethtypes.NewAddress(contractAddress)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgInvalidContractAddress, contractAddress)
	}

	read := func(fn string, output interface{}) error {
		return c.signer.MustFunction(fn).R(ctx).
			To(contractAddr).
			Input(`{}`).
			Output(output).
			Call()
	}

	var signatures signaturesOutput
	var fullySigned fullySignedOutput
	var requiredSigners requiredSignersOutput
	var progress progressOutput
	var status statusOutput
	var documentHash documentHashOutput
	var cid ipfsCidOutput
	if err == nil {
		err = read("getSignatures", &signatures)
	}
	if err == nil {
		err = read("isFullySigned", &fullySigned)
	}
	if err == nil {
		err = read("getRequiredSigners", &requiredSigners)
	}
	if err == nil {
		err = read("getSigningProgress", &progress)
	}
	if err == nil {
		err = read("status", &status)
	}
	if err == nil {
		err = read("documentHash", &documentHash)
	}
	if err == nil {
		err = read("ipfsCid", &cid)
	}
	if err != nil {
		return nil, err
	}

	snapshot := &StatusSnapshot{
		ContractAddress: *contractAddr,
		RequiredSigners: requiredSigners.Signers,
		Signatures:      signatures.Signatures,
		IsFullySigned:   fullySigned.FullySigned,
		SignedCount:     progress.SignedCount.BigInt().Int64(),
		TotalSigners:    progress.TotalSigners.BigInt().Int64(),
		LifecycleStatus: LifecycleStatusFromCode(status.Code.BigInt().Int64()),
		DocumentHash:    documentHash.Hash,
		StoragePointer:  cid.Cid,
	}
	if snapshot.SignedCount != int64(len(snapshot.Signatures)) ||
		snapshot.SignedCount > snapshot.TotalSigners ||
		snapshot.IsFullySigned != (snapshot.SignedCount == snapshot.TotalSigners) {
		return nil, i18n.NewError(ctx, msgs.MsgSnapshotInvariantViolated,
			contractAddr, snapshot.SignedCount, len(snapshot.Signatures), snapshot.TotalSigners)
	}
	return snapshot, nil
}
