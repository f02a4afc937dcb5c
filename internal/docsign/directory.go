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
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/inkbound-io/inkbound/internal/msgs"
)

type contractsByInitiatorOutput struct {
	Contracts []ethtypes.Address0xHex `json:"contracts"`
}

type contractInfoOutput struct {
	Initiator    *ethtypes.Address0xHex    `json:"initiator"`
	DocumentHash ethtypes.HexBytes0xPrefix `json:"documentHash"`
	IpfsCid      string                    `json:"ipfsCid"`
	Description  string                    `json:"description"`
	CreatedAt    *ethtypes.HexInteger      `json:"createdAt"`
	IsActive     bool                      `json:"isActive"`
	Title        string                    `json:"title"`
}

// ListForInitiator enumerates every contract an address initiated via the
// factory's per-initiator index, enriching each with the factory metadata and
// a reconciled status snapshot. A failure enriching one entry never aborts
// the listing - that entry is logged and skipped, the rest are returned.
func (c *Client) ListForInitiator(ctx context.Context, initiator string) ([]*ContractSummary, error) {
	if c.factoryAddr == nil {
		return nil, i18n.NewError(ctx, msgs.MsgFactoryNotConfigured, c.network)
	}
	initiatorAddr, err := ethtypes.NewAddress(initiator)
	if err != nil {
		return nil, i18n.WrapError(ctx, err, msgs.MsgInvalidSignerAddress, initiator)
	}

	var contracts contractsByInitiatorOutput
	err = c.factory.MustFunction("getContractsByInitiator").R(ctx).
		To(c.factoryAddr).
		Input(map[string]interface{}{"initiator": initiatorAddr.String()}).
		Output(&contracts).
		Call()
	if err != nil {
		return nil, err
	}

	summaries := make([]*ContractSummary, 0, len(contracts.Contracts))
	for _, addr := range contracts.Contracts {
		summary, err := c.enrichContract(ctx, addr)
		if err != nil {
			log.L(ctx).Warnf("Skipping contract %s in listing for %s: %s", addr.String(), initiatorAddr, err)
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (c *Client) enrichContract(ctx context.Context, addr ethtypes.Address0xHex) (*ContractSummary, error) {
	var info contractInfoOutput
	err := c.factory.MustFunction("getContractInfo").R(ctx).
		To(c.factoryAddr).
		Input(map[string]interface{}{"contractAddress": addr.String()}).
		Output(&info).
		Call()
	if err != nil {
		return nil, err
	}
	snapshot, err := c.GetStatus(ctx, addr.String())
	if err != nil {
		return nil, err
	}
	return &ContractSummary{
		Address:        addr,
		Title:          info.Title,
		Description:    info.Description,
		DocumentHash:   info.DocumentHash,
		StoragePointer: info.IpfsCid,
		CreatedAt:      info.CreatedAt,
		IsActive:       info.IsActive,
		Status:         snapshot,
	}, nil
}
