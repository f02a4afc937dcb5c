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

// The factory and signer contracts are external collaborators with a fixed
// interface. Output parameters are named so decoded results deserialize into
// tagged structs rather than positional index keys.

var FactoryABIJSON = []byte(`[
	{
		"name": "createSigningContract",
		"type": "function",
		"inputs": [
			{ "name": "documentHash", "type": "bytes32" },
			{ "name": "ipfsCid", "type": "string" },
			{ "name": "requiredSigners", "type": "address[]" },
			{ "name": "sequentialSigning", "type": "bool" },
			{ "name": "title", "type": "string" },
			{ "name": "description", "type": "string" }
		],
		"outputs": []
	},
	{
		"name": "getContractsByInitiator",
		"type": "function",
		"stateMutability": "view",
		"inputs": [
			{ "name": "initiator", "type": "address" }
		],
		"outputs": [
			{ "name": "contracts", "type": "address[]" }
		]
	},
	{
		"name": "getContractInfo",
		"type": "function",
		"stateMutability": "view",
		"inputs": [
			{ "name": "contractAddress", "type": "address" }
		],
		"outputs": [
			{ "name": "initiator", "type": "address" },
			{ "name": "documentHash", "type": "bytes32" },
			{ "name": "ipfsCid", "type": "string" },
			{ "name": "description", "type": "string" },
			{ "name": "createdAt", "type": "uint256" },
			{ "name": "isActive", "type": "bool" },
			{ "name": "title", "type": "string" }
		]
	},
	{
		"name": "ContractCreated",
		"type": "event",
		"inputs": [
			{ "name": "contractAddress", "type": "address", "indexed": true },
			{ "name": "initiator", "type": "address", "indexed": true },
			{ "name": "documentHash", "type": "bytes32" }
		]
	}
]`)

var SignerABIJSON = []byte(`[
	{
		"name": "signDocument",
		"type": "function",
		"inputs": [
			{ "name": "metadata", "type": "string" }
		],
		"outputs": []
	},
	{
		"name": "getSignatures",
		"type": "function",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [
			{
				"name": "signatures",
				"type": "tuple[]",
				"components": [
					{ "name": "signer", "type": "address" },
					{ "name": "timestamp", "type": "uint256" },
					{ "name": "signatureHash", "type": "bytes32" },
					{ "name": "metadata", "type": "string" }
				]
			}
		]
	},
	{
		"name": "isFullySigned",
		"type": "function",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [
			{ "name": "fullySigned", "type": "bool" }
		]
	},
	{
		"name": "getRequiredSigners",
		"type": "function",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [
			{ "name": "signers", "type": "address[]" }
		]
	},
	{
		"name": "getSigningProgress",
		"type": "function",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [
			{ "name": "signedCount", "type": "uint256" },
			{ "name": "totalSigners", "type": "uint256" }
		]
	},
	{
		"name": "status",
		"type": "function",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [
			{ "name": "code", "type": "uint8" }
		]
	},
	{
		"name": "documentHash",
		"type": "function",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [
			{ "name": "hash", "type": "bytes32" }
		]
	},
	{
		"name": "ipfsCid",
		"type": "function",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [
			{ "name": "cid", "type": "string" }
		]
	}
]`)
