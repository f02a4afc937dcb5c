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

package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/hyperledger/firefly-signer/pkg/ethtypes"
	"github.com/inkbound-io/inkbound/internal/docsign"
	"github.com/inkbound-io/inkbound/internal/document"
	"github.com/inkbound-io/inkbound/internal/keymgr"
	"github.com/inkbound-io/inkbound/internal/msgs"
)

// Workflow is the slice of the signing workflow client the API depends on.
type Workflow interface {
	FactoryConfigured() bool
	CreateContract(ctx context.Context, signer keymgr.KeyManager, req *docsign.CreateRequest) (*docsign.CreateResult, error)
	SignDocument(ctx context.Context, signer keymgr.KeyManager, contractAddress string, metadata string) (*docsign.SignResult, error)
	GetStatus(ctx context.Context, contractAddress string) (*docsign.StatusSnapshot, error)
	ListForInitiator(ctx context.Context, initiator string) ([]*docsign.ContractSummary, error)
}

// Node is the slice of the chain client the API uses for the info endpoint.
type Node interface {
	ChainID() int64
	IsConnected(ctx context.Context) bool
	BlockNumber(ctx context.Context) (uint64, error)
}

type API struct {
	network  string
	workflow Workflow
	store    document.Store
	node     Node
}

func NewAPI(network string, workflow Workflow, store document.Store, node Node) *API {
	return &API{
		network:  network,
		workflow: workflow,
		store:    store,
		node:     node,
	}
}

func (a *API) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/node", a.handleNodeInfo).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/documents", a.handleUploadDocument).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/contracts", a.handleCreateContract).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/contracts", a.handleListContracts).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/contracts/{address}", a.handleGetStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/contracts/{address}/sign", a.handleSignDocument).Methods(http.MethodPost)
	return r
}

type nodeInfo struct {
	Network           string `json:"network"`
	ChainID           int64  `json:"chainId"`
	BlockNumber       uint64 `json:"blockNumber"`
	Connected         bool   `json:"connected"`
	FactoryConfigured bool   `json:"factoryConfigured"`
}

func (a *API) handleNodeInfo(res http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	info := &nodeInfo{
		Network:           a.network,
		ChainID:           a.node.ChainID(),
		FactoryConfigured: a.workflow.FactoryConfigured(),
	}
	blockNumber, err := a.node.BlockNumber(ctx)
	if err == nil {
		info.Connected = true
		info.BlockNumber = blockNumber
	}
	writeJSON(ctx, res, http.StatusOK, info)
}

type uploadDocumentRequest struct {
	Filename string `json:"filename"`
	Document string `json:"document"` // base64
}

func (a *API) handleUploadDocument(res http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	var input uploadDocumentRequest
	if !decodeBody(ctx, res, req, &input) {
		return
	}
	data, ok := decodeDocument(ctx, res, input.Document)
	if !ok {
		return
	}
	fingerprint, err := document.Compute(ctx, a.store, input.Filename, data)
	if err != nil {
		writeError(ctx, res, err)
		return
	}
	writeJSON(ctx, res, http.StatusCreated, fingerprint)
}

type createContractRequest struct {
	PrivateKey        string                    `json:"privateKey"`
	Filename          string                    `json:"filename"`
	Document          string                    `json:"document"` // base64, alternative to hash+pointer
	DocumentHash      ethtypes.HexBytes0xPrefix `json:"documentHash"`
	StoragePointer    string                    `json:"storagePointer"`
	RequiredSigners   []string                  `json:"requiredSigners"`
	SequentialSigning bool                      `json:"sequentialSigning"`
	Title             string                    `json:"title"`
	Description       string                    `json:"description"`
}

func (a *API) handleCreateContract(res http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	var input createContractRequest
	if !decodeBody(ctx, res, req, &input) {
		return
	}
	signer, ok := transientSigner(ctx, res, input.PrivateKey)
	if !ok {
		return
	}
	defer signer.Close()

	createReq := &docsign.CreateRequest{
		DocumentHash:      input.DocumentHash,
		StoragePointer:    input.StoragePointer,
		RequiredSigners:   input.RequiredSigners,
		SequentialSigning: input.SequentialSigning,
		Title:             input.Title,
		Description:       input.Description,
	}
	if input.Document != "" {
		data, ok := decodeDocument(ctx, res, input.Document)
		if !ok {
			return
		}
		fingerprint, err := document.Compute(ctx, a.store, input.Filename, data)
		if err != nil {
			writeError(ctx, res, err)
			return
		}
		createReq.DocumentHash = fingerprint.ContentHash
		createReq.StoragePointer = fingerprint.StoragePointer
	} else if len(input.DocumentHash) == 0 {
		writeError(ctx, res, i18n.NewError(ctx, msgs.MsgAPIMissingField, "documentHash"))
		return
	}

	result, err := a.workflow.CreateContract(ctx, signer, createReq)
	if err != nil {
		writeError(ctx, res, err)
		return
	}
	writeJSON(ctx, res, http.StatusCreated, result)
}

type signDocumentRequest struct {
	PrivateKey string `json:"privateKey"`
	Metadata   string `json:"metadata"`
}

func (a *API) handleSignDocument(res http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	var input signDocumentRequest
	if !decodeBody(ctx, res, req, &input) {
		return
	}
	signer, ok := transientSigner(ctx, res, input.PrivateKey)
	if !ok {
		return
	}
	defer signer.Close()

	result, err := a.workflow.SignDocument(ctx, signer, mux.Vars(req)["address"], input.Metadata)
	if err != nil {
		writeError(ctx, res, err)
		return
	}
	writeJSON(ctx, res, http.StatusOK, result)
}

func (a *API) handleGetStatus(res http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	snapshot, err := a.workflow.GetStatus(ctx, mux.Vars(req)["address"])
	if err != nil {
		writeError(ctx, res, err)
		return
	}
	writeJSON(ctx, res, http.StatusOK, snapshot)
}

func (a *API) handleListContracts(res http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	initiator := req.URL.Query().Get("initiator")
	if initiator == "" {
		writeError(ctx, res, i18n.NewError(ctx, msgs.MsgAPIMissingField, "initiator"))
		return
	}
	contracts, err := a.workflow.ListForInitiator(ctx, initiator)
	if err != nil {
		writeError(ctx, res, err)
		return
	}
	writeJSON(ctx, res, http.StatusOK, contracts)
}

func decodeBody(ctx context.Context, res http.ResponseWriter, req *http.Request, v interface{}) bool {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		writeError(ctx, res, i18n.NewError(ctx, msgs.MsgAPIBadRequest, err))
		return false
	}
	return true
}

func decodeDocument(ctx context.Context, res http.ResponseWriter, b64 string) ([]byte, bool) {
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		writeError(ctx, res, i18n.NewError(ctx, msgs.MsgAPIBadRequest, err))
		return nil, false
	}
	return data, true
}

// transientSigner builds a single-use key manager from the caller-supplied key
// material. The caller of the API holds the key, not the server - the key only
// lives for the duration of the request. Invalid key material is the caller's
// fault, so it maps to a bad request rather than the signing error code.
func transientSigner(ctx context.Context, res http.ResponseWriter, privateKeyHex string) (keymgr.KeyManager, bool) {
	if privateKeyHex == "" {
		writeError(ctx, res, i18n.NewError(ctx, msgs.MsgAPIMissingField, "privateKey"))
		return nil, false
	}
	signer, err := keymgr.NewTransientKeyManager(ctx, privateKeyHex)
	if err != nil {
		writeError(ctx, res, i18n.WrapError(ctx, err, msgs.MsgAPIBadRequest, "privateKey"))
		return nil, false
	}
	return signer, true
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(ctx context.Context, res http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var ffe i18n.FFError
	if errors.As(err, &ffe) {
		status = ffe.HTTPStatus()
	}
	log.L(ctx).Errorf("<-- [%d]: %s", status, err)
	writeJSON(ctx, res, status, &errorResponse{Error: err.Error()})
}

func writeJSON(ctx context.Context, res http.ResponseWriter, status int, v interface{}) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(v); err != nil {
		log.L(ctx).Errorf("Failed to write response: %s", err)
	}
}
