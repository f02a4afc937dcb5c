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

package document

import (
	"bytes"
	"context"

	"github.com/go-resty/resty/v2"
	"github.com/hyperledger/firefly-common/pkg/i18n"
	"github.com/hyperledger/firefly-common/pkg/log"
	"github.com/inkbound-io/inkbound/internal/cache"
	"github.com/inkbound-io/inkbound/internal/confutil"
	"github.com/inkbound-io/inkbound/internal/msgs"
	"github.com/inkbound-io/inkbound/internal/rpcclient"
)

// Store anchors document content off-chain and returns an opaque storage
// pointer for on-chain reference.
type Store interface {
	Upload(ctx context.Context, filename string, data []byte) (pointer string, err error)
}

type StoreConfig struct {
	API   rpcclient.HTTPConfig `json:"api"`
	Cache cache.Config         `json:"cache"`
}

var StoreDefaults = &StoreConfig{
	Cache: cache.Config{Capacity: confutil.P(100)},
}

type ipfsStore struct {
	client *resty.Client
}

type ipfsAddResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// NewStore returns the configured store, or a stub whose uploads fail when no
// store API URL is set - precomputed fingerprints remain usable either way.
func NewStore(ctx context.Context, conf *StoreConfig) (Store, error) {
	if conf.API.URL == "" {
		log.L(ctx).Warnf("No document store configured - uploads are unavailable")
		return &unconfiguredStore{}, nil
	}
	store, err := NewIPFSStore(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &cachedStore{
		store: store,
		cids:  cache.NewCache[string, string](&conf.Cache, &StoreDefaults.Cache),
	}, nil
}

// cachedStore skips re-uploads of identical content. Storage pointers are
// derived from the content itself, so a hit returns the same pointer the
// backend would.
type cachedStore struct {
	store Store
	cids  cache.Cache[string, string]
}

func (s *cachedStore) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	hash, err := HashContent(ctx, data)
	if err != nil {
		return "", err
	}
	if pointer, ok := s.cids.Get(hash.String()); ok {
		log.L(ctx).Debugf("Document %s already uploaded as %s", hash, pointer)
		return pointer, nil
	}
	pointer, err := s.store.Upload(ctx, filename, data)
	if err != nil {
		return "", err
	}
	s.cids.Set(hash.String(), pointer)
	return pointer, nil
}

type unconfiguredStore struct{}

func (s *unconfiguredStore) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	return "", i18n.NewError(ctx, msgs.MsgStoreNotConfigured)
}

// NewIPFSStore returns a Store backed by the IPFS HTTP API (/api/v0/add).
// The returned pointer is the content identifier (CID) of the uploaded data,
// which is itself derived from the content, so re-uploading identical bytes
// yields the same pointer.
func NewIPFSStore(ctx context.Context, conf *StoreConfig) (Store, error) {
	if conf.API.URL == "" {
		return nil, i18n.NewError(ctx, msgs.MsgStoreNotConfigured)
	}
	client, err := rpcclient.ParseHTTPConfig(ctx, &conf.API)
	if err != nil {
		return nil, err
	}
	return &ipfsStore{client: client}, nil
}

func (s *ipfsStore) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	if _, err := HashContent(ctx, data); err != nil {
		return "", err
	}
	var addResponse ipfsAddResponse
	res, err := s.client.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(data)).
		SetResult(&addResponse).
		Post("/api/v0/add")
	if err != nil {
		return "", i18n.WrapError(ctx, err, msgs.MsgStoreUploadFailed, -1, "request failed")
	}
	if !res.IsSuccess() {
		return "", i18n.NewError(ctx, msgs.MsgStoreUploadFailed, res.StatusCode(), res.String())
	}
	if addResponse.Hash == "" {
		return "", i18n.NewError(ctx, msgs.MsgStoreEmptyPointer)
	}
	log.L(ctx).Debugf("Stored %s (size=%d cid=%s)", filename, len(data), addResponse.Hash)
	return addResponse.Hash, nil
}
