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
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/inkbound-io/inkbound/internal/rpcclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIPFS(t *testing.T, handler http.HandlerFunc) (context.Context, Store, func()) {
	ctx := context.Background()
	server := httptest.NewServer(handler)
	store, err := NewIPFSStore(ctx, &StoreConfig{
		API: rpcclient.HTTPConfig{URL: server.URL},
	})
	require.NoError(t, err)
	return ctx, store, server.Close
}

func TestIPFSUploadOK(t *testing.T) {
	ctx, store, done := newTestIPFS(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v0/add", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "agreement.pdf", header.Filename)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("file contents"), data)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Name":"agreement.pdf","Hash":"QmSoLPppuBtQSGwKDZT2M73ULpjvfd3aZ6ha4oFGL1KrGM","Size":"13"}`))
	})
	defer done()

	cid, err := store.Upload(ctx, "agreement.pdf", []byte("file contents"))
	require.NoError(t, err)
	assert.Equal(t, "QmSoLPppuBtQSGwKDZT2M73ULpjvfd3aZ6ha4oFGL1KrGM", cid)
}

func TestIPFSUploadServerError(t *testing.T) {
	ctx, store, done := newTestIPFS(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`pop`))
	})
	defer done()

	_, err := store.Upload(ctx, "agreement.pdf", []byte("file contents"))
	assert.Regexp(t, "IB010501.*500", err)
}

func TestIPFSUploadEmptyPointer(t *testing.T) {
	ctx, store, done := newTestIPFS(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})
	defer done()

	_, err := store.Upload(ctx, "agreement.pdf", []byte("file contents"))
	assert.Regexp(t, "IB010502", err)
}

func TestIPFSUploadEmptyDocument(t *testing.T) {
	ctx, store, done := newTestIPFS(t, func(w http.ResponseWriter, r *http.Request) {})
	defer done()

	_, err := store.Upload(ctx, "agreement.pdf", nil)
	assert.Regexp(t, "IB010500", err)
}

func TestComputeFingerprint(t *testing.T) {
	ctx, store, done := newTestIPFS(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"Name":"a.txt","Hash":"QmCid","Size":"3"}`))
	})
	defer done()

	fp, err := Compute(ctx, store, "a.txt", []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, "0xba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", fp.ContentHash.String())
	assert.Equal(t, "QmCid", fp.StoragePointer)

	_, err = Compute(ctx, store, "a.txt", nil)
	assert.Regexp(t, "IB010500", err)
}

func TestIPFSStoreNotConfigured(t *testing.T) {
	_, err := NewIPFSStore(context.Background(), &StoreConfig{})
	assert.Regexp(t, "IB010107", err)
}

func TestNewStoreUnconfiguredFailsUploads(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, &StoreConfig{})
	require.NoError(t, err)

	_, err = store.Upload(ctx, "a.txt", []byte("abc"))
	assert.Regexp(t, "IB010107", err)
}

func TestNewStoreConfigured(t *testing.T) {
	ctx := context.Background()
	server := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		res.Header().Set("Content-Type", "application/json")
		_, _ = res.Write([]byte(`{"Name":"a.txt","Hash":"QmCid","Size":"3"}`))
	}))
	defer server.Close()

	store, err := NewStore(ctx, &StoreConfig{API: rpcclient.HTTPConfig{URL: server.URL}})
	require.NoError(t, err)

	pointer, err := store.Upload(ctx, "a.txt", []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, "QmCid", pointer)
}

func TestNewStoreCachesIdenticalContent(t *testing.T) {
	ctx := context.Background()
	uploads := 0
	server := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		uploads++
		res.Header().Set("Content-Type", "application/json")
		_, _ = res.Write([]byte(`{"Name":"a.txt","Hash":"QmCid","Size":"3"}`))
	}))
	defer server.Close()

	store, err := NewStore(ctx, &StoreConfig{API: rpcclient.HTTPConfig{URL: server.URL}})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		pointer, err := store.Upload(ctx, "a.txt", []byte("abc"))
		require.NoError(t, err)
		assert.Equal(t, "QmCid", pointer)
	}
	assert.Equal(t, 1, uploads)

	_, err = store.Upload(ctx, "a.txt", nil)
	assert.Regexp(t, "IB010500", err)
}

func TestIPFSStoreBadURL(t *testing.T) {
	_, err := NewIPFSStore(context.Background(), &StoreConfig{
		API: rpcclient.HTTPConfig{URL: "wrong://type"},
	})
	assert.Regexp(t, "IB010200", err)
}
