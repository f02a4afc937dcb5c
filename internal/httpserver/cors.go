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

package httpserver

import (
	"context"
	"net/http"

	"github.com/inkbound-io/inkbound/internal/confutil"
	"github.com/rs/cors"
)

type CORSConfig struct {
	Enabled          *bool    `json:"enabled"`
	Debug            *bool    `json:"debug"`
	AllowCredentials *bool    `json:"allowCredentials"`
	AllowedHeaders   []string `json:"allowedHeaders"`
	AllowedMethods   []string `json:"allowedMethods"`
	AllowedOrigins   []string `json:"allowedOrigins"`
	MaxAge           *string  `json:"maxAge"`
}

var CORSDefaults = &CORSConfig{
	Enabled:          confutil.P(false),
	Debug:            confutil.P(false),
	AllowCredentials: confutil.P(true),
	AllowedHeaders:   []string{"*"},
	AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
	AllowedOrigins:   []string{"*"},
	MaxAge:           confutil.P("600s"),
}

func WrapCorsIfEnabled(ctx context.Context, chain http.Handler, conf *CORSConfig) http.Handler {
	if !confutil.Bool(conf.Enabled, *CORSDefaults.Enabled) {
		return chain
	}
	allowedHeaders := conf.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = CORSDefaults.AllowedHeaders
	}
	allowedMethods := conf.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = CORSDefaults.AllowedMethods
	}
	allowedOrigins := conf.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = CORSDefaults.AllowedOrigins
	}
	c := cors.New(cors.Options{
		Debug:            confutil.Bool(conf.Debug, *CORSDefaults.Debug),
		AllowCredentials: confutil.Bool(conf.AllowCredentials, *CORSDefaults.AllowCredentials),
		AllowedHeaders:   allowedHeaders,
		AllowedMethods:   allowedMethods,
		AllowedOrigins:   allowedOrigins,
		MaxAge:           int(confutil.DurationSeconds(conf.MaxAge, 0, *CORSDefaults.MaxAge)),
	})
	return c.Handler(chain)
}
