// Copyright 2025 The reqguard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config reads the banned API definitions used by guardcheck.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Config is the content of one configuration file.
type Config struct {
	Imports   []BannedAPI `json:"imports"`
	Functions []BannedAPI `json:"functions"`
}

// BannedAPI is an import path or a fully qualified function name that must
// not be used.
type BannedAPI struct {
	// Name is an import path such as "math/rand" or a function such as
	// "net/http.Error".
	Name string `json:"name"`
	// Msg explains what to use instead.
	Msg        string      `json:"msg"`
	Exemptions []Exemption `json:"exemptions"`
}

// Exemption allows a package to use a banned API.
type Exemption struct {
	Justification string `json:"justification"`
	// AllowedPkg is a package path pattern in path.Match syntax. A trailing
	// "/..." also matches every package below it.
	AllowedPkg string `json:"allowedPkg"`
}

// ReadConfigs reads every file and concatenates their definitions.
func ReadConfigs(files []string) (*Config, error) {
	cfg := &Config{Imports: []BannedAPI{}, Functions: []BannedAPI{}}
	for _, file := range files {
		c, err := readConfig(file)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}
		cfg.Imports = append(cfg.Imports, c.Imports...)
		cfg.Functions = append(cfg.Functions, c.Functions...)
	}
	return cfg, nil
}

func readConfig(filename string) (*Config, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, errors.New("file is a directory")
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
