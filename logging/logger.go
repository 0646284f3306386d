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

// Package logging configures the zerolog loggers used across reqguard.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logging configuration.
type Config struct {
	// Level is a zerolog level name. Unknown or empty levels mean info.
	Level string `yaml:"level"`
	// Pretty selects human readable console output instead of JSON.
	Pretty bool `yaml:"pretty"`
}

// ParseLevel returns the zerolog level for name, falling back to info.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// New returns a logger writing to w. A nil w means os.Stdout.
func New(cfg Config, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
}

// Setup installs a logger built from cfg as the global log.Logger.
func Setup(cfg Config) {
	log.Logger = New(cfg, os.Stdout)
}

// Or returns l, or the global logger when l is nil.
func Or(l *zerolog.Logger) *zerolog.Logger {
	if l != nil {
		return l
	}
	return &log.Logger
}
