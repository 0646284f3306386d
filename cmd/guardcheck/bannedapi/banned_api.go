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

// Package bannedapi provides an analyzer reporting uses of banned imports and
// functions.
package bannedapi

import (
	"errors"
	"flag"
	"fmt"
	"go/token"
	"go/types"
	"path"
	"strconv"
	"strings"

	"github.com/storefront/reqguard/cmd/guardcheck/config"
	"golang.org/x/tools/go/analysis"
)

// NewAnalyzer returns an analyzer that checks for usage of banned APIs. The
// configs flag takes a comma separated list of config files.
func NewAnalyzer() *analysis.Analyzer {
	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.String("configs", "", "Config files with banned APIs separated by a comma")

	return &analysis.Analyzer{
		Name:  "bannedapi",
		Doc:   "Checks for usage of banned APIs",
		Run:   run,
		Flags: *fs,
	}
}

func run(pass *analysis.Pass) (any, error) {
	files := pass.Analyzer.Flags.Lookup("configs").Value.String()
	if files == "" {
		return nil, errors.New("missing config files")
	}
	cfg, err := config.ReadConfigs(strings.Split(files, ","))
	if err != nil {
		return nil, err
	}

	if err := checkImports(pass, byName(cfg.Imports)); err != nil {
		return nil, err
	}
	return nil, checkFunctions(pass, byName(cfg.Functions))
}

func checkImports(pass *analysis.Pass, banned map[string][]config.BannedAPI) error {
	for _, f := range pass.Files {
		for _, spec := range f.Imports {
			name, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			if err := report(pass, name, banned, spec.Pos()); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkFunctions(pass *analysis.Pass, banned map[string][]config.BannedAPI) error {
	for id, obj := range pass.TypesInfo.Uses {
		fn, ok := obj.(*types.Func)
		if !ok || fn.Pkg() == nil {
			continue
		}
		if err := report(pass, fn.FullName(), banned, id.Pos()); err != nil {
			return err
		}
	}
	return nil
}

func report(pass *analysis.Pass, name string, banned map[string][]config.BannedAPI, pos token.Pos) error {
	apis, ok := banned[name]
	if !ok {
		return nil
	}
	for _, api := range apis {
		allowed, err := exempt(pass.Pkg.Path(), api.Exemptions)
		if err != nil {
			return err
		}
		if allowed {
			continue
		}
		pass.Report(analysis.Diagnostic{
			Pos:     pos,
			Message: fmt.Sprintf("Banned API found %q. Additional info: %s", name, api.Msg),
		})
	}
	return nil
}

func exempt(pkg string, exemptions []config.Exemption) (bool, error) {
	for _, e := range exemptions {
		if prefix, ok := strings.CutSuffix(e.AllowedPkg, "/..."); ok {
			if pkg == prefix || strings.HasPrefix(pkg, prefix+"/") {
				return true, nil
			}
			continue
		}
		match, err := path.Match(e.AllowedPkg, pkg)
		if err != nil {
			return false, fmt.Errorf("exemption %q: %w", e.AllowedPkg, err)
		}
		if match {
			return true, nil
		}
	}
	return false, nil
}

func byName(apis []config.BannedAPI) map[string][]config.BannedAPI {
	m := make(map[string][]config.BannedAPI, len(apis))
	for _, api := range apis {
		m[api.Name] = append(m[api.Name], api)
	}
	return m
}
