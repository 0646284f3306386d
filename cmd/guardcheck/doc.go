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

// Command guardcheck reports uses of APIs that bypass the request guard.
//
// Handlers behind the guard must send errors through apierror, so that
// clients never see raw error text, and must set cookies through
// guard.ResponseWriter.AddCookie. guardcheck resolves fully qualified import
// paths and function names and checks them against JSON config files;
// guardcheck.json in this directory holds the rules for this repository.
//
// Config
//
//	{
//		"functions": [
//			{
//				"name": "net/http.Error",
//				"msg": "use apierror",
//				"exemptions": [
//					{
//						"justification": "framework fallback",
//						"allowedPkg": "github.com/storefront/reqguard/guard"
//					}
//				]
//			}
//		],
//		"imports": [
//			{"name": "math/rand", "msg": "use crypto/rand"}
//		]
//	}
//
// allowedPkg uses path.Match syntax; a trailing "/..." also matches every
// package below the prefix. Entries from several files are checked
// independently, so an exemption in one file does not silence a ban in
// another.
//
// Usage
//
//	$ guardcheck -configs cmd/guardcheck/guardcheck.json ./...
//	storefront/handlers.go:42:3: Banned API found "net/http.Error". Additional info: ...
package main
