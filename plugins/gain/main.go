// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package main implements the gain example plugin.
//
// Build with:
//
//	go build -o plugins/gain/gain ./plugins/gain
package main

import "github.com/holomush/propsuite/pkg/pluginsdk"

func main() {
	pluginsdk.Serve(&pluginsdk.ServeConfig{Handler: gain{}})
}
