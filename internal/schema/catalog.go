// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package schema

import (
	"embed"
	"sync"

	"github.com/samber/oops"

	"github.com/holomush/propsuite/pkg/validate"
)

//go:embed catalog/*.yaml catalog/*.expect
var catalogFS embed.FS

// Catalog is a built-in table together with the expectations checked
// against sets built from it.
type Catalog struct {
	Table        *Table
	Expectations []validate.Expectation
}

// Built-in catalog names.
const (
	CatalogHost             = "host"
	CatalogPluginDescriptor = "plugin_descriptor"
)

var (
	catalogMu    sync.Mutex
	catalogCache = map[string]*Catalog{}
)

// LoadCatalog returns a built-in catalog by name.
func LoadCatalog(name string) (*Catalog, error) {
	catalogMu.Lock()
	defer catalogMu.Unlock()

	if c, ok := catalogCache[name]; ok {
		return c, nil
	}

	data, err := catalogFS.ReadFile("catalog/" + name + ".yaml")
	if err != nil {
		return nil, oops.With("catalog", name).Wrapf(err, "unknown catalog %q", name)
	}
	table, err := LoadTable(data)
	if err != nil {
		return nil, err
	}

	src, err := catalogFS.ReadFile("catalog/" + name + ".expect")
	if err != nil {
		return nil, oops.With("catalog", name).Wrapf(err, "catalog %q has no expectations", name)
	}
	exps, err := ParseExpectations(name+".expect", string(src))
	if err != nil {
		return nil, err
	}

	c := &Catalog{Table: table, Expectations: exps}
	catalogCache[name] = c
	return c, nil
}

// MustCatalog is like LoadCatalog but panics on error. The built-in catalogs
// are compiled in, so an error is a build defect.
func MustCatalog(name string) *Catalog {
	c, err := LoadCatalog(name)
	if err != nil {
		panic(err)
	}
	return c
}
