/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML layout accepted by Load:
//
//	entities:
//	  - name: User
//	    stores:
//	      - name: ContactInfo
//	        fields: [email, phone]
//	      - name: Preferences
//	        table: user_preferences
type File struct {
	Entities []EntityFile `yaml:"entities"`
}

// EntityFile is one entity type entry of a registry File.
type EntityFile struct {
	Name   string                 `yaml:"name"`
	Stores []CompanionStoreConfig `yaml:"stores"`
}

// Load decodes a registry description and registers every store in file order.
// An entity without stores gets the single default store.
func Load(r io.Reader, opts ...BuilderOption) (*StoreRegistry, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode registry: %w", err)
	}

	b := NewBuilder(opts...)
	for _, e := range f.Entities {
		stores := e.Stores
		if len(stores) == 0 {
			stores = []CompanionStoreConfig{{}}
		}
		for _, s := range stores {
			if err := b.Register(e.Name, s); err != nil {
				return nil, err
			}
		}
	}
	return b.Build(), nil
}

// LoadFile reads a registry description from path.
func LoadFile(path string, opts ...BuilderOption) (*StoreRegistry, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open registry file: %w", err)
	}
	defer fh.Close()
	return Load(fh, opts...)
}
