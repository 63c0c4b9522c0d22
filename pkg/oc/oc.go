// Package oc reads and mutates an OpenCore folder's config.plist,
// exposing the ACPI -> Patch list as an idempotent patch store.
package oc

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/blacktop/go-plist"
	"github.com/pkg/errors"

	"github.com/blacktop/acpiproxy/pkg/patch"
)

// ConfigName is the OpenCore configuration file name.
const ConfigName = "config.plist"

// Config is an open config.plist document. Mutations are in-memory
// until Save; one Open/mutate/Save cycle per invocation, no partial
// writes.
type Config struct {
	path string
	doc  map[string]any
}

// ValidateFolder reports whether dir looks like an OpenCore folder:
// it must contain an ACPI subdirectory and a config.plist.
func ValidateFolder(dir string) bool {
	if fi, err := os.Stat(filepath.Join(dir, "ACPI")); err != nil || !fi.IsDir() {
		return false
	}
	if _, err := os.Stat(filepath.Join(dir, ConfigName)); err != nil {
		return false
	}
	return true
}

// Open reads dir/config.plist.
func Open(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config.plist")
	}
	doc := make(map[string]any)
	if err := plist.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode config.plist")
	}
	return &Config{path: path, doc: doc}, nil
}

// Save re-encodes the document as XML with tab indentation and writes
// it back in one shot.
func (c *Config) Save() error {
	buf := new(bytes.Buffer)
	enc := plist.NewEncoderForFormat(buf, plist.XMLFormat)
	enc.Indent("\t")
	if err := enc.Encode(c.doc); err != nil {
		return errors.Wrap(err, "failed to encode config.plist")
	}
	if err := os.WriteFile(c.path, buf.Bytes(), 0644); err != nil {
		return errors.Wrap(err, "failed to write config.plist")
	}
	return nil
}

// patches returns the ACPI -> Patch list along with its parent dict so
// callers can write a grown/shrunk slice back.
func (c *Config) patches() (map[string]any, []any, error) {
	acpi, ok := c.doc["ACPI"].(map[string]any)
	if !ok {
		return nil, nil, errors.New("config.plist has no ACPI section")
	}
	list, ok := acpi["Patch"].([]any)
	if !ok {
		if _, present := acpi["Patch"]; present {
			return nil, nil, errors.New("config.plist ACPI > Patch is not an array")
		}
		list = []any{}
	}
	return acpi, list, nil
}

// find returns the index of the record matching d exactly on
// (Comment, Find, Replace), or -1. Partial matches never count.
func find(list []any, d patch.Descriptor) int {
	for i, e := range list {
		rec, ok := e.(map[string]any)
		if !ok {
			continue
		}
		comment, _ := rec["Comment"].(string)
		findb, _ := rec["Find"].([]byte)
		replaceb, _ := rec["Replace"].([]byte)
		if comment == d.Comment && bytes.Equal(findb, d.Find) && bytes.Equal(replaceb, d.Replace) {
			return i
		}
	}
	return -1
}

// Apply inserts a patch record for d unless an identical one already
// exists. It reports whether the document changed.
func (c *Config) Apply(d patch.Descriptor) (bool, error) {
	acpi, list, err := c.patches()
	if err != nil {
		return false, err
	}
	if find(list, d) >= 0 {
		return false, nil
	}
	acpi["Patch"] = append(list, map[string]any{
		"Comment": d.Comment,
		"Count":   0,
		"Limit":   0,
		"Skip":    0,
		"Enabled": true,
		"Find":    d.Find,
		"Replace": d.Replace,
	})
	return true, nil
}

// Undo removes the patch record matching d if present. It reports
// whether the document changed.
func (c *Config) Undo(d patch.Descriptor) (bool, error) {
	acpi, list, err := c.patches()
	if err != nil {
		return false, err
	}
	i := find(list, d)
	if i < 0 {
		return false, nil
	}
	acpi["Patch"] = append(list[:i], list[i+1:]...)
	return true, nil
}

// Patches returns a copy of the current ACPI -> Patch records.
func (c *Config) Patches() ([]map[string]any, error) {
	_, list, err := c.patches()
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(list))
	for _, e := range list {
		if rec, ok := e.(map[string]any); ok {
			out = append(out, rec)
		}
	}
	return out, nil
}
