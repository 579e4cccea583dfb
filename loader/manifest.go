package loader

import (
	"bytes"
	"context"
	"fmt"
	"path"

	jsoniter "github.com/json-iterator/go"

	"github.com/hupe1980/enginecore/internal/hash"
)

// ErrChecksumMismatch is the cause of a manifest load whose data does not
// match the asset's CRC32C.
var ErrChecksumMismatch = hash.ErrChecksumMismatch

var json = jsoniter.Config{
	OnlyTaggedField: true,
	CaseSensitive:   true,
}.Froze()

// Asset is one entry of a Manifest.
type Asset struct {
	Path string `json:"path"`
	Name string `json:"name,omitempty"`
	// CRC32C, if not zero, is verified against the delivered data.
	CRC32C uint32 `json:"crc32c,omitempty"`
}

// Manifest lists the assets to preload, e.g. for a level.
//
// The JSON form is either an object
//
//	{"root": "levels/1", "assets": [{"path": "mesh.bin", "name": "hero", "crc32c": 3808858755}]}
//
// or a plain array of paths.
type Manifest struct {
	Root   string  `json:"root,omitempty"`
	Assets []Asset `json:"assets"`
}

// ParseManifest decodes a JSON manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidManifest)
	}

	m := &Manifest{}
	if data[0] == '[' {
		var paths []string
		if err := json.Unmarshal(data, &paths); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
		}
		m.Assets = make([]Asset, len(paths))
		for i, p := range paths {
			m.Assets[i] = Asset{Path: p}
		}
	} else if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	for i, a := range m.Assets {
		if a.Path == "" {
			return nil, fmt.Errorf("%w: asset %d has no path", ErrInvalidManifest, i)
		}
	}
	return m, nil
}

// ReadManifest reads and parses the manifest at name from src.
func ReadManifest(ctx context.Context, src Source, name string) (*Manifest, error) {
	data, err := src.ReadFile(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("loader: read manifest %s: %w", name, err)
	}
	return ParseManifest(data)
}

// Paths returns the asset paths resolved against Root, in manifest order.
func (m *Manifest) Paths() []string {
	paths := make([]string, len(m.Assets))
	for i, a := range m.Assets {
		if m.Root != "" && !path.IsAbs(a.Path) {
			paths[i] = path.Join(m.Root, a.Path)
			continue
		}
		paths[i] = a.Path
	}
	return paths
}

// LoadManifest loads every asset of m, see LoadAll. Assets with a CRC32C
// whose data does not match fail with ErrChecksumMismatch.
func (l *Loader) LoadManifest(ctx context.Context, m *Manifest, fn func(Result)) error {
	if m == nil {
		return ErrInvalidManifest
	}
	return l.loadAll(ctx, m.Paths(), func(i int, res *Result) {
		want := m.Assets[i].CRC32C
		if want == 0 {
			return
		}
		if err := hash.Verify(res.Data, want); err != nil {
			res.Err = fmt.Errorf("loader: verify %s: %w", res.Path, err)
			res.Data = nil
			res.Success = false
		}
	}, fn)
}
