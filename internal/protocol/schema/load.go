package schema

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/danmuck/iacctl/internal/protocol"
	"github.com/rs/zerolog/log"
)

//go:embed documents/*.json
var documents embed.FS

// DocumentName returns the file name used for key: <type>[.<protocol>].json.
func DocumentName(key Key) string {
	if key.Protocol == "" {
		return key.Type.String() + ".json"
	}
	return key.Type.String() + "." + key.Protocol + ".json"
}

// ParseDocumentName is the inverse of DocumentName.
func ParseDocumentName(name string) (Key, error) {
	base, ok := strings.CutSuffix(path.Base(name), ".json")
	if !ok {
		return Key{}, fmt.Errorf("%w: %s is not a .json document", protocol.ErrInvalidSchema, name)
	}
	typeName, protocolID, _ := strings.Cut(base, ".")
	t, err := protocol.ParseMessageType(typeName)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %s: %v", protocol.ErrInvalidSchema, name, err)
	}
	return Key{Type: t, Protocol: protocolID}, nil
}

// LoadDocuments parses every *.json file at the root of fsys and registers it
// under the key encoded in its name.
func LoadDocuments(b *Builder, fsys fs.FS) error {
	names, err := fs.Glob(fsys, "*.json")
	if err != nil {
		return err
	}
	sort.Strings(names)
	for _, name := range names {
		key, err := ParseDocumentName(name)
		if err != nil {
			return err
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", name, err)
		}
		node, err := ParseDocument(data)
		if err != nil {
			return fmt.Errorf("schema: %s: %w", name, err)
		}
		if err := b.Register(key.Type, node, key.Protocol); err != nil {
			return err
		}
	}
	log.Debug().Int("documents", len(names)).Msg("schema.LoadDocuments")
	return nil
}

// LoadDir registers the documents found in a directory on disk.
func LoadDir(b *Builder, dir string) error {
	return LoadDocuments(b, os.DirFS(dir))
}

// DefaultBuilder returns a builder preloaded with the bundled documents, for
// callers that register additional layouts before building.
func DefaultBuilder() (*Builder, error) {
	b := NewBuilder()
	sub, err := fs.Sub(documents, "documents")
	if err != nil {
		return nil, err
	}
	if err := LoadDocuments(b, sub); err != nil {
		return nil, err
	}
	return b, nil
}

var defaultRegistry = sync.OnceValues(func() (*Registry, error) {
	b, err := DefaultBuilder()
	if err != nil {
		return nil, err
	}
	return b.Build(), nil
})

// Default returns the registry of bundled documents. It is built once.
func Default() (*Registry, error) {
	return defaultRegistry()
}
