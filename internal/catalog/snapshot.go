package catalog

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
)

// Snapshot is what a server render hands to the client: the rendered path and
// the committed value of every keyed loader.
type Snapshot struct {
	Path string
	Data map[string]any
}

type snapshotFile struct {
	Path string         `toml:"path"`
	Data map[string]any `toml:"data"`
}

type snapshotInput struct {
	Path string                    `toml:"path"`
	Data map[string]toml.Primitive `toml:"data"`
}

// WriteSnapshot encodes s as TOML.
func WriteSnapshot(w io.Writer, s Snapshot) error {
	if err := toml.NewEncoder(w).Encode(snapshotFile{Path: s.Path, Data: s.Data}); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot decodes a TOML snapshot, giving every value the Go type its
// loader produces so it can be installed as initial data.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var in snapshotInput
	md, err := toml.NewDecoder(r).Decode(&in)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	s := Snapshot{Path: in.Path, Data: make(map[string]any, len(in.Data))}
	for key, prim := range in.Data {
		decode, ok := decoders[key]
		if !ok {
			return Snapshot{}, fmt.Errorf("snapshot: unknown key %q", key)
		}
		v, err := decode(md, prim)
		if err != nil {
			return Snapshot{}, fmt.Errorf("snapshot: key %q: %w", key, err)
		}
		s.Data[key] = v
	}
	return s, nil
}

var decoders = map[string]func(toml.MetaData, toml.Primitive) (any, error){
	KeySession: decodeAs[string],
	KeyAccount: decodeAs[Account],
	KeyProduct: decodeAs[Product],
	KeyStock:   decodeAs[Stock],
	KeyReviews: decodeAs[[]string],
}

func decodeAs[T any](md toml.MetaData, p toml.Primitive) (any, error) {
	var v T
	if err := md.PrimitiveDecode(p, &v); err != nil {
		return nil, err
	}
	return v, nil
}
