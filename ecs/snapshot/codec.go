// Package snapshot persists ecs world snapshots as YAML documents, either as
// plain files or in a SQLite database.
package snapshot

import (
	"bytes"
	"io"

	"github.com/plus3/sparsecs/ecs"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Encode writes s to out as a YAML document.
func Encode(out io.Writer, s *ecs.Snapshot) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return eris.Wrap(err, "encode snapshot")
	}
	return eris.Wrap(enc.Close(), "encode snapshot")
}

// Decode reads one YAML snapshot document from r.
func Decode(r io.Reader) (*ecs.Snapshot, error) {
	s := &ecs.Snapshot{}
	if err := yaml.NewDecoder(r).Decode(s); err != nil {
		return nil, eris.Wrap(err, "decode snapshot")
	}
	return s, nil
}

// Marshal returns s as a YAML document.
func Marshal(s *ecs.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal parses a YAML snapshot document.
func Unmarshal(data []byte) (*ecs.Snapshot, error) {
	return Decode(bytes.NewReader(data))
}

// Capture snapshots w and encodes it to out.
func Capture(out io.Writer, w *ecs.World) error {
	s, err := w.Snapshot()
	if err != nil {
		return err
	}
	return Encode(out, s)
}

// Apply decodes a snapshot from r and restores it into w.
func Apply(r io.Reader, w *ecs.World) error {
	s, err := Decode(r)
	if err != nil {
		return err
	}
	return w.Restore(s)
}
