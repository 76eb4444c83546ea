package bundler

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// MetafileOutput is one output file of the esbuild metafile, with its
// contributing inputs in the order esbuild listed them.
type MetafileOutput struct {
	// Path is the output path relative to the working directory.
	Path string

	// EntryPoint is the entry module of the output, if any.
	EntryPoint string

	// Bytes is the size of the output file.
	Bytes int

	// Inputs are the contributing input paths, relative to the working
	// directory.
	Inputs []string
}

type metafileOutput struct {
	Bytes      int             `json:"bytes"`
	EntryPoint string          `json:"entryPoint,omitempty"`
	Inputs     json.RawMessage `json:"inputs"`
}

// ParseMetafile decodes the outputs of an esbuild metafile. JSON object key
// order is significant here, so the objects are walked token by token rather
// than decoded into maps.
func ParseMetafile(data string) ([]MetafileOutput, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	var outputs []MetafileOutput

	err := walkObject(dec, func(key string) error {
		if key != "outputs" {
			return skipValue(dec)
		}
		return walkObject(dec, func(path string) error {
			var raw metafileOutput
			if err := dec.Decode(&raw); err != nil {
				return fmt.Errorf("output %q: %w", path, err)
			}
			inputs, err := objectKeys(raw.Inputs)
			if err != nil {
				return fmt.Errorf("output %q inputs: %w", path, err)
			}
			outputs = append(outputs, MetafileOutput{
				Path:       path,
				EntryPoint: raw.EntryPoint,
				Bytes:      raw.Bytes,
				Inputs:     inputs,
			})
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("parsing metafile: %w", err)
	}
	return outputs, nil
}

// walkObject reads a JSON object from dec and calls fn for each key. fn must
// consume the key's value.
func walkObject(dec *json.Decoder, fn func(key string) error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := fn(key); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

func skipValue(dec *json.Decoder) error {
	var discard json.RawMessage
	return dec.Decode(&discard)
}

// objectKeys returns the keys of a JSON object in document order.
func objectKeys(raw json.RawMessage) ([]string, error) {
	keys := []string{}
	if len(raw) == 0 || string(raw) == "null" {
		return keys, nil
	}
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	err := walkObject(dec, func(key string) error {
		keys = append(keys, key)
		return skipValue(dec)
	})
	if err != nil && err != io.EOF {
		return nil, err
	}
	return keys, nil
}

// abs resolves a metafile path against the working directory.
func abs(workDir, path string) string {
	p := filepath.FromSlash(path)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(workDir, p)
}
