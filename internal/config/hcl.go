package config

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/hclsimple"
	"gopkg.in/yaml.v3"

	oerrors "github.com/opmodel/usbuild/internal/errors"
	"github.com/opmodel/usbuild/internal/header"
)

// hclConfig is the HCL form of Config. Blocks other than header are optional.
//
//	entry   = "src/index.ts"
//	out_dir = "dist"
//
//	server {
//	  port = 3000
//	}
//
//	header {
//	  name  = "My Script"
//	  match = ["https://example.com/*"]
//	}
type hclConfig struct {
	Root      string          `hcl:"root,optional"`
	Entry     string          `hcl:"entry"`
	OutDir    string          `hcl:"out_dir,optional"`
	AutoGrant *bool           `hcl:"auto_grant,optional"`
	Minify    bool            `hcl:"minify,optional"`
	Server    *ServerConfig   `hcl:"server,block"`
	Log       *LogConfig      `hcl:"log,block"`
	Header    header.Metadata `hcl:"header,block"`
}

func (h *hclConfig) toConfig() *Config {
	cfg := &Config{
		Root:      h.Root,
		Entry:     h.Entry,
		OutDir:    h.OutDir,
		AutoGrant: h.AutoGrant,
		Minify:    h.Minify,
		Header:    h.Header,
	}
	if h.Server != nil {
		cfg.Server = *h.Server
	}
	if h.Log != nil {
		cfg.Log = *h.Log
	}
	return cfg
}

// decodeHCL decodes an HCL config file and re-encodes it as YAML so viper
// applies the same env overlay and defaults as for YAML files.
func decodeHCL(path string) ([]byte, error) {
	var h hclConfig
	if err := hclsimple.DecodeFile(path, nil, &h); err != nil {
		return nil, oerrors.NewValidationError(err.Error(), path, "", "Check the HCL syntax of the config file")
	}
	raw, err := yaml.Marshal(h.toConfig())
	if err != nil {
		return nil, fmt.Errorf("encoding HCL config: %w", err)
	}
	return raw, nil
}
