package config

import (
	"os"
	"path/filepath"
)

// Candidate config file names, in lookup order.
var configFileNames = []string{
	"usbuild.yaml",
	"usbuild.yml",
	"usbuild.json",
	"usbuild.hcl",
}

// FindConfigFile returns the config file for dir.
// If USBUILD_CONFIG is set, it takes precedence.
// Returns "" when none of the candidate files exists.
func FindConfigFile(dir string) (string, error) {
	if envPath := os.Getenv("USBUILD_CONFIG"); envPath != "" {
		return envPath, nil
	}

	for _, name := range configFileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}
	}
	return "", nil
}

// DefaultConfigFile is the file `usbuild config init` writes.
func DefaultConfigFile(dir string) string {
	return filepath.Join(dir, configFileNames[0])
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}
