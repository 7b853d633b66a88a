// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package account

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// SessionExt is the extension of captured session files.
const SessionExt = ".session"

// Account is one Telegram identity operated by the fleet.
type Account struct {
	Name          string `yaml:"name"`
	SessionFile   string `yaml:"session_file"`
	Proxy         string `yaml:"proxy,omitempty"`
	WalletAddress string `yaml:"wallet_address,omitempty"`
	Disabled      bool   `yaml:"disabled,omitempty"`
}

// File is the accounts YAML document.
type File struct {
	Accounts []Account `yaml:"accounts"`
}

// LoadFile loads accounts from a YAML file.
// Supports environment variable expansion in the form ${VAR_NAME} or ${VAR_NAME:default}.
// Relative session paths are resolved against the file's directory.
func LoadFile(path string) ([]Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts file %s: %w", path, err)
	}

	var file File
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), &file); err != nil {
		return nil, fmt.Errorf("failed to parse accounts file: %w", err)
	}

	base := filepath.Dir(path)
	var accounts []Account
	for _, acc := range file.Accounts {
		if acc.Disabled {
			continue
		}
		if acc.SessionFile == "" {
			acc.SessionFile = acc.Name + SessionExt
		}
		if !filepath.IsAbs(acc.SessionFile) {
			acc.SessionFile = filepath.Join(base, acc.SessionFile)
		}
		if acc.Proxy != "" {
			proxy, err := ParseProxyLine(acc.Proxy)
			if err != nil {
				return nil, fmt.Errorf("account %s: %w", acc.Name, err)
			}
			acc.Proxy = proxy
		}
		accounts = append(accounts, acc)
	}

	if err := Validate(accounts); err != nil {
		return nil, fmt.Errorf("invalid accounts file: %w", err)
	}

	return accounts, nil
}

// Discover builds one account per session file in dir.
func Discover(dir string) ([]Account, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+SessionExt))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	accounts := make([]Account, 0, len(matches))
	for _, m := range matches {
		accounts = append(accounts, Account{
			Name:        strings.TrimSuffix(filepath.Base(m), SessionExt),
			SessionFile: m,
		})
	}

	return accounts, nil
}

// Validate checks for empty and duplicate names.
func Validate(accounts []Account) error {
	if len(accounts) == 0 {
		return errors.New("no accounts configured")
	}

	names := make(map[string]bool, len(accounts))
	for _, acc := range accounts {
		if acc.Name == "" {
			return errors.New("account with empty name found")
		}
		if names[acc.Name] {
			return fmt.Errorf("duplicate account name: %s", acc.Name)
		}
		names[acc.Name] = true
	}

	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		parts := strings.SplitN(key, ":", 2)
		value := os.Getenv(parts[0])
		if value == "" && len(parts) == 2 {
			return parts[1]
		}
		return value
	})
}
