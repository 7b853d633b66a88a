// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package app

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rewardfarm/tomarket-harvester/internal/config"
	"github.com/rewardfarm/tomarket-harvester/pkg/account"
)

// LoadAccounts reads ACCOUNTS_FILE, or discovers session files in SESSIONS_DIR when it is unset.
// With USE_PROXY_FROM_FILE, accounts without an explicit proxy get one round-robin.
func LoadAccounts(cfg *config.Config) ([]account.Account, error) {
	var (
		accounts []account.Account
		err      error
	)

	if cfg.AccountsFile != "" {
		accounts, err = account.LoadFile(cfg.AccountsFile)
	} else {
		accounts, err = account.Discover(cfg.SessionsDir)
		if err == nil {
			err = account.Validate(accounts)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	if cfg.UseProxyFromFile {
		proxies, err := account.ReadProxies(cfg.ProxyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read proxies: %w", err)
		}
		if len(proxies) == 0 {
			logrus.Warnf("no proxies in %s, running without", cfg.ProxyFile)
		}
		accounts = account.AssignProxies(accounts, proxies)
	}

	return accounts, nil
}
