// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package app

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rewardfarm/tomarket-harvester/internal/config"
	"github.com/rewardfarm/tomarket-harvester/pkg/cycle/builtin"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadAccounts_FileWithProxyPool(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HARVESTER_TEST_WALLET", "UQwallet")

	accountsFile := filepath.Join(dir, "accounts.yaml")
	writeFile(t, accountsFile, `accounts:
  - name: alpha
    wallet_address: ${HARVESTER_TEST_WALLET}
  - name: beta
    proxy: socks5://9.9.9.9:1080
  - name: gamma
  - name: delta
    disabled: true
`)
	proxyFile := filepath.Join(dir, "proxies.txt")
	writeFile(t, proxyFile, "# pool\n1.1.1.1:80\n2.2.2.2:80\n")

	cfg := &config.Config{AccountsFile: accountsFile, UseProxyFromFile: true, ProxyFile: proxyFile}
	accounts, err := LoadAccounts(cfg)
	if err != nil {
		t.Fatalf("LoadAccounts() error = %v", err)
	}

	if len(accounts) != 3 {
		t.Fatalf("got %d accounts, expected 3 (disabled skipped)", len(accounts))
	}

	expected := map[string]string{
		"alpha": "http://1.1.1.1:80",
		"beta":  "socks5://9.9.9.9:1080",
		"gamma": "http://2.2.2.2:80",
	}
	for _, acc := range accounts {
		if acc.Proxy != expected[acc.Name] {
			t.Errorf("%s proxy = %q, expected %q", acc.Name, acc.Proxy, expected[acc.Name])
		}
	}
	if accounts[0].WalletAddress != "UQwallet" {
		t.Errorf("wallet = %q, expected env expansion", accounts[0].WalletAddress)
	}
	if accounts[2].SessionFile != filepath.Join(dir, "gamma.session") {
		t.Errorf("session file = %q", accounts[2].SessionFile)
	}
}

func TestLoadAccounts_DiscoverRequiresSessions(t *testing.T) {
	cfg := &config.Config{SessionsDir: t.TempDir()}
	if _, err := LoadAccounts(cfg); err == nil {
		t.Error("expected an error for an empty sessions directory")
	}
}

func TestLoadAccounts_MissingProxyFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "solo.session"), "user=1&hash=2")

	cfg := &config.Config{SessionsDir: dir, UseProxyFromFile: true, ProxyFile: filepath.Join(dir, "nope.txt")}
	if _, err := LoadAccounts(cfg); err == nil {
		t.Error("expected an error for a missing proxy file")
	}
}

func TestEnabledCycles(t *testing.T) {
	cfg := &config.Config{AutoFarm: true, AutoTask: true, AutoRaffle: true}

	got := EnabledCycles(cfg)
	want := []string{builtin.FarmingCycleID, builtin.TasksCycleID, builtin.RankCycleID, builtin.RaffleCycleID}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EnabledCycles() = %v, expected %v", got, want)
	}
}
