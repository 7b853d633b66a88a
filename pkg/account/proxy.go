// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package account

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ParseProxyLine normalises [protocol://][user:pass@]host:port into a proxy URL.
func ParseProxyLine(line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("empty proxy line")
	}

	protocol := "http"
	if strings.Contains(line, "://") {
		parts := strings.SplitN(line, "://", 2)
		protocol = strings.ToLower(parts[0])
		line = parts[1]
	}
	if protocol != "http" && protocol != "https" && protocol != "socks5" {
		return "", fmt.Errorf("unsupported proxy protocol: %s", protocol)
	}

	userinfo := ""
	if strings.Contains(line, "@") {
		parts := strings.SplitN(line, "@", 2)
		credentials := strings.SplitN(parts[0], ":", 2)
		if len(credentials) != 2 || credentials[0] == "" {
			return "", fmt.Errorf("invalid proxy credentials format")
		}
		userinfo = credentials[0] + ":" + credentials[1] + "@"
		line = parts[1]
	}

	if !strings.Contains(line, ":") {
		return "", fmt.Errorf("proxy %q lacks a port", line)
	}

	return fmt.Sprintf("%s://%s%s", protocol, userinfo, line), nil
}

// ReadProxies reads one proxy per line, skipping blanks and # comments.
func ReadProxies(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var proxies []string
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		proxy, err := ParseProxyLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		proxies = append(proxies, proxy)
	}

	return proxies, scanner.Err()
}

// AssignProxies hands out proxies round-robin to accounts without an explicit one.
func AssignProxies(accounts []Account, proxies []string) []Account {
	if len(proxies) == 0 {
		return accounts
	}

	out := make([]Account, len(accounts))
	next := 0
	for i, acc := range accounts {
		if acc.Proxy == "" {
			acc.Proxy = proxies[next%len(proxies)]
			next++
		}
		out[i] = acc
	}

	return out
}
