// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package lease

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
)

// FileAuthDataProvider reads captured web-app launch data from a file.
// The file holds either the raw init data query or a full launch URL with a tgWebAppData fragment.
type FileAuthDataProvider struct {
	path string
}

func NewFileAuthDataProvider(path string) *FileAuthDataProvider {
	return &FileAuthDataProvider{path: path}
}

// InitData returns the captured payload. The referral code travels in the login body,
// the signed payload cannot be rewritten without breaking its hash.
func (p *FileAuthDataProvider) InitData(_ context.Context, _ string) (string, error) {
	raw, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s not found", ErrSessionInvalid, p.path)
		}
		return "", fmt.Errorf("read session file: %w", err)
	}

	data, err := ExtractInitData(strings.TrimSpace(string(raw)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}

	return data, nil
}

// ExtractInitData normalises launch URLs and raw payloads into the init data query string.
func ExtractInitData(content string) (string, error) {
	if content == "" {
		return "", errors.New("empty session data")
	}

	if idx := strings.Index(content, "tgWebAppData="); idx >= 0 {
		fragment := content[idx+len("tgWebAppData="):]
		if end := strings.Index(fragment, "&tgWebApp"); end >= 0 {
			fragment = fragment[:end]
		}
		decoded, err := url.QueryUnescape(fragment)
		if err != nil {
			return "", fmt.Errorf("decode launch data: %w", err)
		}
		content = decoded
	}

	values, err := url.ParseQuery(content)
	if err != nil {
		return "", fmt.Errorf("parse init data: %w", err)
	}
	if values.Get("hash") == "" || values.Get("user") == "" {
		return "", errors.New("init data lacks user or hash")
	}

	return content, nil
}
