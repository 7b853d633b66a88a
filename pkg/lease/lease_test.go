// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package lease

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rewardfarm/tomarket-harvester/pkg/api"
)

type stubProvider struct {
	data string
	err  error
	seen []string
}

func (s *stubProvider) InitData(_ context.Context, ref string) (string, error) {
	s.seen = append(s.seen, ref)
	return s.data, s.err
}

type stubAuth struct {
	token  string
	result api.Result
	calls  int
}

func (s *stubAuth) Login(_ context.Context, _, _ string) (string, api.Result) {
	s.calls++
	return s.token, s.result
}

func TestReferralSampler_Weights(t *testing.T) {
	sampler := NewReferralSampler("operatorRef", 42)

	operator := 0
	const n = 20000
	for i := 0; i < n; i++ {
		if sampler.Pick() == "operatorRef" {
			operator++
		}
	}

	ratio := float64(operator) / n
	if ratio < 0.67 || ratio > 0.73 {
		t.Errorf("operator ratio = %.3f, expected about 0.70", ratio)
	}
}

func TestReferralSampler_EmptyOperatorFallsBack(t *testing.T) {
	sampler := NewReferralSampler("", 1)
	for i := 0; i < 50; i++ {
		if got := sampler.Pick(); got != DefaultReferralID {
			t.Fatalf("Pick() = %q, expected %q", got, DefaultReferralID)
		}
	}
}

func TestAcquire_Success(t *testing.T) {
	issued := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	provider := &stubProvider{data: "user=1&hash=2"}
	auth := &stubAuth{token: "tok", result: api.Result{Kind: api.KindOK, Status: 0}}

	l := New(provider, auth, NewReferralSampler("ref", 7), func() time.Time { return issued })
	grant, err := l.Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if grant.Credential.Token != "tok" {
		t.Errorf("Token = %q", grant.Credential.Token)
	}
	if !grant.Credential.ExpiresAt.Equal(issued.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v, expected issue time plus one hour", grant.Credential.ExpiresAt)
	}
	if grant.InitData != "user=1&hash=2" {
		t.Errorf("InitData = %q", grant.InitData)
	}
	if grant.ReferralID != provider.seen[0] {
		t.Errorf("referral %q was not the one handed to the provider", grant.ReferralID)
	}
}

func TestAcquire_LoginFailure(t *testing.T) {
	provider := &stubProvider{data: "user=1&hash=2"}
	auth := &stubAuth{result: api.Result{Kind: api.KindRetryable}}

	_, err := New(provider, auth, NewReferralSampler("ref", 7), nil).Acquire(context.Background())
	if !errors.Is(err, ErrAuthFailure) {
		t.Errorf("error = %v, expected ErrAuthFailure", err)
	}
}

func TestAcquire_HandshakeFailures(t *testing.T) {
	auth := &stubAuth{token: "tok", result: api.Result{Kind: api.KindOK}}

	_, err := New(&stubProvider{err: errors.New("flood wait")}, auth, NewReferralSampler("", 1), nil).Acquire(context.Background())
	if !errors.Is(err, ErrAuthFailure) {
		t.Errorf("transient handshake error = %v, expected ErrAuthFailure", err)
	}

	_, err = New(&stubProvider{err: ErrSessionInvalid}, auth, NewReferralSampler("", 1), nil).Acquire(context.Background())
	if !errors.Is(err, ErrSessionInvalid) {
		t.Errorf("invalid session error = %v, expected ErrSessionInvalid", err)
	}
	if auth.calls != 0 {
		t.Errorf("login called %d times after failed handshakes", auth.calls)
	}
}

func TestCredential_Expired(t *testing.T) {
	now := time.Now()
	if !(Credential{}).Expired(now) {
		t.Error("empty credential should be expired")
	}

	c := Credential{Token: "t", ExpiresAt: now.Add(time.Second)}
	if c.Expired(now) {
		t.Error("credential should be valid before expiry")
	}
	if !c.Expired(now.Add(time.Second)) {
		t.Error("credential should expire at ExpiresAt")
	}
}

func TestExtractInitData(t *testing.T) {
	raw := "user=%7B%22id%22%3A1%7D&chat_instance=5&chat_type=sender&auth_date=1700000000&hash=abc"

	got, err := ExtractInitData(raw)
	if err != nil || got != raw {
		t.Errorf("raw payload: %q, %v", got, err)
	}

	launch := "https://mini-app.tomarket.ai/#tgWebAppData=" + urlEncode(raw) + "&tgWebAppVersion=7.10&tgWebAppPlatform=android"
	got, err = ExtractInitData(launch)
	if err != nil || got != raw {
		t.Errorf("launch url: %q, %v", got, err)
	}

	if _, err := ExtractInitData("user=1"); err == nil {
		t.Error("expected error without hash")
	}
	if _, err := ExtractInitData(""); err == nil {
		t.Error("expected error for empty content")
	}
}

func urlEncode(s string) string {
	out := make([]byte, 0, len(s)*3)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '%':
			out = append(out, "%25"...)
		case '&':
			out = append(out, "%26"...)
		case '=':
			out = append(out, "%3D"...)
		default:
			out = append(out, c)
		}
	}

	return string(out)
}

func TestFileAuthDataProvider(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alice.session")

	_, err := NewFileAuthDataProvider(path).InitData(context.Background(), "ref")
	if !errors.Is(err, ErrSessionInvalid) {
		t.Errorf("missing file error = %v, expected ErrSessionInvalid", err)
	}

	if err := os.WriteFile(path, []byte("user=1&hash=ff\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	data, err := NewFileAuthDataProvider(path).InitData(context.Background(), "ref")
	if err != nil || data != "user=1&hash=ff" {
		t.Errorf("InitData() = %q, %v", data, err)
	}
}
