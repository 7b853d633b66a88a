// Copyright (c) 2025 rewardfarm. All Rights Reserved.
// This is licensed software from rewardfarm, for limitations
// and restrictions contact the project maintainers.

package lease

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rewardfarm/tomarket-harvester/pkg/api"
)

const (
	// Duration is how long a freshly issued token is trusted.
	Duration = 3600 * time.Second
	// DefaultReferralID is mixed in with the operator's referral code.
	DefaultReferralID = "0001b3Lf"
	// OperatorWeight is the percentage of acquisitions that use the operator's code.
	OperatorWeight = 70
)

var (
	// ErrAuthFailure means the handshake or login did not yield a token. The caller retries later.
	ErrAuthFailure = errors.New("authentication failed")
	// ErrSessionInvalid means the account can never authenticate again without operator action.
	ErrSessionInvalid = errors.New("session invalid")
)

// Credential is a bearer token with its lease window.
type Credential struct {
	Token     string    `json:"-"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired is true when no token is held or the lease window has elapsed.
func (c Credential) Expired(now time.Time) bool {
	return c.Token == "" || !now.Before(c.ExpiresAt)
}

// AuthDataProvider produces signed web-app init data for the given referral code.
type AuthDataProvider interface {
	InitData(ctx context.Context, referralID string) (string, error)
}

// Authenticator exchanges init data for a token.
type Authenticator interface {
	Login(ctx context.Context, initData, inviteCode string) (string, api.Result)
}

// Grant is what a successful acquisition hands back.
type Grant struct {
	ReferralID string
	InitData   string
	Credential Credential
}

// ReferralSampler picks the operator's code 70% of the time and the default otherwise.
type ReferralSampler struct {
	mu       sync.Mutex
	operator string
	rng      *rand.Rand
}

func NewReferralSampler(operator string, seed int64) *ReferralSampler {
	if operator == "" {
		operator = DefaultReferralID
	}

	return &ReferralSampler{operator: operator, rng: rand.New(rand.NewSource(seed))}
}

func (s *ReferralSampler) Pick() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rng.Intn(100) < OperatorWeight {
		return s.operator
	}

	return DefaultReferralID
}

// Lease acquires credentials for one account.
type Lease struct {
	provider AuthDataProvider
	auth     Authenticator
	sampler  *ReferralSampler
	now      func() time.Time
}

func New(provider AuthDataProvider, auth Authenticator, sampler *ReferralSampler, now func() time.Time) *Lease {
	if now == nil {
		now = time.Now
	}

	return &Lease{provider: provider, auth: auth, sampler: sampler, now: now}
}

// Acquire samples a referral code, runs the handshake and logs in.
// ErrSessionInvalid from the provider is passed through unwrapped so callers can stop the account.
func (l *Lease) Acquire(ctx context.Context) (Grant, error) {
	referral := l.sampler.Pick()

	initData, err := l.provider.InitData(ctx, referral)
	if err != nil {
		if errors.Is(err, ErrSessionInvalid) {
			return Grant{}, err
		}
		return Grant{}, fmt.Errorf("%w: handshake: %v", ErrAuthFailure, err)
	}
	if initData == "" {
		return Grant{}, fmt.Errorf("%w: empty init data", ErrAuthFailure)
	}

	token, res := l.auth.Login(ctx, initData, referral)
	if !res.Success() || token == "" {
		return Grant{}, fmt.Errorf("%w: login: %s", ErrAuthFailure, res.Describe())
	}

	issued := l.now()

	return Grant{
		ReferralID: referral,
		InitData:   initData,
		Credential: Credential{
			Token:     token,
			IssuedAt:  issued,
			ExpiresAt: issued.Add(Duration),
		},
	}, nil
}
