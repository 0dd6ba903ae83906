// Package invites attributes community joins to the invite link that was used.
//
// The platform never says which invite a member joined through, only how many
// times each invite has been used. The Engine keeps a baseline of invite usage
// per community and, on every join, compares it with a fresh fetch: the single
// invite whose use count went up is the one that was used.
package invites

import (
	"context"
	"fmt"
	"sort"
	"time"

	"invitetrack/logger"

	"golang.org/x/sync/errgroup"
)

// Fetcher lists the current invites of a community. It must not have side effects on the platform.
type Fetcher interface {
	FetchInvites(ctx context.Context, communityID string) ([]Snapshot, error)
}

// FetcherFunc adapts a function to Fetcher
type FetcherFunc func(ctx context.Context, communityID string) ([]Snapshot, error)

func (f FetcherFunc) FetchInvites(ctx context.Context, communityID string) ([]Snapshot, error) {
	return f(ctx, communityID)
}

type Reason string

const (
	ReasonAttributed  Reason = "attributed"
	ReasonFetchFailed Reason = "fetch_failed"
	ReasonColdStart   Reason = "cold_start"
	ReasonNoCandidate Reason = "no_candidate"
	ReasonAmbiguous   Reason = "ambiguous"
)

// Result of one attribution attempt. Code and InviterID are only set when Reason is ReasonAttributed.
type Result struct {
	Code       string   `json:"code,omitempty"`
	InviterID  string   `json:"inviter_id,omitempty"`
	Reason     Reason   `json:"reason"`
	Candidates []string `json:"candidates,omitempty"` // tied codes, for ambiguous results
}

func (r Result) Known() bool {
	return r.Reason == ReasonAttributed
}

func unknown(reason Reason) Result {
	return Result{Reason: reason}
}

type Engine struct {
	Cache   *Cache
	Gate    *Gate
	Fetcher Fetcher
	// FetchTimeout bounds every fetch on top of the caller's context (0 - no extra bound)
	FetchTimeout time.Duration
	log          *logger.Logger
}

func NewEngine(fetcher Fetcher, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.NewNop()
	}
	return &Engine{
		Cache:   NewCache(),
		Gate:    NewGate(),
		Fetcher: fetcher,
		log:     log.With("service", "InviteAttribution"),
	}
}

// Attribute works out which invite the member used to join. It always returns a Result,
// failures of any kind come back as an unknown Result.
func (e *Engine) Attribute(ctx context.Context, communityID, memberID string) (result Result) {
	log := e.log.With("guild_id", communityID, "member_id", memberID)
	defer func() {
		if r := recover(); r != nil {
			log.Error("Attribution panicked", "panic", r)
			result = unknown(ReasonFetchFailed)
		}
	}()
	err := e.Gate.With(ctx, communityID, func() error {
		fetchedAt := time.Now()
		fresh, err := e.fetch(ctx, communityID)
		if err != nil {
			result = unknown(ReasonFetchFailed)
			return err
		}
		previous := e.Cache.Get(communityID)
		if len(previous) == 0 {
			e.Cache.ReplaceSince(communityID, fresh, fetchedAt)
			result = unknown(ReasonColdStart)
			return nil
		}
		result = diff(previous, toMapping(fresh))
		e.Cache.ReplaceSince(communityID, fresh, fetchedAt)
		return nil
	})
	if err != nil {
		log.Warn("Invite fetch failed, join not attributed", "error", err)
		return unknown(ReasonFetchFailed)
	}
	switch result.Reason {
	case ReasonAttributed:
		log.Info("Join attributed", "code", result.Code, "inviter_id", result.InviterID)
	case ReasonAmbiguous:
		log.Warn("Join ambiguous, several invites used", "candidates", result.Candidates)
	default:
		log.Info("Join not attributed", "reason", result.Reason)
	}
	return result
}

// diff picks the only invite whose use count went up since the baseline.
// Codes missing from the baseline can't be candidates.
func diff(previous, fresh map[string]Snapshot) Result {
	var candidates []Snapshot
	for code, now := range fresh {
		before, ok := previous[code]
		if !ok {
			continue
		}
		if now.Uses > before.Uses {
			candidates = append(candidates, now)
		}
	}
	switch len(candidates) {
	case 0:
		return unknown(ReasonNoCandidate)
	case 1:
		return Result{
			Code:      candidates[0].Code,
			InviterID: candidates[0].InviterID,
			Reason:    ReasonAttributed,
		}
	}
	codes := make([]string, 0, len(candidates))
	for _, c := range candidates {
		codes = append(codes, c.Code)
	}
	sort.Strings(codes)
	return Result{Reason: ReasonAmbiguous, Candidates: codes}
}

// InviteCreated records an invite announced by the platform, keeping the baseline warm between joins
func (e *Engine) InviteCreated(communityID string, s Snapshot) {
	if s.CapturedAt.IsZero() {
		s.CapturedAt = time.Now()
	}
	e.Cache.ApplyCreated(communityID, s)
	e.log.Debug("Invite created", "guild_id", communityID, "code", s.Code)
}

// Warm fetches and stores the baseline for a community
func (e *Engine) Warm(ctx context.Context, communityID string) error {
	return e.Gate.With(ctx, communityID, func() error {
		fetchedAt := time.Now()
		fresh, err := e.fetch(ctx, communityID)
		if err != nil {
			return err
		}
		e.Cache.ReplaceSince(communityID, fresh, fetchedAt)
		return nil
	})
}

// WarmAll warms several communities, at most limit at a time. Failures are logged and
// counted, they never stop the other communities.
func (e *Engine) WarmAll(ctx context.Context, communityIDs []string, limit int) (failed int) {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	errs := make([]error, len(communityIDs))
	for i, id := range communityIDs {
		i, id := i, id
		g.Go(func() error {
			errs[i] = e.Warm(gctx, id)
			return nil
		})
	}
	_ = g.Wait()
	for i, err := range errs {
		if err != nil {
			failed++
			e.log.Warn("Invite warm-up failed", "guild_id", communityIDs[i], "error", err)
		}
	}
	e.log.Info("Invite warm-up done", "communities", len(communityIDs), "failed", failed)
	return failed
}

func (e *Engine) fetch(ctx context.Context, communityID string) ([]Snapshot, error) {
	if e.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.FetchTimeout)
		defer cancel()
	}
	list, err := e.Fetcher.FetchInvites(ctx, communityID)
	if err != nil {
		return nil, fmt.Errorf("fetch invites for %s: %w", communityID, err)
	}
	return list, nil
}
