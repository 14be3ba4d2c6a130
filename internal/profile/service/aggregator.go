package service

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	commonerrors "github.com/ThalliMega/MiniTikTok-User-Http/internal/common/errors"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/common/logger"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/observability/metrics"
	"github.com/ThalliMega/MiniTikTok-User-Http/internal/profile/domain"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (int64, bool, error)
}

// Source is the user profile service. ok=false means no row, which is not an error.
type Source interface {
	GetAttributes(ctx context.Context, userID int64) (domain.Attributes, bool, error)
	GetCount(ctx context.Context, kind domain.CountKind, userID int64) (int64, bool, error)
	CheckFollowing(ctx context.Context, self int64, targets []int64) ([]int64, error)
}

type Aggregator struct {
	auth   Authenticator
	source Source
	log    *logger.Logger
}

func NewAggregator(auth Authenticator, source Source, log *logger.Logger) *Aggregator {
	return &Aggregator{auth: auth, source: source, log: log}
}

type counterResult struct {
	kind  domain.CountKind
	count int64
	found bool
}

// Caller resolves token to the identity it was issued for.
func (a *Aggregator) Caller(ctx context.Context, token string) (int64, error) {
	caller, ok, err := a.auth.Authenticate(ctx, token)
	if err != nil {
		if _, isDomain := commonerrors.AsDomainError(err); !isDomain {
			err = commonerrors.ErrBackendUnavailable.WithCause(err)
		}
		return 0, err
	}
	if !ok {
		return 0, commonerrors.ErrUnauthorized
	}
	return caller, nil
}

// GetProfile authenticates token and assembles the profile of target.
//
// Every lookup runs concurrently. A transport failure on any of them fails
// the whole request with ErrBackendUnavailable; a missing attributes row
// yields ErrNotFound; a missing counter row is reported as zero.
func (a *Aggregator) GetProfile(ctx context.Context, token string, target int64) (domain.View, error) {
	caller, err := a.Caller(ctx, token)
	if err != nil {
		return domain.View{}, err
	}
	// Identities start at 1.
	if target <= 0 {
		return domain.View{}, commonerrors.ErrNotFound
	}

	var (
		attrs      domain.Attributes
		attrsFound bool
		attrsErr   error
		followed   []int64
		counters   = make([]counterResult, len(domain.CountKinds))
	)

	// Attributes run outside the group: a failing counter cancels its
	// siblings but must not mask a not-found answer.
	g, gctx := errgroup.WithContext(ctx)
	attrsDone := make(chan struct{})
	go func() {
		defer close(attrsDone)
		attrs, attrsFound, attrsErr = a.source.GetAttributes(ctx, target)
		if attrsErr != nil {
			a.lookupFailed(ctx, "attributes", target, attrsErr)
		}
	}()

	for i, kind := range domain.CountKinds {
		g.Go(func() error {
			n, found, err := a.source.GetCount(gctx, kind, target)
			if err != nil {
				a.lookupFailed(gctx, kind.String(), target, err)
				return fmt.Errorf("%s: %w", kind, err)
			}
			counters[i] = counterResult{kind: kind, count: n, found: found}
			return nil
		})
	}

	g.Go(func() error {
		ids, err := a.source.CheckFollowing(gctx, caller, []int64{target})
		if err != nil {
			a.lookupFailed(gctx, "is_follow", target, err)
			return fmt.Errorf("is_follow: %w", err)
		}
		followed = ids
		return nil
	})

	groupErr := g.Wait()
	<-attrsDone

	if attrsErr != nil {
		return domain.View{}, commonerrors.ErrBackendUnavailable.WithCause(attrsErr)
	}
	if !attrsFound {
		return domain.View{}, commonerrors.ErrNotFound
	}
	if groupErr != nil {
		return domain.View{}, commonerrors.ErrBackendUnavailable.WithCause(groupErr)
	}

	view := domain.View{Attributes: attrs, IsFollow: slices.Contains(followed, target)}
	for _, c := range counters {
		if !c.found {
			metrics.ProfileCountersDefaulted.WithLabelValues(c.kind.String()).Inc()
			a.log.WithFields(ctx, logger.Fields{
				"user_id": target,
				"counter": c.kind.String(),
				"action":  "profile_counter_defaulted",
			}).Debug("counter returned no row, reporting zero")
		}
		view.SetCount(c.kind, c.count)
	}
	return view, nil
}

// lookupFailed skips lookups cancelled because a sibling already failed.
func (a *Aggregator) lookupFailed(ctx context.Context, lookup string, target int64, err error) {
	if ctx.Err() != nil {
		return
	}
	metrics.ProfileLookupFailures.WithLabelValues(lookup).Inc()
	a.log.WithFields(ctx, logger.Fields{
		"user_id": target,
		"lookup":  lookup,
		"action":  "profile_lookup_failed",
	}).Errorf("profile lookup failed: %v", err)
}
