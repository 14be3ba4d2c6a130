// Package discovery resolves downstream service addresses from the Consul catalog.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/hashicorp/consul/api"
)

var ErrServiceNotFound = errors.New("service not registered in catalog")

type Resolver struct {
	catalog *api.Catalog
}

func NewResolver(addr string) (*Resolver, error) {
	cfg := api.DefaultConfig()
	if addr != "" {
		cfg.Address = addr
	}
	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}
	return &Resolver{catalog: client.Catalog()}, nil
}

// Resolve returns host:port of the first catalog entry for service.
func (r *Resolver) Resolve(ctx context.Context, service string) (string, error) {
	entries, _, err := r.catalog.Service(service, "", (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("query consul catalog for %q: %w", service, err)
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("%w: %s", ErrServiceNotFound, service)
	}

	e := entries[0]
	host := e.ServiceAddress
	if host == "" {
		host = e.Address
	}
	if host == "" || e.ServicePort <= 0 {
		return "", fmt.Errorf("invalid catalog entry for %q: address=%q port=%d", service, host, e.ServicePort)
	}
	return net.JoinHostPort(host, strconv.Itoa(e.ServicePort)), nil
}

// ResolveOr picks the static url when set, otherwise asks the catalog.
func ResolveOr(ctx context.Context, r *Resolver, static, service string) (string, error) {
	if static != "" {
		return static, nil
	}
	if r == nil {
		return "", fmt.Errorf("no address configured for %q and discovery is disabled", service)
	}
	return r.Resolve(ctx, service)
}
