// Package listener merges independently bound sockets into one net.Listener.
package listener

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
)

const (
	minRetryDelay = 5 * time.Millisecond
	maxRetryDelay = time.Second
)

type accepted struct {
	conn net.Conn
	err  error
}

// Dual accepts from every underlying listener and hands connections out in
// arrival order. A pending connection on any source is surfaced without
// waiting on the others.
type Dual struct {
	listeners []net.Listener
	conns     chan accepted
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Listen binds v4 with tcp4 and v6 with tcp6 so both can share a port without
// the kernel's dual-stack mapping colliding. An empty address is skipped.
func Listen(ctx context.Context, v4, v6 string) (*Dual, error) {
	var lc net.ListenConfig
	var ls []net.Listener

	bind := func(network, addr string) error {
		if addr == "" {
			return nil
		}
		l, err := lc.Listen(ctx, network, addr)
		if err != nil {
			return fmt.Errorf("listen %s %s: %w", network, addr, err)
		}
		ls = append(ls, l)
		return nil
	}

	if err := bind("tcp4", v4); err != nil {
		return nil, err
	}
	if err := bind("tcp6", v6); err != nil {
		for _, l := range ls {
			_ = l.Close()
		}
		return nil, err
	}
	return NewDual(ls...)
}

func NewDual(listeners ...net.Listener) (*Dual, error) {
	if len(listeners) == 0 {
		return nil, errors.New("listener: at least one listener is required")
	}

	d := &Dual{
		listeners: listeners,
		conns:     make(chan accepted),
		done:      make(chan struct{}),
	}
	for _, l := range listeners {
		d.wg.Add(1)
		go d.pump(l)
	}
	return d, nil
}

// pump keeps polling l until it is closed. Other accept errors, such as
// EMFILE, are forwarded and retried with the backoff net/http uses.
func (d *Dual) pump(l net.Listener) {
	defer d.wg.Done()
	var delay time.Duration
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
		}

		select {
		case d.conns <- accepted{conn: conn, err: err}:
		case <-d.done:
			if conn != nil {
				_ = conn.Close()
			}
			return
		}

		if err == nil {
			delay = 0
			continue
		}
		if delay == 0 {
			delay = minRetryDelay
		} else {
			delay = min(2*delay, maxRetryDelay)
		}
		select {
		case <-time.After(delay):
		case <-d.done:
			return
		}
	}
}

func (d *Dual) Accept() (net.Conn, error) {
	select {
	case a := <-d.conns:
		return a.conn, a.err
	case <-d.done:
		return nil, net.ErrClosed
	}
}

// Close stops both sources. Connections accepted but not yet handed out are closed.
func (d *Dual) Close() error {
	var errs []error
	d.closeOnce.Do(func() {
		close(d.done)
		for _, l := range d.listeners {
			if err := l.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
				errs = append(errs, err)
			}
		}
		d.wg.Wait()
	})
	return errors.Join(errs...)
}

// Addr reports the first bound address. Use Addrs or String for all of them.
func (d *Dual) Addr() net.Addr {
	return d.listeners[0].Addr()
}

// String lists every bound address, e.g. "0.0.0.0:14514, [::]:14514".
func (d *Dual) String() string {
	parts := make([]string, len(d.listeners))
	for i, l := range d.listeners {
		parts[i] = l.Addr().String()
	}
	return strings.Join(parts, ", ")
}

func (d *Dual) Addrs() []net.Addr {
	addrs := make([]net.Addr, len(d.listeners))
	for i, l := range d.listeners {
		addrs[i] = l.Addr()
	}
	return addrs
}
