package query

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Querier is the part of Client the pool needs; tests swap in fakes.
type Querier interface {
	QueryStatus(ctx context.Context, address string) (*Status, error)
}

// ServerPool tracks a set of game servers and queries them concurrently.
type ServerPool struct {
	client      Querier
	servers     map[string]*Server
	mu          sync.RWMutex
	rateLimiter *RateLimiter
	logger      *slog.Logger
}

// Server is one monitored address with its last known status.
type Server struct {
	Address    string
	Name       string
	lastStatus *Status
	lastError  error
	lastQuery  time.Time
	mu         sync.RWMutex
}

// ServerStatus is the outcome of one poll.
type ServerStatus struct {
	Address   string
	Name      string
	Online    bool
	Status    *Status
	Error     error
	QueryTime time.Duration
	LastQuery time.Time
}

// PlayerCount is 0 for offline servers.
func (s *ServerStatus) PlayerCount() int {
	if s == nil || s.Status == nil {
		return 0
	}
	return s.Status.NumPlayers()
}

// RateLimiter enforces a minimum interval between queries to the same address.
type RateLimiter struct {
	minInterval time.Duration
	limiters    map[string]*serverLimiter
	mu          sync.Mutex
}

type serverLimiter struct {
	lastQuery time.Time
	mu        sync.Mutex
}

func NewRateLimiter(minInterval time.Duration) *RateLimiter {
	return &RateLimiter{
		minInterval: minInterval,
		limiters:    make(map[string]*serverLimiter),
	}
}

// Wait blocks until address may be queried again or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context, address string) error {
	r.mu.Lock()
	limiter, exists := r.limiters[address]
	if !exists {
		limiter = &serverLimiter{}
		r.limiters[address] = limiter
	}
	r.mu.Unlock()

	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	if wait := r.minInterval - time.Since(limiter.lastQuery); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	limiter.lastQuery = time.Now()
	return nil
}

// NewServerPool creates a pool using a default client, one query per second per server.
func NewServerPool(logger *slog.Logger) *ServerPool {
	return NewServerPoolWithClient(NewClient(), logger)
}

func NewServerPoolWithClient(client Querier, logger *slog.Logger) *ServerPool {
	if logger == nil {
		logger = slog.Default()
	}
	return &ServerPool{
		client:      client,
		servers:     make(map[string]*Server),
		rateLimiter: NewRateLimiter(time.Second),
		logger:      logger.With("component", "QUERY"),
	}
}

// AddServer registers address, replacing any existing entry.
func (p *ServerPool) AddServer(address, name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.servers[address] = &Server{Address: address, Name: name}
}

func (p *ServerPool) RemoveServer(address string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.servers, address)
}

func (p *ServerPool) GetServer(address string) (*Server, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	server, exists := p.servers[address]
	if !exists {
		return nil, fmt.Errorf("server not found: %s", address)
	}
	return server, nil
}

// ListServers returns the registered addresses, sorted.
func (p *ServerPool) ListServers() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	addresses := make([]string, 0, len(p.servers))
	for addr := range p.servers {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)
	return addresses
}

func (p *ServerPool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.servers)
}

// QueryServer polls a single registered server.
func (p *ServerPool) QueryServer(ctx context.Context, address string) (*ServerStatus, error) {
	server, err := p.GetServer(address)
	if err != nil {
		return nil, err
	}
	return p.queryServer(ctx, server)
}

// QueryAll polls every server concurrently. Every registered address has an
// entry in the result; failures are reported as offline with Error set.
func (p *ServerPool) QueryAll(ctx context.Context) map[string]*ServerStatus {
	p.mu.RLock()
	servers := make([]*Server, 0, len(p.servers))
	for _, server := range p.servers {
		servers = append(servers, server)
	}
	p.mu.RUnlock()

	results := make(map[string]*ServerStatus, len(servers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, server := range servers {
		wg.Add(1)
		go func(srv *Server) {
			defer wg.Done()

			status, err := p.queryServer(ctx, srv)
			if err != nil {
				status = &ServerStatus{
					Address:   srv.Address,
					Name:      srv.Name,
					Error:     err,
					LastQuery: time.Now(),
				}
			}

			mu.Lock()
			results[srv.Address] = status
			mu.Unlock()
		}(server)
	}

	wg.Wait()
	return results
}

func (p *ServerPool) queryServer(ctx context.Context, server *Server) (*ServerStatus, error) {
	if err := p.rateLimiter.Wait(ctx, server.Address); err != nil {
		server.updateStatus(nil, err)
		return nil, err
	}

	start := time.Now()
	st, err := p.client.QueryStatus(ctx, server.Address)

	status := &ServerStatus{
		Address:   server.Address,
		Name:      server.Name,
		QueryTime: time.Since(start),
		LastQuery: time.Now(),
	}

	if err != nil {
		p.logger.Debug("Status query failed", "address", server.Address, "error", err)
		status.Error = err
		server.updateStatus(nil, err)
		return status, err
	}

	status.Online = true
	status.Status = st
	server.updateStatus(st, nil)
	return status, nil
}

func (s *Server) updateStatus(st *Status, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st != nil {
		s.lastStatus = st
	}
	s.lastError = err
	s.lastQuery = time.Now()
}

// LastStatus returns the most recent successful status, even if the latest
// poll failed, along with the time of the latest poll.
func (s *Server) LastStatus() (*Status, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastStatus, s.lastQuery
}

// IsOnline reports whether the latest poll succeeded.
func (s *Server) IsOnline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastError == nil && s.lastStatus != nil
}

// Monitor polls all servers every interval until ctx is done.
func (p *ServerPool) Monitor(ctx context.Context, interval time.Duration, callback func(map[string]*ServerStatus)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	callback(p.QueryAll(ctx))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			callback(p.QueryAll(ctx))
		}
	}
}
