// Package registry provides optional cluster-visibility registration of an
// engine instance via Consul, adapted from Tim275-oms's discovery/consul
// package. This is independent of the broker-level "fbp" discovery channel
// (engine/discovery.go): it lets an operator see which hosts are running
// which participants without subscribing to the broker at all.
package registry

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	consul "github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

// Registry registers and deregisters a running engine with an external
// service catalog. A single engine process can host several participants at
// once (unlike the teacher's one-service-per-process model), so
// registration is keyed by role rather than assumed singular.
type Registry interface {
	RegisterAll(ctx context.Context, instanceID string, roles map[string]string) error
	Deregister(ctx context.Context, instanceID, role string) error
	HealthCheck(instanceID, role string) error
}

// ConsulRegistry implements Registry against a Consul agent.
type ConsulRegistry struct {
	client *consul.Client
	logger *zap.Logger
}

// NewConsul connects to the Consul agent at addr. addr is typically
// "localhost:8500". A nil logger discards registration retry diagnostics.
func NewConsul(addr string, logger *zap.Logger) (*ConsulRegistry, error) {
	cfg := consul.DefaultConfig()
	cfg.Address = addr

	client, err := consul.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to consul: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &ConsulRegistry{client: client, logger: logger}, nil
}

// RegisterAll advertises one Consul service per role, each listening on its
// paired hostPort (e.g. "localhost:8080" for a healthcheck endpoint the host
// exposes alongside its broker connection). An engine hosting N participants
// under one process registers N catalog entries, each keyed by
// "instanceID-role" so Deregister/HealthCheck can address a single role
// without disturbing the others.
//
// Each role is registered under its own bounded exponential backoff,
// mirroring transport/amqp's reconnect loop: a Consul agent that isn't
// reachable yet at engine startup (common under container orchestrators
// racing service startup order) shouldn't fail engine launch outright.
// RegisterAll stops at the first role that exhausts its retry budget and
// reports which role failed, leaving any roles already registered in place.
func (r *ConsulRegistry) RegisterAll(ctx context.Context, instanceID string, roles map[string]string) error {
	for role, hostPort := range roles {
		if err := r.registerOne(ctx, instanceID, role, hostPort); err != nil {
			return fmt.Errorf("register role %q: %w", role, err)
		}
	}
	return nil
}

func (r *ConsulRegistry) registerOne(ctx context.Context, instanceID, role, hostPort string) error {
	host, portStr, found := strings.Cut(hostPort, ":")
	if !found {
		return fmt.Errorf("invalid hostPort %q: expected host:port", hostPort)
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port in hostPort %q: %w", hostPort, err)
	}

	checkID := instanceID + "-" + role
	reg := &consul.AgentServiceRegistration{
		ID:      checkID,
		Name:    role,
		Address: host,
		Port:    port,
		Check: &consul.AgentServiceCheck{
			CheckID:                        checkID,
			TTL:                            "15s",
			DeregisterCriticalServiceAfter: "30s",
		},
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if err := r.client.Agent().ServiceRegister(reg); err != nil {
			r.logger.Warn("consul register attempt failed",
				zap.String("role", role), zap.Error(err))
			return err
		}
		return nil
	}, b)
}

// Deregister removes a single role's Consul service entry, leaving any other
// roles registered under the same instanceID untouched.
func (r *ConsulRegistry) Deregister(ctx context.Context, instanceID, role string) error {
	return r.client.Agent().ServiceDeregister(instanceID + "-" + role)
}

// HealthCheck reports role as healthy, resetting its TTL check.
func (r *ConsulRegistry) HealthCheck(instanceID, role string) error {
	return r.client.Agent().UpdateTTL(instanceID+"-"+role, "online", consul.HealthPassing)
}

var _ Registry = (*ConsulRegistry)(nil)
