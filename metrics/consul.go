package metrics

import (
	"fmt"
	"net"
	"strconv"

	"github.com/hashicorp/consul/api"
)

// RegisterScrapeTarget registers the metrics endpoint listening on addr as a
// Consul service so Prometheus consul_sd can discover it. The returned func
// deregisters the service.
func RegisterScrapeTarget(cfg *Cfg, addr net.Addr) (func() error, error) {
	if cfg == nil || cfg.ConsulAddr == "" {
		return nil, fmt.Errorf("consul address is not configured")
	}

	host, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return nil, fmt.Errorf("split metrics addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("parse metrics port: %w", err)
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsUnspecified() {
		// let the agent advertise its own address
		host = ""
	}

	clientCfg := api.DefaultConfig()
	clientCfg.Address = cfg.ConsulAddr
	client, err := api.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}

	id := cfg.ServiceID
	if id == "" {
		id = fmt.Sprintf("%s-%d", cfg.ServiceName, port)
	}

	checkHost := host
	if checkHost == "" {
		checkHost = "127.0.0.1"
	}
	reg := &api.AgentServiceRegistration{
		ID:      id,
		Name:    cfg.ServiceName,
		Address: host,
		Port:    port,
		Tags:    []string{"metrics"},
		Meta:    map[string]string{"metrics_path": cfg.Path},
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s%s", net.JoinHostPort(checkHost, portStr), cfg.Path),
			Interval:                       "10s",
			Timeout:                        "2s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}
	if err := client.Agent().ServiceRegister(reg); err != nil {
		return nil, fmt.Errorf("register consul service %s: %w", id, err)
	}

	return func() error {
		return client.Agent().ServiceDeregister(id)
	}, nil
}
