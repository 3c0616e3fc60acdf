// ABOUTME: mDNS discovery for stream receivers
// ABOUTME: Receivers advertise _pcmcast._udp; senders run a one-shot lookup
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service receivers register under.
const ServiceType = "_pcmcast._udp"

// Receiver describes a discovered stream receiver.
type Receiver struct {
	Instance string
	Host     string
	Port     int
}

// Addr returns the receiver's UDP address as host:port.
func (r Receiver) Addr() string {
	return net.JoinHostPort(r.Host, fmt.Sprintf("%d", r.Port))
}

// Advertiser keeps an mDNS registration alive for a listening receiver.
type Advertiser struct {
	server *mdns.Server
}

// Advertise registers a receiver instance on the local network. The name
// gets a short random suffix so several receivers on one host stay distinct.
// Shutdown the returned Advertiser to withdraw the registration.
func Advertise(name string, port int) (*Advertiser, error) {
	ips, err := localIPs()
	if err != nil {
		return nil, fmt.Errorf("discovery: %w", err)
	}

	instance := fmt.Sprintf("%s-%s", name, uuid.NewString()[:8])
	service, err := mdns.NewMDNSService(instance, ServiceType, "", "", port, ips, nil)
	if err != nil {
		return nil, fmt.Errorf("discovery: create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("discovery: start responder: %w", err)
	}

	log.Printf("advertising %s as %q on port %d", ServiceType, instance, port)

	return &Advertiser{server: server}, nil
}

// Shutdown withdraws the registration.
func (a *Advertiser) Shutdown() error {
	return a.server.Shutdown()
}

// Lookup browses for receivers until the timeout or context expiry and
// returns everything found.
func Lookup(ctx context.Context, timeout time.Duration) ([]Receiver, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	found := make(chan []Receiver, 1)

	go func() {
		var receivers []Receiver
		for entry := range entries {
			if entry.AddrV4 == nil {
				continue
			}
			receivers = append(receivers, Receiver{
				Instance: entry.Name,
				Host:     entry.AddrV4.String(),
				Port:     entry.Port,
			})
		}
		found <- receivers
	}()

	params := &mdns.QueryParam{
		Service: ServiceType,
		Domain:  "local",
		Timeout: timeout,
		Entries: entries,
	}
	err := mdns.Query(params)
	close(entries)
	receivers := <-found
	if err != nil {
		return receivers, fmt.Errorf("discovery: query: %w", err)
	}
	if ctx.Err() != nil {
		return receivers, ctx.Err()
	}

	return receivers, nil
}

// localIPs collects the machine's non-loopback IPv4 addresses.
func localIPs() ([]net.IP, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	var ips []net.IP
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
				ips = append(ips, ipnet.IP)
			}
		}
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("no usable network interface")
	}

	return ips, nil
}
