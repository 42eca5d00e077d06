// Package bonjour advertises the running share over mDNS so Finder and
// other SMB clients can find it without a NetBIOS name server. SMB1 has
// no discovery protocol of its own; this is the one form of "clients
// need to find the server" this stack supports.
package bonjour

import (
	"net"
	"strconv"

	"github.com/grandcat/zeroconf"
	log "github.com/sirupsen/logrus"
)

var server *zeroconf.Server

func findInterfaceByAddress(targetIP string) ([]net.Interface, error) {
	if targetIP == "" {
		return nil, nil
	}
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range interfaces {
		addrs, err := iface.Addrs()
		if err != nil {
			return nil, err
		}
		for _, addr := range addrs {
			if v, ok := addr.(*net.IPNet); ok && v.IP.String() == targetIP {
				return []net.Interface{iface}, nil
			}
		}
	}
	return nil, nil
}

func getLocalIPForDefaultGateway() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}

func getNonLoopbackIPAddresses() ([]string, error) {
	var ips []string
	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for _, iface := range interfaces {
		addrs, err := iface.Addrs()
		if err != nil {
			return nil, err
		}
		for _, addr := range addrs {
			if v, ok := addr.(*net.IPNet); ok {
				if ipv4 := v.IP.To4(); ipv4 != nil && !ipv4.IsLoopback() {
					ips = append(ips, ipv4.String())
				}
			}
		}
	}
	return ips, nil
}

// Advertise registers one _smb._tcp service for shareName at listenAddr
// under hostname and returns once it is registered; the advertisement
// stays up until Shutdown is called.
func Advertise(listenAddr, hostname, shareName string) error {
	host, portStr, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return err
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return err
	}

	ifaces, err := findInterfaceByAddress(host)
	if err != nil {
		log.Infof("bonjour: findInterfaceByAddress failed: %v", err)
	}

	ips := []string{host}
	if host == "" || host == "0.0.0.0" {
		if ip, err := getLocalIPForDefaultGateway(); err == nil {
			ips = []string{ip}
		} else {
			ips, _ = getNonLoopbackIPAddresses()
		}
	}

	s, err := zeroconf.RegisterProxy(hostname, "_smb._tcp", "local.", port, shareName, ips, []string{""}, ifaces)
	if err != nil {
		return err
	}
	server = s
	return nil
}

// Shutdown withdraws the mDNS advertisement, if one is active.
func Shutdown() {
	if server != nil {
		server.Shutdown()
		server = nil
	}
}
