package main

import (
	"bufio"
	"crypto/md5"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

var errNoProxy = errors.New("unable to find an unleased proxy")

// ProxyManager hands out outbound proxies to tasks, one task per proxy.
type ProxyManager struct {
	mu             sync.Mutex
	index          int
	proxies        []*Proxy
	leases         map[string]string
	leasesByTaskId map[string]string
}

type Proxy struct {
	hash     string
	host     string
	port     string
	username string
	password string
}

func (p *Proxy) URL() *url.URL {
	u := &url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(p.host, p.port),
	}
	if p.username != "" {
		u.User = url.UserPassword(p.username, p.password)
	}
	return u
}

func NewProxyManager() *ProxyManager {
	pm := new(ProxyManager)
	pm.proxies = []*Proxy{}
	pm.leases = make(map[string]string)
	pm.leasesByTaskId = make(map[string]string)
	return pm
}

// Read loads host:port[:username:password] lines from filename.
func (pm *ProxyManager) Read(filename string) error {
	proxyFile, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "open proxy file")
	}
	defer proxyFile.Close()

	proxyFileScanner := bufio.NewScanner(proxyFile)
	proxyFileScanner.Split(bufio.ScanLines)

	for n := 1; proxyFileScanner.Scan(); n++ {
		line := strings.TrimSpace(proxyFileScanner.Text())
		if line == "" {
			continue
		}
		if _, err := pm.AddProxy(line); err != nil {
			return errors.Wrapf(err, "%s:%d", filename, n)
		}
	}

	return errors.Wrap(proxyFileScanner.Err(), "read proxy file")
}

func (pm *ProxyManager) AddProxy(proxy string) (*Proxy, error) {
	parts := strings.Split(proxy, ":")
	if len(parts) != 2 && len(parts) != 4 {
		return nil, fmt.Errorf("malformed proxy %q", proxy)
	}

	p := &Proxy{host: parts[0], port: parts[1]}
	if len(parts) == 4 {
		p.username = parts[2]
		p.password = parts[3]
	}
	p.hash = fmt.Sprintf("%x", md5.Sum([]byte(proxy)))

	pm.mu.Lock()
	pm.proxies = append(pm.proxies, p)
	pm.mu.Unlock()

	return p, nil
}

func (pm *ProxyManager) Count() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return len(pm.proxies)
}

func (pm *ProxyManager) unlease(taskId string) {
	pHash, ok := pm.leasesByTaskId[taskId]
	if !ok {
		return
	}

	delete(pm.leases, pHash)
	delete(pm.leasesByTaskId, taskId)
}

func (pm *ProxyManager) Unlease(taskId string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.unlease(taskId)
}

// Lease releases any proxy held by taskId and leases the next free one in
// round robin order.
func (pm *ProxyManager) Lease(taskId string) (*Proxy, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.unlease(taskId)

	for attempts := 0; attempts < len(pm.proxies); attempts++ {
		i := pm.index
		pm.index = (i + 1) % len(pm.proxies)

		p := pm.proxies[i]

		if _, ok := pm.leases[p.hash]; !ok {
			pm.leasesByTaskId[taskId] = p.hash
			pm.leases[p.hash] = taskId
			return p, nil
		}
	}

	return nil, errNoProxy
}
