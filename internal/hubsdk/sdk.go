package hubsdk

import (
	"fmt"
	"net"
	"runtime"
	"time"

	"github.com/imroc/req/v3"

	"github.com/tomasz-wiszkowski/hubitat-backup/internal/version"
)

var userAgent = fmt.Sprintf("%s/%s (%s; %s; %s)", version.AppName, version.Version, version.Revision, runtime.GOOS, runtime.GOARCH)

const (
	// DiagnosticPort is where every hub exposes its maintenance service.
	// The firmware does not allow moving it.
	DiagnosticPort = "8081"

	// DefaultTimeout bounds each individual HTTP request.
	DefaultTimeout = 30 * time.Second
)

// Config carries everything needed to talk to one hub.
type Config struct {
	// Host is the hub's IP address or hostname. A port may be given
	// explicitly; otherwise DiagnosticPort is assumed.
	Host string

	// MAC is the hub's MAC address, the only credential the diagnostic
	// service knows. Accepted in any common notation; normalized by
	// Validate.
	MAC string

	// Timeout applies per request. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Validate checks the config and normalizes it in place.
func (c *Config) Validate() error {
	if c.Host == "" {
		return ErrNoHost
	}
	mac, err := NormalizeMAC(c.MAC)
	if err != nil {
		return err
	}
	c.MAC = mac
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}

// BaseURL returns the root of the hub's diagnostic service.
func (c *Config) BaseURL() string {
	host := c.Host
	if _, _, err := net.SplitHostPort(host); err != nil {
		host = net.JoinHostPort(host, DiagnosticPort)
	}
	return "http://" + host
}

// HubSDK is a client for the Hubitat diagnostic service. The service is
// session based: Login stores a cookie in the client's jar and every later
// call rides on it. Requests are attempted exactly once; this tool runs from
// a scheduler, so the next run is the retry.
type HubSDK struct {
	config *Config
	client *req.Client
}

// New validates the config and builds a client for the hub it describes.
func New(config *Config) (*HubSDK, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client := req.C().
		SetBaseURL(config.BaseURL()).
		SetTimeout(config.Timeout).
		SetUserAgent(userAgent).
		SetJsonMarshal(jsonMarshal).
		SetJsonUnmarshal(jsonUnmarshal)

	return &HubSDK{
		config: config,
		client: client,
	}, nil
}
