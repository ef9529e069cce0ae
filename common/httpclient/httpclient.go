package httpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"time"
)

func defaultTransportDialContext(dialer *net.Dialer) func(context.Context, string, string) (net.Conn, error) {
	return dialer.DialContext
}

// HttpClient is the transport shared by the Slack and Jira clients.
// It matches the interface expected by slack.OptionHTTPClient.
type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type httpClient struct {
	client *http.Client
	err    error
}

func (c *httpClient) Do(req *http.Request) (*http.Response, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.client.Do(req)
}

// NewHttpClient returns a client that uses the default transport settings.
// When tlsCA is set, it's used as the only root CA to validate the remote servers.
func NewHttpClient(tlsCA string) HttpClient {
	client := httpClient{&http.Client{}, nil}
	if tlsCA == "" {
		return &client
	}
	certPool := x509.NewCertPool()
	if !certPool.AppendCertsFromPEM([]byte(tlsCA)) {
		client.err = fmt.Errorf("failed to append root CA into cert pool")
		return &client
	}
	// from http.DefaultTransport
	client.client.Transport = &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: defaultTransportDialContext(&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}),
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			RootCAs: certPool,
		},
	}
	return &client
}
