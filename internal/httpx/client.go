// Package httpx предоставляет общий пул HTTP-соединений для всех внешних
// клиентов детектора (exchange quote API, odds API, LLM resolver).
package httpx

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"sync"
	"time"
)

// ClientConfig содержит настройки пулящего HTTP клиента.
type ClientConfig struct {
	ConnectTimeout time.Duration // таймаут установки TCP соединения (default: 5s)
	ReadTimeout    time.Duration // таймаут чтения ответа (default: 10s)
	TotalTimeout   time.Duration // общий таймаут операции (default: 30s)

	MaxIdleConns        int           // максимум idle соединений (default: 100)
	MaxIdleConnsPerHost int           // максимум idle соединений на хост (default: 10)
	MaxConnsPerHost     int           // максимум соединений на хост (default: 20)
	IdleConnTimeout     time.Duration // таймаут простоя соединения (default: 90s)

	TLSHandshakeTimeout time.Duration // таймаут TLS handshake (default: 5s)

	DisableKeepAlives bool
	KeepAliveInterval time.Duration // (default: 30s)
}

// DefaultClientConfig возвращает конфигурацию по умолчанию, подходящую для
// батч-фетча котировок биржи и запросов odds API.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		ConnectTimeout: 5 * time.Second,
		ReadTimeout:    10 * time.Second,
		TotalTimeout:   30 * time.Second,

		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout: 5 * time.Second,

		DisableKeepAlives: false,
		KeepAliveInterval: 30 * time.Second,
	}
}

// Client - пулящий HTTP клиент с явными таймаутами на каждом уровне стека.
type Client struct {
	http   *http.Client
	config ClientConfig
}

var (
	globalClient     *Client
	globalClientOnce sync.Once
)

// Global возвращает общий HTTP клиент с настройками по умолчанию,
// переиспользуемый всеми компонентами, которым не нужна своя connection pool.
func Global() *Client {
	globalClientOnce.Do(func() {
		globalClient = New(DefaultClientConfig())
	})
	return globalClient
}

// New создаёт новый HTTP клиент с заданной конфигурацией.
func New(config ClientConfig) *Client {
	dialer := &net.Dialer{
		Timeout:   config.ConnectTimeout,
		KeepAlive: config.KeepAliveInterval,
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if deadline, ok := ctx.Deadline(); ok {
				if timeout := time.Until(deadline); timeout < config.ConnectTimeout {
					d := &net.Dialer{Timeout: timeout, KeepAlive: config.KeepAliveInterval}
					return d.DialContext(ctx, network, addr)
				}
			}
			return dialer.DialContext(ctx, network, addr)
		},

		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		MaxConnsPerHost:     config.MaxConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,

		TLSHandshakeTimeout: config.TLSHandshakeTimeout,
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},

		DisableKeepAlives: config.DisableKeepAlives,

		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: config.ReadTimeout,
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   config.TotalTimeout,
		},
		config: config,
	}
}

// Do выполняет HTTP запрос, используя deadline объявленный в req.Context().
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.http.Do(req)
}

// StdClient возвращает базовый *http.Client, чтобы его transport можно было
// переиспользовать из resty (go-resty) или любого другого клиента поверх.
func (c *Client) StdClient() *http.Client {
	return c.http
}

// Config возвращает текущую конфигурацию клиента.
func (c *Client) Config() ClientConfig {
	return c.config
}

// Close закрывает все idle-соединения; вызывается при graceful shutdown.
func (c *Client) Close() {
	if transport, ok := c.http.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// CloseGlobal закрывает общий HTTP клиент, если он был инициализирован.
func CloseGlobal() {
	if globalClient != nil {
		globalClient.Close()
	}
}
