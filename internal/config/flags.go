package config

import (
	"errors"
	"flag"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-redis-url redis connection URL
//	-c/-config json file path with configs
//	-verifier-hash-key auth verifier hash key
//	-token-sign-key token signing key
//	-token-issuer token issuer name
//	-token-duration token duration (e.g., "1h", "30m")
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-share-base-url public origin for share links
//	-auto-revoke-grace grace delay before auto-revoke-after-use fires
//	-sweep-interval background sweep tick period
//	-session-idle-timeout access session inactivity limit
func ParseFlags() *StructuredConfig {
	var serverAddress NetAddress
	var databaseDSN string
	var redisURL string
	var jsonConfigPath string
	var verifierHashKey string
	var tokenSignKey string
	var tokenIssuer string
	var tokenDuration time.Duration
	var requestTimeout time.Duration
	var shareBaseURL string
	var autoRevokeGrace time.Duration
	var sweepInterval time.Duration
	var sessionIdleTimeout time.Duration

	flag.Var(&serverAddress, "a", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&redisURL, "redis-url", "", "Redis connection URL")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&verifierHashKey, "verifier-hash-key", "", "Auth verifier hash key")
	flag.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	flag.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	flag.DurationVar(&tokenDuration, "token-duration", 0, "Token duration (e.g., 1h, 30m)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.StringVar(&shareBaseURL, "share-base-url", "", "Public origin for share links")
	flag.DurationVar(&autoRevokeGrace, "auto-revoke-grace", 0, "Grace delay before auto-revoke-after-use fires")
	flag.DurationVar(&sweepInterval, "sweep-interval", 0, "Background sweep tick period")
	flag.DurationVar(&sessionIdleTimeout, "session-idle-timeout", 0, "Access session inactivity limit")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			VerifierHashKey: verifierHashKey,
			TokenSignKey:    tokenSignKey,
			TokenIssuer:     tokenIssuer,
			TokenDuration:   tokenDuration,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
			Redis: Redis{
				URL: redisURL,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Share: Share{
			BaseURL:         shareBaseURL,
			AutoRevokeGrace: autoRevokeGrace,
		},
		Workers: Workers{
			SweepInterval:      sweepInterval,
			SessionIdleTimeout: sessionIdleTimeout,
		},
		JSONFilePath: jsonConfigPath,
	}
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
