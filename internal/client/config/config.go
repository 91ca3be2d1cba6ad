// Package config handles configuration for the CLI client.
package config

// Config holds runtime settings for the rfile client.
//
//   - ServerEndpointAddr: host:port of the TLS server.
//   - SessionFile: path of the JSON file caching the session token.
//   - ChunkSize: upload block size in bytes. The wire frames a whole block
//     in one request line, so this must stay well under the server's
//     request cap.
//   - TLSSkipVerify: skip server certificate verification. Only for
//     development against self-signed certificates.
type Config struct {
	ServerEndpointAddr string
	SessionFile        string
	ChunkSize          int64
	TLSSkipVerify      bool
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:7878"
	c.SessionFile = "session.json"
	c.ChunkSize = 1 << 20
	c.TLSSkipVerify = false
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
