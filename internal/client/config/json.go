package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/rfile/internal/flagx"
)

// JsonConfig is the DTO for reading client configuration from a JSON file.
type JsonConfig struct {
	ServerEndpointAddr string `json:"server_endpoint_addr"`
	SessionFile        string `json:"session_file"`
	ChunkSize          int64  `json:"chunk_size"`
	TLSSkipVerify      bool   `json:"tls_skip_verify"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path is taken from the -c or -config flags; if
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.ServerEndpointAddr = c.ServerEndpointAddr
	config.SessionFile = c.SessionFile
	config.ChunkSize = c.ChunkSize
	config.TLSSkipVerify = c.TLSSkipVerify
}
