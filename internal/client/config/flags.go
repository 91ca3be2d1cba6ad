package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/rfile/internal/flagx"
)

// parseFlags populates client Config fields from command-line flags:
//
//	-a string  server address (host:port)
//	-f string  session token file
//	-n int     upload block size, bytes
//	-i         skip TLS certificate verification
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-f", "-n", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.ServerEndpointAddr, "a", config.ServerEndpointAddr, "server address")
	fs.StringVar(&config.SessionFile, "f", config.SessionFile, "session token file")
	fs.Int64Var(&config.ChunkSize, "n", config.ChunkSize, "upload block size in bytes")
	fs.BoolVar(&config.TLSSkipVerify, "i", config.TLSSkipVerify, "skip TLS certificate verification")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
