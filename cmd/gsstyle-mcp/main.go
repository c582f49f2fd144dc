// Command gsstyle-mcp serves the GeoServer style tools to MCP clients.
package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/dcfaria/GeoServer/mcp"
)

func main() {
	if err := mcp.RunMCPServer(); err != nil {
		log.Error().Err(err).Msg("MCP server exited with error")
		os.Exit(1)
	}
}
