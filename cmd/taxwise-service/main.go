package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/taxwise/taxwise-server/taxservice"
)

func main() {
	// Optional build-target flag override (local | cloud-dev | cloud)
	buildTarget := flag.String("build-target", "", "Override BUILD_TARGET (local, cloud-dev, cloud)")
	flag.Parse()

	if err := taxservice.Run(*buildTarget); err != nil {
		log.Error().Err(err).Msg("taxwise-service exited with error")
		os.Exit(1)
	}
}
