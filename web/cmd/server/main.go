// Package main provides a server that measures the real-world size of objects
// in submitted images.
package main

import (
	"github.com/edaniels/golog"
	goutils "go.viam.com/utils"

	"github.com/UmeshNayak1/DimensiMeasure/web"
)

var logger = golog.NewDevelopmentLogger("dimensi_server")

func main() {
	goutils.ContextualMain(web.RunServer, logger)
}
