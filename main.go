package main

import (
	"github.com/kvv-bao/profiler/cmd/app"
)

func main() {
	app.Run()
}
