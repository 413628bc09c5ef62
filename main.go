package main

import (
	"go-event-cms/core/logger"
	"go-event-cms/core/server"
)

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", err)
	}
}
