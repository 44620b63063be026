package main

import (
	"gov-token-booking/cmd/bootstrap"

	"github.com/sirupsen/logrus"
)

func main() {
	app, err := bootstrap.New()
	if err != nil {
		logrus.Fatalf("Failed to start token booking service: %v", err)
	}

	app.Run()
}
