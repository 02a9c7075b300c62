package main

import (
	"fmt"
	"os"

	"github.com/noah-isme/school-core/internal/cli"
)

// @title School Core API
// @version 1.0.0
// @description Classroom timetables with teacher double-booking protection, and subject grade records.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
