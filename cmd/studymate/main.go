package main

import (
	"github.com/joho/godotenv"

	"github.com/Rrens/studymate/internal/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}
