package main

import (
	"os"

	"github.com/backwardspy/whiskers2"
	"github.com/backwardspy/whiskers2/internal/lsp"
)

func main() {
	s := lsp.NewServer(whiskers2.Version)
	if err := s.Run(); err != nil {
		os.Exit(1)
	}
}
