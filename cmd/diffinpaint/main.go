package main

import (
	"log/slog"
	"os"

	"diffinpaint/internal/cli"
	"diffinpaint/pkg/session"
	"diffinpaint/pkg/visualization"
)

func main() {
	if err := cli.Execute(runViewer); err != nil {
		os.Exit(1)
	}
}

func runViewer(s *session.Session, showStatus bool, logger *slog.Logger) error {
	return visualization.Run(visualization.NewViewer(s, showStatus, logger))
}
