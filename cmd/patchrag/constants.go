package main

// Default limits for CLI commands.
const (
	DefaultHistoryLimit = 20
	// MaxPreviewContent truncates page content in preview output.
	MaxPreviewContent = 200
)

const exampleQuestion = "Tell me about changes to the neutral item Ripper's Lash in patch 7.38c."
