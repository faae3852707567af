package main

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"cguard/internal/driver"
	"cguard/internal/ui"
)

// runProgressUI renders events until the channel is closed or the user
// quits.
func runProgressUI(title string, events <-chan driver.Event) error {
	model := ui.NewProgressModel(title, nil, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, err := program.Run()
	return err
}
