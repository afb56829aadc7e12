package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Start runs the interactive file browser and returns the absolute path of
// the `.ebx` file the operator picked, or "" if they backed out. The caller
// is left to drive the actual decode/convert, keeping this package free of
// any dependency on the CLI's conversion logic.
func Start() string {
	folderSelector := CreateFileSelector()
	if err := tea.NewProgram(&folderSelector).Start(); err != nil {
		panic(err)
	}
	if folderSelector.Quit {
		return ""
	}
	return folderSelector.Selected
}
