package ui

import (
	"github.com/adriangreen/tm-list/internal/config"
	tea "github.com/charmbracelet/bubbletea"
)

// ConfigReloadedMsg is sent when the config file has been reloaded from disk
type ConfigReloadedMsg struct{}

// WatcherErrorMsg is sent when the config watcher encounters an error
type WatcherErrorMsg struct {
	Err error
}

// WaitForConfigReload returns a command that waits for config to be reloaded
// and sends a ConfigReloadedMsg when that happens
func WaitForConfigReload(manager *config.ConfigManager) tea.Cmd {
	return func() tea.Msg {
		<-manager.ReloadEvents()
		return ConfigReloadedMsg{}
	}
}
