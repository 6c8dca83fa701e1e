package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// keyMap defines key bindings for the history browser
type keyMap struct {
	Up     key
	Down   key
	Top    key
	Bottom key
	Detail key
	Quit   key
}

// key represents a key binding with help text
type key struct {
	tea.Key
	help string
}

// shortHelp returns key bindings for the footer
func (k keyMap) shortHelp() []key {
	return []key{k.Up, k.Down, k.Top, k.Bottom, k.Detail, k.Quit}
}

// Help renders the footer help line
func (k keyMap) Help() string {
	parts := make([]string, 0, len(k.shortHelp()))
	for _, b := range k.shortHelp() {
		parts = append(parts, "["+b.help+"]")
	}
	return strings.Join(parts, " ")
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key{
			Key:  tea.Key{Type: tea.KeyRunes, Runes: []rune{'k'}},
			help: "↑/k up",
		},
		Down: key{
			Key:  tea.Key{Type: tea.KeyRunes, Runes: []rune{'j'}},
			help: "↓/j down",
		},
		Top: key{
			Key:  tea.Key{Type: tea.KeyRunes, Runes: []rune{'g'}},
			help: "g first",
		},
		Bottom: key{
			Key:  tea.Key{Type: tea.KeyRunes, Runes: []rune{'G'}},
			help: "G last",
		},
		Detail: key{
			Key:  tea.Key{Type: tea.KeyEnter},
			help: "enter details",
		},
		Quit: key{
			Key:  tea.Key{Type: tea.KeyRunes, Runes: []rune{'q'}},
			help: "q quit",
		},
	}
}
