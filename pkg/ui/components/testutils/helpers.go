package testutils

import (
	tea "charm.land/bubbletea/v2"
)

// NewKeyPressMsg creates a KeyPressMsg from a key code (for special keys)
func NewKeyPressMsg(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg(tea.Key{Code: code})
}

// NewTextKeyPressMsg creates a KeyPressMsg for text input
func NewTextKeyPressMsg(text string) tea.KeyPressMsg {
	if len(text) == 0 {
		return tea.KeyPressMsg(tea.Key{})
	}
	r := []rune(text)[0]
	return tea.KeyPressMsg(tea.Key{
		Code: r,
		Text: text,
	})
}

// NewCtrlKeyPressMsg creates a Ctrl+<char> KeyPressMsg.
func NewCtrlKeyPressMsg(char rune) tea.KeyPressMsg {
	return tea.KeyPressMsg(tea.Key{
		Code: char,
		Mod:  tea.ModCtrl,
	})
}

// TypeText converts text into one KeyPressMsg per rune.
func TypeText(text string) []tea.KeyPressMsg {
	msgs := make([]tea.KeyPressMsg, 0, len(text))
	for _, r := range text {
		msgs = append(msgs, NewTextKeyPressMsg(string(r)))
	}
	return msgs
}

var (
	TestKeyEnter     = NewKeyPressMsg(tea.KeyEnter)
	TestKeyEsc       = NewKeyPressMsg(tea.KeyEscape)
	TestKeyBackspace = NewKeyPressMsg(tea.KeyBackspace)

	TestKeyCtrlC = NewCtrlKeyPressMsg('c')
	TestKeyCtrlE = NewCtrlKeyPressMsg('e')
	TestKeyCtrlK = NewCtrlKeyPressMsg('k')
	TestKeyCtrlY = NewCtrlKeyPressMsg('y')
)
