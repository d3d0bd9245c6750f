package tui

// refreshMsg is sent when the list view state changes outside Update.
type refreshMsg struct{}

type copiedMsg struct{}

type errMsg struct {
	err error
}

type clearStatusMsg struct{}
