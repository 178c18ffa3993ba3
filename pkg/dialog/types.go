package dialog

import (
	"github.com/harun/phobos/pkg/i18n"
)

// ContentMode selects how the dialog body is laid out
type ContentMode int

const (
	ContentCustom        ContentMode = 0
	ContentImageWithText ContentMode = 1
	ContentCenteredText  ContentMode = 2
	ContentLeftAligned   ContentMode = 3
)

// ButtonType controls button placement and emphasis
type ButtonType int

const (
	ButtonPrimary ButtonType = iota
	ButtonSecondary
	ButtonCancel
)

// Result identifies which control closed a dialog. Button1 is the
// right-most, primary button.
type Result int

const (
	ResultNone Result = iota
	ResultCancel
	ResultButton1
	ResultButton2
	ResultButton3
	ResultButton4
)

// PositionMode selects where the dialog is placed
type PositionMode int

const (
	CenterScreen PositionMode = iota
	CenterOwner
	CustomPosition
)

// Button is one dialog button
type Button struct {
	Text           string            `json:"text"`
	LocalizedTexts map[string]string `json:"localizedTexts,omitempty"`
	Type           ButtonType        `json:"type"`
	Tag            string            `json:"tag"`
	Enabled        bool              `json:"enabled"`
	CloseOnClick   bool              `json:"closeOnClick"`
}

// Label resolves the button text for lang
func (b Button) Label(lang string) string {
	return i18n.Resolve(b.LocalizedTexts, lang, b.Text)
}

// Config describes a dialog the host renders. Buttons are ordered right to
// left, so the first one is the primary action.
type Config struct {
	Title                 string            `json:"title"`
	LocalizedTitles       map[string]string `json:"localizedTitles,omitempty"`
	CallerIconPath        string            `json:"callerIconPath,omitempty"`
	ContentMode           ContentMode       `json:"contentMode"`
	ContentImagePath      string            `json:"contentImagePath,omitempty"`
	ContentImageMaxWidth  float64           `json:"contentImageMaxWidth"`
	ContentImageMaxHeight float64           `json:"contentImageMaxHeight"`
	ContentText           string            `json:"contentText"`
	LocalizedContentTexts map[string]string `json:"localizedContentTexts,omitempty"`
	Buttons               []Button          `json:"buttons"`
	VisibleButtonCount    int               `json:"visibleButtonCount"`
	ShowCancelButton      bool              `json:"showCancelButton"`
	CancelButtonText      string            `json:"cancelButtonText"`
	LocalizedCancelTexts  map[string]string `json:"localizedCancelTexts,omitempty"`
	Width                 float64           `json:"width"`
	MinHeight             float64           `json:"minHeight"`
	MaxHeight             float64           `json:"maxHeight"`
	PositionMode          PositionMode      `json:"positionMode"`
	OffsetX               float64           `json:"offsetX"`
	OffsetY               float64           `json:"offsetY"`
	Draggable             bool              `json:"draggable"`
	ShowCloseButton       bool              `json:"showCloseButton"`
	CloseOnEscape         bool              `json:"closeOnEscape"`
	CloseOnBackground     bool              `json:"closeOnBackground"`
	Modal                 bool              `json:"modal"`
}

// NewConfig returns a Config carrying the default layout
func NewConfig() Config {
	return Config{
		ContentMode:           ContentCenteredText,
		ContentImageMaxWidth:  200,
		ContentImageMaxHeight: 150,
		VisibleButtonCount:    2,
		ShowCancelButton:      true,
		CancelButtonText:      "Cancel",
		Width:                 420,
		MinHeight:             200,
		MaxHeight:             600,
		PositionMode:          CenterScreen,
		Draggable:             true,
		CloseOnEscape:         true,
		Modal:                 true,
	}
}

// NewButton returns an enabled button that closes the dialog
func NewButton(text, tag string, typ ButtonType, localized map[string]string) Button {
	return Button{
		Text:           text,
		LocalizedTexts: localized,
		Type:           typ,
		Tag:            tag,
		Enabled:        true,
		CloseOnClick:   true,
	}
}

// GetTitle resolves the dialog title for lang
func (c Config) GetTitle(lang string) string {
	return i18n.Resolve(c.LocalizedTitles, lang, c.Title)
}

// Content resolves the body text for lang
func (c Config) Content(lang string) string {
	return i18n.Resolve(c.LocalizedContentTexts, lang, c.ContentText)
}

// CancelText resolves the cancel button text for lang
func (c Config) CancelText(lang string) string {
	return i18n.Resolve(c.LocalizedCancelTexts, lang, c.CancelButtonText)
}

// CallbackResult reports how the user closed a dialog
type CallbackResult struct {
	Result Result
	Button *Button
	Tag    string
	Data   any
}

// Cancelled reports whether the dialog was dismissed with cancel
func (r CallbackResult) Cancelled() bool {
	return r.Result == ResultCancel
}
