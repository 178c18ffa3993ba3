package plugin

import (
	"time"

	"github.com/harun/phobos/pkg/i18n"
)

// LinkAssociation asks the host to associate a protocol with a command of
// the calling plugin. PackageName is informational; the host uses the caller
// context to decide ownership.
type LinkAssociation struct {
	Protocol              string
	PackageName           string
	Name                  string
	Description           string
	Command               string
	LocalizedDescriptions map[string]string
}

// LocalizedDescription resolves the description for lang
func (l LinkAssociation) LocalizedDescription(lang string) string {
	return i18n.Resolve(l.LocalizedDescriptions, lang, l.Description)
}

// ProtocolHandlerOption is one registered way to open a protocol
type ProtocolHandlerOption struct {
	UUID           string
	Protocol       string
	AssociatedItem string
	PackageName    string
	Description    string
	Command        string
	UpdateTime     time.Time
	IsUpdated      bool
	IsDefault      bool
}
