package plugin

import (
	"crypto/md5"
	"errors"
	"fmt"
)

// Info contains plugin metadata
type Info struct {
	ID       string // Unique plugin identifier (e.g., "com.example.myplugin")
	Name     string // Display name
	Version  string // Semantic version (e.g., "1.0.0")
	Vendor   string // Company/developer name
	Category string // Plugin category (e.g., "Fx", "Instrument")

	AcceptsMIDI  bool
	ProducesMIDI bool
	TailSamples  int32
}

// UID derives a stable 16-byte identifier from the string ID.
func (i Info) UID() [16]byte {
	return md5.Sum([]byte(i.ID))
}

// ValidateUID checks that a UID can be derived.
func (i Info) ValidateUID() error {
	if i.ID == "" {
		return errors.New("plugin ID is empty")
	}
	return nil
}

// String returns "Name Version (Vendor)".
func (i Info) String() string {
	return fmt.Sprintf("%s %s (%s)", i.Name, i.Version, i.Vendor)
}
