package media

import "fmt"

// Mode selects how a batch treats new selections.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeMulti  Mode = "multi"
)

const (
	SingleMaxFileSize = 5 * 1024 * 1024  // 5 MB
	MultiMaxFileSize  = 12 * 1024 * 1024 // 12 MB
	MultiMaxFiles     = 12
)

// Policy limits what a batch may hold.
type Policy struct {
	Mode        Mode
	MaxFiles    int
	MaxFileSize int64
	// Replace makes a new selection replace the pending set instead of appending to it.
	Replace bool
}

func PolicyFor(mode Mode) (Policy, error) {
	switch mode {
	case ModeSingle:
		return Policy{Mode: ModeSingle, MaxFiles: 1, MaxFileSize: SingleMaxFileSize, Replace: true}, nil
	case ModeMulti:
		return Policy{Mode: ModeMulti, MaxFiles: MultiMaxFiles, MaxFileSize: MultiMaxFileSize}, nil
	default:
		return Policy{}, &PolicyViolation{Reason: fmt.Sprintf("unknown upload mode %q", mode)}
	}
}

func (p Policy) SizeLabel() string {
	return fmt.Sprintf("%dMB", p.MaxFileSize/(1024*1024))
}
