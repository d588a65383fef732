package layout

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Target describes the ABI target triple and its pointer properties.
type Target struct {
	Triple   string `toml:"triple"`
	PtrSize  int    `toml:"ptr_size"`  // bytes
	PtrAlign int    `toml:"ptr_align"` // bytes
}

func X86_64LinuxGNU() Target {
	return Target{
		Triple:   "x86_64-linux-gnu",
		PtrSize:  8,
		PtrAlign: 8,
	}
}

func AArch64LinuxGNU() Target {
	return Target{
		Triple:   "aarch64-linux-gnu",
		PtrSize:  8,
		PtrAlign: 8,
	}
}

// LoadTarget reads a target description from a TOML file:
//
//	triple = "x86_64-linux-gnu"
//	ptr_size = 8
//	ptr_align = 8
//
// A missing ptr_align defaults to ptr_size.
func LoadTarget(path string) (Target, error) {
	var t Target
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return Target{}, fmt.Errorf("load target %s: %w", path, err)
	}
	if t.PtrAlign == 0 {
		t.PtrAlign = t.PtrSize
	}
	if err := t.validate(); err != nil {
		return Target{}, err
	}
	return t, nil
}

func (t Target) validate() error {
	if t.Triple == "" {
		return &Error{Kind: ErrBadTarget, Why: "empty triple"}
	}
	if t.PtrSize != 4 && t.PtrSize != 8 {
		return &Error{Kind: ErrBadTarget, Why: fmt.Sprintf("unsupported pointer size %d", t.PtrSize)}
	}
	if t.PtrAlign <= 0 || t.PtrAlign > t.PtrSize {
		return &Error{Kind: ErrBadTarget, Why: fmt.Sprintf("unsupported pointer alignment %d", t.PtrAlign)}
	}
	return nil
}
