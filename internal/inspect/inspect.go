package inspect

import (
	"bytes"
	"errors"
	"fmt"
	"os"
)

// ErrNotLoadable marks a file that is readable but is not a linker-loadable
// object of the inspector's format. Callers skip such files silently.
var ErrNotLoadable = errors.New("not a loadable object")

// Kind classifies a loadable object.
type Kind int

const (
	// KindExecutable is a program the loader can start directly.
	KindExecutable Kind = iota
	// KindSharedLibrary is an object loaded into another program's image.
	KindSharedLibrary
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindExecutable:
		return "executable"
	case KindSharedLibrary:
		return "shared library"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Object is the result of inspecting a loadable file.
type Object struct {
	Path   string
	Format string
	Kind   Kind
	// Needed lists the direct dependency names recorded in the object's
	// dynamic linking metadata, in declaration order. These are sonames, not
	// resolved paths; resolution is the closure collector's concern.
	Needed []string
}

// Inspector examines a file and reports whether it is a loadable object.
// Implementations return ErrNotLoadable for files of the wrong format and a
// real error only when the file cannot be read or its header is corrupt.
type Inspector interface {
	Inspect(path string) (*Object, error)
}

// elfMagic is the four-byte ELF identification prefix.
var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// machOMagics covers 32/64-bit Mach-O files in both byte orders, plus
// universal (fat) binaries.
var machOMagics = [][]byte{
	{0xfe, 0xed, 0xfa, 0xce},
	{0xce, 0xfa, 0xed, 0xfe},
	{0xfe, 0xed, 0xfa, 0xcf},
	{0xcf, 0xfa, 0xed, 0xfe},
	{0xca, 0xfe, 0xba, 0xbe},
}

// Sniffer dispatches to the format-specific inspector selected by the
// file's leading magic bytes. Files with an unknown magic are not loadable.
type Sniffer struct {
	elf   Inspector
	macho Inspector
}

// NewSniffer creates a dispatcher over the built-in format inspectors.
func NewSniffer() *Sniffer {
	return &Sniffer{elf: ELFInspector{}, macho: MachOInspector{}}
}

// Inspect implements Inspector.
func (s *Sniffer) Inspect(path string) (*Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %q for inspection: %w", path, err)
	}

	magic := make([]byte, 4)
	n, err := f.Read(magic)
	f.Close()
	if err != nil || n < 4 {
		// Too short to carry any object header.
		return nil, ErrNotLoadable
	}

	if bytes.Equal(magic, elfMagic) {
		return s.elf.Inspect(path)
	}
	for _, m := range machOMagics {
		if bytes.Equal(magic, m) {
			return s.macho.Inspect(path)
		}
	}

	return nil, ErrNotLoadable
}
