package inspect

import (
	"debug/elf"
	"fmt"
)

// ELFInspector inspects ELF objects, the native format on Linux hosts.
type ELFInspector struct{}

// Inspect implements Inspector. Relocatable objects and core dumps are not
// loadable; a PIE executable carries a program interpreter and is classified
// as an executable even though its ELF type is ET_DYN.
func (ELFInspector) Inspect(path string) (*Object, error) {
	f, err := elf.Open(path)
	if err != nil {
		if _, ok := err.(*elf.FormatError); ok {
			return nil, ErrNotLoadable
		}
		return nil, fmt.Errorf("failed to read ELF header of %q: %w", path, err)
	}
	defer f.Close()

	var kind Kind
	switch f.Type {
	case elf.ET_EXEC:
		kind = KindExecutable
	case elf.ET_DYN:
		kind = KindSharedLibrary
		if hasInterp(f) {
			kind = KindExecutable
		}
	default:
		return nil, ErrNotLoadable
	}

	needed, err := f.ImportedLibraries()
	if err != nil {
		// A loadable object with unreadable dynamic metadata is corrupt
		// enough to report rather than skip.
		return nil, fmt.Errorf("failed to read dynamic section of %q: %w", path, err)
	}

	return &Object{Path: path, Format: "elf", Kind: kind, Needed: needed}, nil
}

func hasInterp(f *elf.File) bool {
	for _, p := range f.Progs {
		if p.Type == elf.PT_INTERP {
			return true
		}
	}
	return false
}
