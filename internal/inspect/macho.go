package inspect

import (
	"debug/macho"
	"fmt"
)

// MachOInspector inspects Mach-O objects for macOS platform bundles.
type MachOInspector struct{}

// Inspect implements Inspector.
func (MachOInspector) Inspect(path string) (*Object, error) {
	f, err := macho.Open(path)
	if err != nil {
		// Universal binaries need the fat reader.
		if ff, fatErr := macho.OpenFat(path); fatErr == nil {
			if len(ff.Arches) == 0 {
				ff.Close()
				return nil, ErrNotLoadable
			}
			obj, err := inspectMachO(path, ff.Arches[0].File)
			ff.Close()
			return obj, err
		}
		if _, ok := err.(*macho.FormatError); ok {
			return nil, ErrNotLoadable
		}
		return nil, fmt.Errorf("failed to read Mach-O header of %q: %w", path, err)
	}
	defer f.Close()

	return inspectMachO(path, f)
}

func inspectMachO(path string, f *macho.File) (*Object, error) {
	var kind Kind
	switch f.Type {
	case macho.TypeExec:
		kind = KindExecutable
	case macho.TypeDylib:
		kind = KindSharedLibrary
	default:
		return nil, ErrNotLoadable
	}

	needed, err := f.ImportedLibraries()
	if err != nil {
		return nil, fmt.Errorf("failed to read load commands of %q: %w", path, err)
	}

	return &Object{Path: path, Format: "macho", Kind: kind, Needed: needed}, nil
}
