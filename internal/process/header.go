package process

import (
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"fmt"

	"github.com/EvilLord666/warden/internal/sentinel"
)

// Executable formats reported by InspectHeader.
const (
	FormatELF   = "elf"
	FormatPE    = "pe"
	FormatMachO = "macho"
)

// ErrUnknownFormat is returned when a file is not an executable image this
// package understands.
const ErrUnknownFormat = sentinel.Error("unknown executable format")

// Header summarizes the image header of an executable.
type Header struct {
	Format string
	Arch   string
	// GUI is set for PE images linked for the Windows GUI subsystem.
	GUI bool
}

var peMachines = map[uint16]string{
	pe.IMAGE_FILE_MACHINE_I386:  "386",
	pe.IMAGE_FILE_MACHINE_AMD64: "amd64",
	pe.IMAGE_FILE_MACHINE_ARM:   "arm",
	pe.IMAGE_FILE_MACHINE_ARMNT: "arm",
	pe.IMAGE_FILE_MACHINE_ARM64: "arm64",
}

// InspectHeader reads the image header of the executable at path.
func InspectHeader(path string) (Header, error) {
	if path == "" {
		return Header{}, fmt.Errorf("inspect header: %w", ErrUnknownFormat)
	}

	if f, err := elf.Open(path); err == nil {
		defer f.Close()
		return Header{Format: FormatELF, Arch: f.Machine.String()}, nil
	}

	if f, err := pe.Open(path); err == nil {
		defer f.Close()
		h := Header{Format: FormatPE, Arch: peMachines[f.Machine]}
		if h.Arch == "" {
			h.Arch = fmt.Sprintf("0x%x", f.Machine)
		}
		switch opt := f.OptionalHeader.(type) {
		case *pe.OptionalHeader32:
			h.GUI = opt.Subsystem == pe.IMAGE_SUBSYSTEM_WINDOWS_GUI
		case *pe.OptionalHeader64:
			h.GUI = opt.Subsystem == pe.IMAGE_SUBSYSTEM_WINDOWS_GUI
		}
		return h, nil
	}

	if f, err := macho.Open(path); err == nil {
		defer f.Close()
		return Header{Format: FormatMachO, Arch: f.Cpu.String()}, nil
	}
	if f, err := macho.OpenFat(path); err == nil {
		defer f.Close()
		h := Header{Format: FormatMachO, Arch: "universal"}
		return h, nil
	}

	return Header{}, fmt.Errorf("inspect header of %s: %w", path, ErrUnknownFormat)
}
