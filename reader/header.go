package reader

import (
	"fmt"

	"github.com/tsawler/ifcnotes/core"
)

// Header holds the HEADER section of a STEP physical file
type Header struct {
	Description         []string
	ImplementationLevel string
	Name                string
	TimeStamp           string
	Author              []string
	Organization        []string
	PreprocessorVersion string
	OriginatingSystem   string
	Authorization       string
	Schemas             []string
}

// apply copies one header entity into the header
func (h *Header) apply(he *core.HeaderEntity) error {
	switch he.Name {
	case "FILE_DESCRIPTION":
		h.Description = stringList(he.Args.Get(0))
		h.ImplementationLevel = stringValue(he.Args.Get(1))
	case "FILE_NAME":
		h.Name = stringValue(he.Args.Get(0))
		h.TimeStamp = stringValue(he.Args.Get(1))
		h.Author = stringList(he.Args.Get(2))
		h.Organization = stringList(he.Args.Get(3))
		h.PreprocessorVersion = stringValue(he.Args.Get(4))
		h.OriginatingSystem = stringValue(he.Args.Get(5))
		h.Authorization = stringValue(he.Args.Get(6))
	case "FILE_SCHEMA":
		h.Schemas = stringList(he.Args.Get(0))
		if len(h.Schemas) == 0 {
			return fmt.Errorf("FILE_SCHEMA names no schema")
		}
	}
	// Other header entities (FILE_POPULATION, SECTION_LANGUAGE, ...) are ignored
	return nil
}

func stringValue(obj core.Object) string {
	if s, ok := obj.(core.String); ok {
		return string(s)
	}
	return ""
}

func stringList(obj core.Object) []string {
	list, ok := obj.(core.List)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(core.String); ok {
			out = append(out, string(s))
		}
	}
	return out
}
