package installer

import (
	"os"
	"path/filepath"
	"strings"
)

// DeclaredKind is the caller's (advisory) guess at what the target path is.
type DeclaredKind string

const (
	DeclaredUnknown DeclaredKind = ""
	DeclaredFile    DeclaredKind = "file"
	DeclaredFolder  DeclaredKind = "folder"
)

// Request is one immutable install request as handed over by the agent/API
// layer.
type Request struct {
	TargetPath  string       `json:"target_path"`
	Declared    DeclaredKind `json:"declared_kind,omitempty"`
	Bottle      string       `json:"bottle,omitempty"`
	DisplayName string       `json:"display_name,omitempty"`
}

// Kind is the classification derived from the live filesystem.
type Kind string

const (
	KindExecutable Kind = "executable"
	KindDiskImage  Kind = "disk-image"
	KindFolder     Kind = "folder"
	KindInvalid    Kind = "invalid"
)

// Classification is recomputed per request and never persisted.
type Classification struct {
	Kind   Kind
	Reason string
}

var installerExtensions = map[string]Kind{
	".exe": KindExecutable,
	".msi": KindExecutable,
	".iso": KindDiskImage,
}

// Classify derives the target kind from observable filesystem state. The
// request's declared kind is advisory only: a path that is a directory is a
// folder install no matter what the caller guessed, and vice versa, so a
// misclassified natural-language hint can never drive the wrong code path.
func Classify(req Request) Classification {
	info, err := os.Stat(req.TargetPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Classification{Kind: KindInvalid, Reason: "path not found"}
		}
		return Classification{Kind: KindInvalid, Reason: "path not readable: " + err.Error()}
	}

	if info.IsDir() {
		return Classification{Kind: KindFolder, Reason: "target is a directory"}
	}

	ext := strings.ToLower(filepath.Ext(req.TargetPath))
	if kind, ok := installerExtensions[ext]; ok {
		return Classification{Kind: kind, Reason: "extension " + ext}
	}
	return Classification{Kind: KindInvalid, Reason: "unrecognized file type"}
}

// BottleName returns the effective bottle name for a request, deriving one
// from the target's base name when the caller left it empty.
func (r Request) BottleName() string {
	if name := strings.TrimSpace(r.Bottle); name != "" {
		return name
	}
	return sanitizeName(baseName(r.TargetPath))
}

// Display returns the effective display name for the installed shortcut.
func (r Request) Display() string {
	if name := strings.TrimSpace(r.DisplayName); name != "" {
		return name
	}
	return baseName(r.TargetPath)
}

func baseName(path string) string {
	base := filepath.Base(filepath.Clean(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "bottle"
	}
	return b.String()
}
