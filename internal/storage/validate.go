package storage

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Upload file kinds
const (
	KindJS  = ".js"
	KindLua = ".lua"
)

// ValidateEffectFile checks an uploaded file and returns its display
// name and kind. JavaScript files must declare a class with a render
// method; Lua scripts must define a render function.
func ValidateEffectFile(filename string, code []byte) (name, kind string, err error) {
	kind = strings.ToLower(filepath.Ext(filename))
	switch kind {
	case KindJS:
		if !bytes.Contains(code, []byte("class")) || !bytes.Contains(code, []byte("render")) {
			return "", "", fmt.Errorf("%w: must contain a class with render method", ErrInvalidEffectFile)
		}
	case KindLua:
		if !bytes.Contains(code, []byte("function render")) {
			return "", "", fmt.Errorf("%w: must define function render", ErrInvalidEffectFile)
		}
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnsupportedType, kind)
	}
	if !utf8.Valid(code) {
		return "", "", fmt.Errorf("%w: not UTF-8 text", ErrInvalidEffectFile)
	}
	return DisplayName(filename), kind, nil
}

// DisplayName turns "organic-life_v2.js" into "organic life v2".
func DisplayName(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.NewReplacer("-", " ", "_", " ").Replace(base)
}
