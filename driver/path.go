package driver

import (
	"path/filepath"
	"strings"
)

// DefaultExtension is appended to derived output paths.
const DefaultExtension = ".jsc"

// OutputPath derives the byte-code path for input by replacing the extension
// of its final path element with ext. Names without an extension, and dot
// files such as ".hidden", keep their whole name and get ext appended.
// Dots in directory names are never treated as extensions.
func OutputPath(input, ext string) string {
	return TrimExt(input) + ext
}

// TrimExt removes the text from the last '.' of the final path element.
func TrimExt(path string) string {
	dir := strings.LastIndexAny(path, separators)
	name := path[dir+1:]
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return path
	}
	return path[:dir+1+dot]
}

var separators = func() string {
	if filepath.Separator == '/' {
		return "/"
	}
	return "/" + string(filepath.Separator)
}()
