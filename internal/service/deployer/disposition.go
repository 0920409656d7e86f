package deployer

import (
	"path"
	"strings"
)

const (
	attachmentDirective = "attachment"
	filenameParameter   = "filename="
)

// ParseAttachmentFilename extracts the file name from a content-disposition
// header value. The header must start with "attachment"; directive and
// parameter names match case-insensitively while the file name keeps its case.
// Quotes are stripped and any directory part is dropped.
func ParseAttachmentFilename(header string) (string, bool) {
	header = strings.TrimSpace(header)

	if !hasASCIIPrefixFold(header, attachmentDirective) {
		return "", false
	}

	if rest := header[len(attachmentDirective):]; rest != "" && rest[0] != ';' && rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}

	idx := indexASCIIFold(header, filenameParameter)
	if idx < 0 {
		return "", false
	}

	value := header[idx+len(filenameParameter):]
	value, _, _ = strings.Cut(value, ";")
	value = strings.TrimSpace(strings.ReplaceAll(value, `"`, ""))
	value = strings.ReplaceAll(value, `\`, "/")

	if value == "" {
		return "", false
	}

	name := path.Base(value)
	switch name {
	case ".", "..", "/":
		return "", false
	}

	return name, true
}

// indexASCIIFold is strings.Index with ASCII-only case folding. Offsets stay
// valid for s because no byte changes length, whatever the header encoding.
func indexASCIIFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if hasASCIIPrefixFold(s[i:], substr) {
			return i
		}
	}

	return -1
}

// hasASCIIPrefixFold reports whether s starts with prefix, ignoring ASCII case.
func hasASCIIPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}

	for i := 0; i < len(prefix); i++ {
		if lowerASCII(s[i]) != lowerASCII(prefix[i]) {
			return false
		}
	}

	return true
}

func lowerASCII(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + ('a' - 'A')
	}

	return b
}
