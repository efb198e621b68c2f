package compile

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// enough to recognize archive signature and markup start
const sniffLen = 512

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return buf[:n], nil
}

// isArchiveFile reports whether path is zip archive, both extension and
// content have to agree.
func isArchiveFile(path string) (bool, error) {
	head, err := readHead(path)
	if err != nil {
		return false, err
	}
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	return filetype.Is(head, "zip"), nil
}

// looksLikeHTML checks that data starts with markup: optional byte order
// mark and whitespace followed by a tag, comment or doctype.
func looksLikeHTML(data []byte) bool {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	data = bytes.TrimLeft(data, " \t\r\n\f")
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		// binary formats known to filetype are never markup
		return false
	}
	return len(data) > 0 && data[0] == '<'
}

// isHTMLFile reports whether file at path could be compiled.
func isHTMLFile(path string) (bool, error) {
	head, err := readHead(path)
	if err != nil {
		return false, err
	}
	return looksLikeHTML(head), nil
}
