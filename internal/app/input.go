package app

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"shopping-consolidator/internal/shopping"
)

// Input formats accepted by ReadList.
const (
	FormatAuto = "auto"
	FormatJSON = "json"
	FormatText = "text"
	FormatHTML = "html"
)

// ReadListFile reads a list from path, or from stdin when path is "-".
func ReadListFile(path, format string) (shopping.ShoppingList, error) {
	if path == "-" {
		return ReadList(os.Stdin, format)
	}

	f, err := os.Open(path)
	if err != nil {
		return shopping.ShoppingList{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if format == "" || format == FormatAuto {
		format = formatFromExt(path)
	}
	return ReadList(f, format)
}

// ReadList decodes a list in the given format. FormatAuto sniffs the content.
func ReadList(r io.Reader, format string) (shopping.ShoppingList, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return shopping.ShoppingList{}, fmt.Errorf("failed to read shopping list: %w", err)
	}

	if format == "" || format == FormatAuto {
		format = sniffFormat(raw)
	}

	switch format {
	case FormatJSON:
		return shopping.DecodeJSON(bytes.NewReader(raw))
	case FormatText:
		return shopping.ParseText(bytes.NewReader(raw))
	case FormatHTML:
		return shopping.ParseHTML(bytes.NewReader(raw))
	}
	return shopping.ShoppingList{}, fmt.Errorf("unknown input format %q", format)
}

func formatFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".html", ".htm":
		return FormatHTML
	case ".txt", ".md":
		return FormatText
	}
	return FormatAuto
}

func sniffFormat(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case bytes.HasPrefix(trimmed, []byte("{")):
		return FormatJSON
	case bytes.HasPrefix(trimmed, []byte("<")):
		return FormatHTML
	}
	return FormatText
}
