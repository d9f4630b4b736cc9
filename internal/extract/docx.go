package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDOCX pulls the visible text out of a DOCX archive. A DOCX
// file is a zip whose word/document.xml holds runs of text inside
// w:t elements, grouped into w:p paragraphs.
func extractDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: invalid DOCX archive: %v", ErrUnsupportedType, err)
	}

	var document *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return "", fmt.Errorf("%w: DOCX missing word/document.xml", ErrUnsupportedType)
	}

	rc, err := document.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX document: %w", err)
	}
	defer func() { _ = rc.Close() }()

	return docxText(rc)
}

func docxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		sb     strings.Builder
		inText bool
	)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse DOCX document: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteString("\n")
			case "tab":
				sb.WriteString("\t")
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
