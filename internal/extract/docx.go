package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBodyPart = "word/document.xml"

// docxMarkupRatio bounds how much WordprocessingML may surround the text:
// document.xml is allowed this many times the text limit
const docxMarkupRatio = 8

// DOCXText extracts the raw paragraph text of a Word document. maxText
// caps the extracted text and, through docxMarkupRatio, the decompressed
// document.xml; maxText <= 0 disables both caps.
func DOCXText(data []byte, maxText int64) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == docxBodyPart {
			body = f
			break
		}
	}
	if body == nil {
		return "", fmt.Errorf("open docx: missing %s", docxBodyPart)
	}

	maxXML := maxText * docxMarkupRatio
	if maxText > 0 && body.UncompressedSize64 > uint64(maxXML) {
		return "", ErrTooLarge
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", docxBodyPart, err)
	}
	defer func() { _ = rc.Close() }()

	var r io.Reader = rc
	if maxText > 0 {
		r = &capReader{r: rc, remaining: maxXML}
	}

	return wordprocessingText(r, maxText)
}

// capReader fails with ErrTooLarge once more than remaining bytes are read,
// so a size header that lies about the decompressed size cannot slip past
type capReader struct {
	r         io.Reader
	remaining int64
}

func (c *capReader) Read(p []byte) (int, error) {
	if c.remaining < 0 {
		return 0, ErrTooLarge
	}
	if int64(len(p)) > c.remaining+1 {
		p = p[:c.remaining+1]
	}
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	if c.remaining < 0 {
		return n, ErrTooLarge
	}
	return n, err
}

// wordprocessingText walks WordprocessingML tokens: <w:t> carries text,
// <w:tab/> and <w:br/> are whitespace, </w:p> ends a paragraph
func wordprocessingText(r io.Reader, maxText int64) (string, error) {
	dec := xml.NewDecoder(r)

	var out strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, ErrTooLarge) {
			return "", ErrTooLarge
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", docxBodyPart, err)
		}
		if maxText > 0 && int64(out.Len()) > maxText {
			return "", ErrTooLarge
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				out.WriteByte('\t')
			case "br", "cr":
				out.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				out.Write(t)
			}
		}
	}

	return strings.TrimRight(out.String(), "\n"), nil
}
