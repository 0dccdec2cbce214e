package frontend

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"net/textproto"
	"strings"
)

// maxMultipartDepth bounds recursion into nested multipart bodies
const maxMultipartDepth = 5

var wordDecoder = new(mime.WordDecoder)

// ParseEmail reads a raw RFC 5322 message and returns its decoded subject
// and plain-text content
func ParseEmail(raw []byte) (subject string, text string, err error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse email message: %w", err)
	}

	subject = decodeEncodedHeader(msg.Header.Get("Subject"))
	text, err = extractText(textproto.MIMEHeader(msg.Header), msg.Body, 0)
	if err != nil {
		return subject, "", err
	}
	return subject, strings.TrimSpace(text), nil
}

// decodeEncodedHeader decodes RFC 2047 encoded words, returning the input
// unchanged when it cannot be decoded
func decodeEncodedHeader(value string) string {
	decoded, err := wordDecoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

// extractText returns the text/plain content of a body. Multipart bodies are
// walked recursively; other parts (attachments, html) are skipped.
func extractText(header textproto.MIMEHeader, body io.Reader, depth int) (string, error) {
	contentType := header.Get("Content-Type")
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || contentType == "" {
		// Untyped or unparsable bodies are treated as plain text
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" || depth >= maxMultipartDepth {
			return "", nil
		}
		return extractMultipart(multipart.NewReader(body, boundary), depth)
	}

	if mediaType != "text/plain" {
		return "", nil
	}

	data, err := io.ReadAll(decodeTransfer(header.Get("Content-Transfer-Encoding"), body))
	if err != nil {
		return "", fmt.Errorf("failed to read message body: %w", err)
	}
	return string(data), nil
}

func extractMultipart(mr *multipart.Reader, depth int) (string, error) {
	var textContent strings.Builder
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Return what we have so far
			if textContent.Len() > 0 {
				return textContent.String(), nil
			}
			return "", fmt.Errorf("failed to read multipart body: %w", err)
		}

		// multipart.Reader already decodes quoted-printable parts
		text, err := extractText(part.Header, part, depth+1)
		if err != nil {
			continue
		}
		if text != "" {
			textContent.WriteString(text)
			textContent.WriteString("\n")
		}
	}
	return textContent.String(), nil
}

func decodeTransfer(encoding string, body io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, body)
	case "quoted-printable":
		return quotedprintable.NewReader(body)
	default:
		return body
	}
}
