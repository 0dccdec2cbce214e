package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// truncationMarker tells the model the message was cut
const truncationMarker = "\n[... conteúdo truncado ...]"

// TextProcessor prepares user text for prompts and keyword matching
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextProcessor{logger: logger}
}

// TruncateText cuts text to at most maxSize bytes on a rune boundary and
// appends a marker. A non-positive maxSize disables the limit.
func (tp *TextProcessor) TruncateText(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	cut := maxSize
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}

	tp.logger.Debug("Message truncated for prompt",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", cut),
		zap.Int("max_size", maxSize))

	return text[:cut] + truncationMarker
}

// SanitizeUTF8 drops invalid UTF-8 byte sequences
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}
	clean := strings.ToValidUTF8(text, "")
	tp.logger.Debug("Invalid UTF-8 removed from message",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(clean)))
	return clean
}

// ProcessText sanitizes text and then bounds it to maxSize bytes
func (tp *TextProcessor) ProcessText(text string, maxSize int) string {
	return tp.TruncateText(tp.SanitizeUTF8(text), maxSize)
}

// Fold lowercases text with Portuguese casing rules, so "CARTÃO" matches "cartão".
// A Caser is stateful, hence one per call.
func (tp *TextProcessor) Fold(text string) string {
	return cases.Lower(language.BrazilianPortuguese).String(text)
}
