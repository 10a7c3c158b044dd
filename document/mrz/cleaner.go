package mrz

import (
	"log/slog"
	"regexp"
	"strings"
)

const (
	td3LineLength = 44
	td3Length     = 2*td3LineLength + 1
	td1Length     = 3*30 + 2
)

var (
	leadingNoise    = regexp.MustCompile(`^[^PIACV]*`)
	whitespace      = regexp.MustCompile(`[ \t\r]+`)
	newlineRuns     = regexp.MustCompile(`\n+`)
	passportMisread = regexp.MustCompile(`^P[KC]`)
	illegalChars    = regexp.MustCompile(`[^A-Z0-9<\n]`)
)

// OCR misreads of the filler character.
var fillerGlyphs = strings.NewReplacer(
	"«", "<",
	"<c<", "<<<",
	"<e<", "<<<",
	"<E<", "<<<",
	"<K<", "<<<",
	"<S<", "<<<",
	"<C<", "<<<",
	"<¢<", "<<<",
	"<(<", "<<<",
	"<{<", "<<<",
	"<[<", "<<<",
)

// replaceFillerGlyphs applies the glyph table until the text stops changing,
// so that overlapping sequences like "<K<K<" are fully rewritten.
func replaceFillerGlyphs(s string) string {
	for {
		next := fillerGlyphs.Replace(s)
		if next == s {
			return s
		}
		s = next
	}
}

// Normalize cleans raw OCR text into the MRZ alphabet [A-Z0-9<\n]. Only
// blank input is an error; the result may be empty or still have the wrong
// number of lines.
func Normalize(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", newParseError(ErrEmptyMrz, raw, nil)
	}

	result := leadingNoise.ReplaceAllString(raw, "")
	result = whitespace.ReplaceAllString(result, "")
	// each rewrite can expose a sequence another one matches
	for {
		next := replaceFillerGlyphs(result)
		next = passportMisread.ReplaceAllString(next, "P<")
		next = illegalChars.ReplaceAllString(next, "")
		next = newlineRuns.ReplaceAllString(next, "\n")
		if next == result {
			break
		}
		result = next
	}
	return strings.TrimSpace(result), nil
}

// reconstructTD3 repairs a passport MRZ whose two lines were split into
// several OCR lines, or joined into one.
func reconstructTD3(text string) string {
	if !strings.HasPrefix(text, "P<") {
		return text
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 2 {
		return text
	}

	all := strings.Join(lines, "")
	if len(all) < 2*td3LineLength {
		return text
	}
	slog.Debug("Reconstructing TD3 lines", "ocr_lines", len(lines), "length", len(all))
	return all[:td3LineLength] + "\n" + all[td3LineLength:2*td3LineLength]
}

// Reconstruct detects the format of normalized MRZ text and returns it cut
// to the size its format allows.
func Reconstruct(cleaned string) (Format, string, error) {
	result := reconstructTD3(cleaned)

	if result == "" || !strings.Contains(result, string(Filler)) || !strings.ContainsAny(result[:1], "PIACV") {
		return "", "", newParseError(ErrUnrecognizedMrzShape, result, nil)
	}

	switch strings.Count(result, "\n") {
	case 1:
		if len(result) > td3Length {
			result = result[:td3Length]
		}
		return FormatPassport, result, nil
	case 2:
		if len(result) > td1Length {
			result = result[:td1Length]
		}
		return FormatTD1, result, nil
	}
	return "", "", newParseError(ErrInvalidLineCount, result, nil)
}

// Clean turns raw OCR text into canonical MRZ text ready for field
// extraction.
func Clean(raw string) (string, error) {
	_, text, err := clean(raw)
	return text, err
}

func clean(raw string) (Format, string, error) {
	normalized, err := Normalize(raw)
	if err != nil {
		return "", "", err
	}
	return Reconstruct(normalized)
}
