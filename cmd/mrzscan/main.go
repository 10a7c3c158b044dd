// Command mrzscan replays OCR frames through one scanning session and prints
// one JSON result per frame.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go-mrz-scanner/document/mrz"
	"go-mrz-scanner/logging"
	"go-mrz-scanner/ocr"

	"golang.org/x/text/encoding/charmap"
)

const frameSeparator = "---"

type frame struct {
	Name string
	Text string
}

type frameResult struct {
	Frame  string      `json:"frame"`
	State  mrz.State   `json:"state"`
	Error  string      `json:"error,omitempty"`
	Record *mrz.Record `json:"record,omitempty"`
}

func main() {
	framesPath := flag.String("frames", "", "Directory of frame files, or one file with frames separated by '---' lines")
	imagePath := flag.String("image", "", "Image of an MRZ to recognize with tesseract")
	languages := flag.String("lang", "", "Comma separated tesseract languages")
	latin1 := flag.Bool("latin1", false, "Decode frame files as ISO-8859-1")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	logging.InitLogger(*logLevel)

	var frames []frame
	var err error
	switch {
	case *framesPath != "":
		frames, err = readFrames(*framesPath, *latin1)
	case *imagePath != "":
		var langs []string
		if *languages != "" {
			langs = strings.Split(*languages, ",")
		}
		frames, err = recognizeImage(context.Background(), ocr.NewTesseractRecognizer(langs...), *imagePath)
	default:
		err = fmt.Errorf("please provide -frames or -image")
	}
	if err != nil {
		slog.Error("failed to load frames", "error", err)
		os.Exit(2)
	}

	accepted, err := scanFrames(os.Stdout, frames)
	if err != nil {
		slog.Error("failed to write results", "error", err)
		os.Exit(2)
	}
	if !accepted {
		os.Exit(1)
	}
}

// scanFrames feeds the frames to a new session until one is accepted.
func scanFrames(out io.Writer, frames []frame) (bool, error) {
	session := mrz.NewSession()
	encoder := json.NewEncoder(out)

	for _, f := range frames {
		record, err := session.Scan(f.Text)
		result := frameResult{
			Frame:  f.Name,
			State:  session.State(),
			Error:  mrz.KindOf(err),
			Record: record,
		}
		if err := encoder.Encode(result); err != nil {
			return false, err
		}
		if session.State() == mrz.StateAccepted {
			return true, nil
		}
	}
	return false, nil
}

func readFrames(path string, latin1 bool) ([]frame, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		text, err := readText(path, latin1)
		if err != nil {
			return nil, err
		}
		return splitFrames(filepath.Base(path), text), nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var frames []frame
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		text, err := readText(filepath.Join(path, entry.Name()), latin1)
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame{Name: entry.Name(), Text: text})
	}
	return frames, nil
}

func readText(path string, latin1 bool) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if latin1 {
		data, err = charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("failed to decode %s as ISO-8859-1: %w", path, err)
		}
	}
	return string(data), nil
}

// splitFrames splits a file on lines holding only the frame separator.
// Blank frames are dropped.
func splitFrames(name, text string) []frame {
	var frames []frame
	var current []string
	flush := func() {
		joined := strings.Join(current, "\n")
		current = nil
		if strings.TrimSpace(joined) == "" {
			return
		}
		frames = append(frames, frame{
			Name: fmt.Sprintf("%s#%d", name, len(frames)+1),
			Text: joined,
		})
	}

	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == frameSeparator {
			flush()
			continue
		}
		current = append(current, line)
	}
	flush()
	return frames
}

func recognizeImage(ctx context.Context, recognizer ocr.Recognizer, path string) ([]frame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text, err := recognizer.Recognize(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to recognize %s: %w", path, err)
	}
	return []frame{{Name: filepath.Base(path), Text: text}}, nil
}
