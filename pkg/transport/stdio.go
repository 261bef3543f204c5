package transport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

const headerContentLength = "Content-Length:"

// Stdio frames payloads over a reader/writer pair. One frame is a block of
// CRLF-terminated header lines, a blank line, and exactly Content-Length
// bytes of UTF-8 payload.
type Stdio struct {
	reader *bufio.Reader
	writer *bufio.Writer
	in     io.Reader
	out    io.Writer
}

// NewStdio frames payloads over the given stream pair. The pair is not
// closed until Close is called.
func NewStdio(in io.Reader, out io.Writer) *Stdio {
	return &Stdio{
		reader: bufio.NewReader(in),
		writer: bufio.NewWriter(out),
		in:     in,
		out:    out,
	}
}

// Read returns the next payload. Malformed frames surface as *FrameError and
// leave the reader open; a peer that closes the stream between frames yields
// io.EOF.
func (t *Stdio) Read() (string, error) {
	contentLength := -1
	sawHeader := false

	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				if line == "" && !sawHeader {
					return "", io.EOF
				}
				return "", &FrameError{Err: fmt.Errorf("stream ended inside frame headers: %w", io.ErrUnexpectedEOF)}
			}
			return "", fmt.Errorf("error reading frame header: %w", err)
		}
		if line == "\r\n" {
			break
		}
		sawHeader = true

		trimmed := strings.TrimSpace(line)
		value, ok := strings.CutPrefix(trimmed, headerContentLength)
		if !ok {
			continue
		}
		length, convErr := strconv.Atoi(strings.TrimSpace(value))
		if convErr != nil || length < 0 {
			return "", &FrameError{Err: fmt.Errorf("%w: %q", ErrInvalidContentLength, strings.TrimSpace(value))}
		}
		contentLength = length
	}

	if contentLength < 0 {
		return "", &FrameError{Err: ErrMissingContentLength}
	}

	payload := make([]byte, contentLength)
	if _, err := io.ReadFull(t.reader, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return "", &FrameError{Err: fmt.Errorf("stream ended inside frame payload: %w", io.ErrUnexpectedEOF)}
		}
		return "", fmt.Errorf("error reading frame payload: %w", err)
	}
	if !utf8.Valid(payload) {
		return "", &FrameError{Err: ErrInvalidPayload}
	}

	// Peers following the older framing terminate each payload with CRLF;
	// ours does not. Consume one if present so both interoperate.
	if next, err := t.reader.Peek(2); err == nil && next[0] == '\r' && next[1] == '\n' {
		_, _ = t.reader.Discard(2)
	}

	return string(payload), nil
}

// Write frames payload with a Content-Length header counting UTF-8 bytes.
// No trailer follows the payload.
func (t *Stdio) Write(payload string) error {
	header := fmt.Sprintf("%s %d\r\n\r\n", headerContentLength, len(payload))
	if _, err := t.writer.WriteString(header); err != nil {
		return fmt.Errorf("error writing frame header: %w", err)
	}
	if _, err := t.writer.WriteString(payload); err != nil {
		return fmt.Errorf("error writing frame payload: %w", err)
	}
	if err := t.writer.Flush(); err != nil {
		return fmt.Errorf("error flushing frame: %w", err)
	}
	return nil
}

// Close closes whichever ends of the stream pair support closing.
func (t *Stdio) Close() error {
	var firstErr error
	if closer, ok := t.out.(io.Closer); ok {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if closer, ok := t.in.(io.Closer); ok {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
