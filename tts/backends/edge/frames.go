package edge

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

// The wire framing: text frames are "Header:value" lines separated by CRLF,
// a blank line, then the body. Binary frames start with a two-byte
// big-endian header length, the header text, then the audio payload.

// headerDelimiter separates the header block from the body in text frames.
const headerDelimiter = "\r\n\r\n"

// parseHeaders splits "Name:value" lines into a map. Values keep any colons
// past the first.
func parseHeaders(block string) map[string]string {
	headers := make(map[string]string)
	for _, line := range strings.Split(block, "\r\n") {
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		headers[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return headers
}

// parseTextFrame splits an incoming text frame into headers and body.
func parseTextFrame(data []byte) (map[string]string, string) {
	text := string(data)
	block, body, ok := strings.Cut(text, headerDelimiter)
	if !ok {
		return parseHeaders(text), ""
	}
	return parseHeaders(block), body
}

// parseBinaryFrame splits an incoming binary frame into headers and audio
// payload. The first two bytes carry the header length, big-endian.
func parseBinaryFrame(data []byte) (map[string]string, []byte, error) {
	if len(data) < 2 {
		return nil, nil, fmt.Errorf("binary frame too short: %d bytes", len(data))
	}
	headerLen := int(binary.BigEndian.Uint16(data[:2]))
	if 2+headerLen > len(data) {
		return nil, nil, fmt.Errorf("binary frame header length %d exceeds frame size %d", headerLen, len(data))
	}
	headers := parseHeaders(string(data[2 : 2+headerLen]))
	return headers, data[2+headerLen:], nil
}

// configFrame builds the speech.config frame negotiating the output format.
// It must precede the first utterance on a connection and be resent whenever
// the format changes.
func configFrame(outputFormat string, ts time.Time) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "X-Timestamp:%s\r\n", timestamp(ts))
	b.WriteString("Content-Type:application/json; charset=utf-8\r\n")
	fmt.Fprintf(&b, "Path:%s\r\n\r\n", pathSpeechConfig)
	fmt.Fprintf(&b, `{"context":{"synthesis":{"audio":{"metadataoptions":`+
		`{"sentenceBoundaryEnabled":"false","wordBoundaryEnabled":"true"},`+
		`"outputFormat":"%s"}}}}`, outputFormat)
	return b.Bytes()
}

// ssmlFrame builds the per-utterance frame. The request id correlates the
// turn.start/turn.end/audio frames of the response stream.
func ssmlFrame(requestID, ssml string, ts time.Time) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "X-RequestId:%s\r\n", requestID)
	b.WriteString("Content-Type:application/ssml+xml\r\n")
	fmt.Fprintf(&b, "X-Timestamp:%sZ\r\n", timestamp(ts))
	fmt.Fprintf(&b, "Path:%s\r\n\r\n", pathSSML)
	b.WriteString(ssml)
	return b.Bytes()
}

// timestamp renders the JavaScript-style timestamp the service expects.
func timestamp(t time.Time) string {
	return t.UTC().Format("Mon Jan 02 2006 15:04:05") + " GMT+0000 (Coordinated Universal Time)"
}
