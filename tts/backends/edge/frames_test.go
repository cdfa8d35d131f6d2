package edge

import (
	"encoding/binary"
	"strings"
	"testing"
	"time"
)

func TestParseTextFrame(t *testing.T) {
	data := []byte("X-RequestId:abc123\r\nPath:turn.start\r\n\r\n{\"context\":{}}")
	headers, body := parseTextFrame(data)

	if headers["X-RequestId"] != "abc123" {
		t.Errorf("X-RequestId = %q", headers["X-RequestId"])
	}
	if headers["Path"] != "turn.start" {
		t.Errorf("Path = %q", headers["Path"])
	}
	if body != `{"context":{}}` {
		t.Errorf("body = %q", body)
	}
}

func TestParseTextFrameWithoutBody(t *testing.T) {
	headers, body := parseTextFrame([]byte("Path:turn.end\r\nX-RequestId:abc"))
	if headers["Path"] != "turn.end" {
		t.Errorf("Path = %q", headers["Path"])
	}
	if body != "" {
		t.Errorf("body = %q, want empty", body)
	}
}

func TestParseHeadersKeepsColonsInValues(t *testing.T) {
	headers := parseHeaders("Content-Type:audio/mpeg; rate:24000")
	if headers["Content-Type"] != "audio/mpeg; rate:24000" {
		t.Errorf("Content-Type = %q", headers["Content-Type"])
	}
}

func TestParseBinaryFrame(t *testing.T) {
	header := "X-RequestId:abc\r\nPath:audio"
	payload := []byte{0xFF, 0xF3, 0x01, 0x02}

	frame := make([]byte, 2+len(header)+len(payload))
	binary.BigEndian.PutUint16(frame[:2], uint16(len(header)))
	copy(frame[2:], header)
	copy(frame[2+len(header):], payload)

	headers, audio, err := parseBinaryFrame(frame)
	if err != nil {
		t.Fatalf("parseBinaryFrame() error: %v", err)
	}
	if headers["Path"] != "audio" {
		t.Errorf("Path = %q", headers["Path"])
	}
	if string(audio) != string(payload) {
		t.Errorf("payload = %v, want %v", audio, payload)
	}
}

func TestParseBinaryFrameMalformed(t *testing.T) {
	if _, _, err := parseBinaryFrame([]byte{0x01}); err == nil {
		t.Error("single-byte frame should fail")
	}

	// Declared header length exceeds the frame.
	frame := []byte{0xFF, 0xFF, 'x'}
	if _, _, err := parseBinaryFrame(frame); err == nil {
		t.Error("oversized header length should fail")
	}
}

func TestConfigFrame(t *testing.T) {
	frame := string(configFrame("audio-24khz-48kbitrate-mono-mp3", time.Unix(0, 0)))

	if !strings.Contains(frame, "Path:speech.config") {
		t.Errorf("config frame missing path:\n%s", frame)
	}
	if !strings.Contains(frame, `"outputFormat":"audio-24khz-48kbitrate-mono-mp3"`) {
		t.Errorf("config frame missing output format:\n%s", frame)
	}
	if !strings.Contains(frame, "\r\n\r\n") {
		t.Error("config frame missing header delimiter")
	}
	if !strings.Contains(frame, `"wordBoundaryEnabled":"true"`) {
		t.Errorf("config frame missing metadata options:\n%s", frame)
	}
}

func TestSSMLFrame(t *testing.T) {
	frame := string(ssmlFrame("req42", "<speak>hi</speak>", time.Unix(0, 0)))

	if !strings.Contains(frame, "X-RequestId:req42") {
		t.Errorf("ssml frame missing request id:\n%s", frame)
	}
	if !strings.Contains(frame, "Path:ssml") {
		t.Errorf("ssml frame missing path:\n%s", frame)
	}
	if !strings.HasSuffix(frame, "\r\n\r\n<speak>hi</speak>") {
		t.Errorf("ssml frame body misplaced:\n%s", frame)
	}
	if !strings.Contains(frame, "Content-Type:application/ssml+xml") {
		t.Errorf("ssml frame missing content type:\n%s", frame)
	}
}

func TestTimestampFormat(t *testing.T) {
	ts := timestamp(time.Date(2024, time.March, 5, 12, 30, 45, 0, time.UTC))
	want := "Tue Mar 05 2024 12:30:45 GMT+0000 (Coordinated Universal Time)"
	if ts != want {
		t.Errorf("timestamp = %q, want %q", ts, want)
	}
}

func TestNewRequestID(t *testing.T) {
	id := newRequestID()
	if len(id) != 32 {
		t.Errorf("request id length = %d, want 32", len(id))
	}
	if strings.Contains(id, "-") {
		t.Errorf("request id should not contain hyphens: %q", id)
	}
	if id == newRequestID() {
		t.Error("request ids should be unique")
	}
}
