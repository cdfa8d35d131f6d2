package edge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/feuyeux/hello-tts-go/tts"
)

// defaultIdleTimeout closes sessions the service would drop anyway.
const defaultIdleTimeout = 4 * time.Minute

// State is the session lifecycle position.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateReady
	StateAwaitingTurnEnd
	StateClosing
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateAwaitingTurnEnd:
		return "awaiting-turn-end"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// wire is the subset of *websocket.Conn the session uses, abstracted so
// tests can script the remote side.
type wire interface {
	ReadMessage() (messageType int, data []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	Close() error
}

// dialFunc opens a connection to the synthesis endpoint.
type dialFunc func(ctx context.Context, urlStr string, header http.Header) (wire, error)

// defaultDial connects with gorilla/websocket.
func defaultDial(timeout time.Duration) dialFunc {
	return func(ctx context.Context, urlStr string, header http.Header) (wire, error) {
		dialer := websocket.Dialer{HandshakeTimeout: timeout}
		conn, _, err := dialer.DialContext(ctx, urlStr, header) //nolint:bodyclose
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// Session owns one persistent connection to the synthesis endpoint and
// speaks the turn-based protocol: a speech.config frame negotiating the
// output format, one SSML frame per utterance, and a response stream of
// turn.start, audio.metadata, binary audio, and turn.end frames correlated
// by request id. The connection is reused across turns; turns are
// serialized, so concurrent callers queue FIFO behind one turn in flight.
type Session struct {
	tokens      *TokenProvider
	dial        dialFunc
	timeout     time.Duration
	idleTimeout time.Duration
	now         func() time.Time

	mu         sync.Mutex // serializes turns; guards everything below
	conn       wire
	state      State
	negotiated string // output format of the last sent speech.config
	lastUsed   time.Time
}

// NewSession creates a session. The connection is opened lazily on the
// first Synthesize call.
func NewSession(tokens *TokenProvider, timeout time.Duration) *Session {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Session{
		tokens:      tokens,
		dial:        defaultDial(timeout),
		timeout:     timeout,
		idleTimeout: defaultIdleTimeout,
		now:         time.Now,
		state:       StateDisconnected,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Synthesize performs one turn: ensure a live connection, renegotiate the
// config frame if the output format changed, send the utterance, and
// reassemble the audio frames until turn.end. Any mid-turn failure tears
// the session down rather than reusing it in an unknown state; the next
// call re-establishes the connection.
func (s *Session) Synthesize(ctx context.Context, req tts.SpeechRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	format, ok := outputFormats[req.Format]
	if !ok {
		return nil, tts.NewError(tts.KindValidation, "synthesize",
			fmt.Errorf("%w: %q", tts.ErrUnknownFormat, req.Format)).WithVoice(req.Voice)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// An idle connection may already be half-closed by the remote; drop it
	// proactively instead of failing the first frame.
	if s.conn != nil && s.idleTimeout > 0 && s.now().Sub(s.lastUsed) > s.idleTimeout {
		log.Debug("Dropping idle session", "idle", s.now().Sub(s.lastUsed))
		s.teardown()
	}

	if s.conn == nil {
		if err := s.connect(ctx); err != nil {
			return nil, err
		}
	}

	if s.negotiated != format {
		frame := configFrame(format, s.now())
		if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			s.teardown()
			return nil, tts.NewError(tts.KindNetwork, "send config frame", err).WithVoice(req.Voice)
		}
		s.negotiated = format
		log.Debug("Negotiated session config", "format", format)
	}

	ssml := req.Text
	if !req.UseSSML {
		ssml = tts.BuildSSML(req.Text, req.Voice, req.Prosody)
	}

	requestID := newRequestID()
	if err := s.conn.WriteMessage(websocket.TextMessage, ssmlFrame(requestID, ssml, s.now())); err != nil {
		s.teardown()
		return nil, tts.NewError(tts.KindNetwork, "send utterance frame", err).WithVoice(req.Voice)
	}

	s.state = StateAwaitingTurnEnd
	audio, err := s.receiveTurn(ctx, requestID)
	if err != nil {
		s.teardown()
		return nil, withVoice(err, req.Voice)
	}

	s.state = StateReady
	s.lastUsed = s.now()
	return audio, nil
}

// receiveTurn reads frames until the turn.end matching requestID arrives.
// Audio bytes from other request ids are never mixed in: stale frames are
// skipped, because a turn may complete with an error frame and the error
// must be attributed to the current turn, not a previous one.
func (s *Session) receiveTurn(ctx context.Context, requestID string) ([]byte, error) {
	deadline := s.now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.conn.SetReadDeadline(deadline); err != nil {
		return nil, tts.NewError(tts.KindNetwork, "receive turn", err)
	}

	var audio []byte
	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil, tts.NewError(tts.KindNetwork, "receive turn", ctx.Err())
			}
			if os.IsTimeout(err) {
				return nil, tts.NewError(tts.KindSynthesis, "receive turn",
					fmt.Errorf("%w after %v", tts.ErrTurnTimeout, s.timeout))
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return nil, tts.NewError(tts.KindSynthesis, "receive turn",
					fmt.Errorf("connection closed by service: %s", closeErr.Text))
			}
			return nil, tts.NewError(tts.KindNetwork, "receive turn", err)
		}

		switch msgType {
		case websocket.TextMessage:
			headers, _ := parseTextFrame(data)
			if id := headers["X-RequestId"]; id != "" && id != requestID {
				log.Debug("Skipping frame for stale request", "path", headers["Path"], "requestId", id)
				continue
			}
			switch headers["Path"] {
			case pathTurnStart:
				log.Debug("Turn started", "requestId", requestID)
			case pathAudioMetadata:
				// Word boundary data; not needed for audio reassembly.
			case pathResponse:
				// Connection-level acknowledgement.
			case pathTurnEnd:
				if len(audio) == 0 {
					return nil, tts.NewError(tts.KindSynthesis, "receive turn", tts.ErrNoAudio)
				}
				log.Debug("Turn completed", "requestId", requestID, "bytes", len(audio))
				return audio, nil
			default:
				log.Debug("Ignoring unknown frame", "path", headers["Path"])
			}

		case websocket.BinaryMessage:
			headers, payload, err := parseBinaryFrame(data)
			if err != nil {
				return nil, tts.NewError(tts.KindSynthesis, "receive turn",
					fmt.Errorf("malformed binary frame: %w", err))
			}
			if headers["Path"] != pathAudio {
				continue
			}
			if id := headers["X-RequestId"]; id != "" && id != requestID {
				log.Debug("Skipping audio for stale request", "requestId", id)
				continue
			}
			audio = append(audio, payload...)
		}
	}
}

// connect obtains a bearer token and opens the WebSocket connection.
func (s *Session) connect(ctx context.Context) error {
	s.state = StateConnecting

	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.state = StateDisconnected
		return err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	header.Set("Origin", origin)
	header.Set("User-Agent", userAgent)
	header.Set("Pragma", "no-cache")
	header.Set("Cache-Control", "no-cache")

	urlStr := synthesisEndpoint + "&ConnectionId=" + newRequestID()
	conn, err := s.dial(ctx, urlStr, header)
	if err != nil {
		s.state = StateDisconnected
		return tts.NewError(tts.KindNetwork, "connect", err)
	}

	s.conn = conn
	s.negotiated = ""
	s.state = StateReady
	s.lastUsed = s.now()
	log.Debug("Session connected")
	return nil
}

// teardown closes and forgets the connection; caller holds s.mu.
func (s *Session) teardown() {
	s.state = StateClosing
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			log.Debug("Session close", "error", err)
		}
		s.conn = nil
	}
	s.negotiated = ""
	s.state = StateDisconnected
}

// Close tears the session down. The session may be reused afterwards; the
// next Synthesize call reconnects.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teardown()
	return nil
}

// withVoice attaches the voice to a classified error for reporting.
func withVoice(err error, voice string) error {
	var te *tts.Error
	if errors.As(err, &te) && te.Voice == "" {
		te.Voice = voice
	}
	return err
}

// newRequestID generates a session-unique request correlation id.
func newRequestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
