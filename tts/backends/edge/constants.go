// Package edge implements the Microsoft Edge consumer TTS backend: a
// bearer-token auth exchange and a persistent WebSocket session speaking
// the turn-based synthesis protocol.
package edge

import "github.com/feuyeux/hello-tts-go/tts"

const (
	trustedClientToken = "6A5AA1D4EAFF4E9FB37E23D68491D6F4"

	synthesisEndpoint = "wss://speech.platform.bing.com/consumer/speech/synthesize/" +
		"readaloud/edge/v1?TrustedClientToken=" + trustedClientToken

	voiceListEndpoint = "https://speech.platform.bing.com/consumer/speech/synthesize/" +
		"readaloud/voices/list?trustedclienttoken=" + trustedClientToken

	authEndpoint = "https://speech.platform.bing.com/consumer/speech/synthesize/" +
		"readaloud/auth/token/v1?trustedClientToken=" + trustedClientToken

	// Dial headers the service expects from a browser client.
	origin    = "chrome-extension://jdiccldimpdaibmpdkjnbmckianbfold"
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36 Edg/130.0.0.0"
)

// Frame paths used by the synthesis protocol.
const (
	pathSpeechConfig  = "speech.config"
	pathSSML          = "ssml"
	pathTurnStart     = "turn.start"
	pathTurnEnd       = "turn.end"
	pathAudioMetadata = "audio.metadata"
	pathAudio         = "audio"
	pathResponse      = "response"
)

// outputFormats maps the requested container to the provider's format id.
var outputFormats = map[tts.AudioFormat]string{
	tts.FormatMP3: "audio-24khz-48kbitrate-mono-mp3",
	tts.FormatWAV: "riff-24khz-16bit-mono-pcm",
	tts.FormatOGG: "ogg-24khz-16bit-mono-opus",
}
