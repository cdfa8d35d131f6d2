package tts

import (
	"fmt"
	"strings"
)

// ssmlEscaper escapes the five XML special characters in utterance text.
var ssmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"'", "&apos;",
	`"`, "&quot;",
)

// BuildSSML wraps plain text in the SSML document the synthesis service
// expects: a speak element carrying the voice name and a prosody element
// with the rate/volume/pitch settings.
func BuildSSML(text, voice string, p Prosody) string {
	if p.Rate == "" || p.Volume == "" || p.Pitch == "" {
		def := DefaultProsody()
		if p.Rate == "" {
			p.Rate = def.Rate
		}
		if p.Volume == "" {
			p.Volume = def.Volume
		}
		if p.Pitch == "" {
			p.Pitch = def.Pitch
		}
	}
	return fmt.Sprintf(
		"<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='%s'>"+
			"<voice name='%s'><prosody pitch='%s' rate='%s' volume='%s'>%s</prosody></voice></speak>",
		LocaleOfVoice(voice), voice, p.Pitch, p.Rate, p.Volume, ssmlEscaper.Replace(text))
}

// LocaleOfVoice derives the locale from a provider voice id:
// "en-US-AriaNeural" yields "en-US". Ids without a region default to en-US.
func LocaleOfVoice(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) >= 2 {
		return parts[0] + "-" + parts[1]
	}
	return "en-US"
}
