package voice

import "bytes"

// detectFormat sniffs the container of a recorded utterance so the
// transcription request can carry the right file extension. Browsers send
// webm or ogg from MediaRecorder; wav and mp3 cover test clients.
func detectFormat(audio []byte) (string, bool) {
	switch {
	case len(audio) >= 4 && bytes.Equal(audio[:4], []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return "webm", true
	case bytes.HasPrefix(audio, []byte("OggS")):
		return "ogg", true
	case len(audio) >= 12 && bytes.HasPrefix(audio, []byte("RIFF")) && bytes.Equal(audio[8:12], []byte("WAVE")):
		return "wav", true
	case bytes.HasPrefix(audio, []byte("ID3")):
		return "mp3", true
	case len(audio) >= 2 && audio[0] == 0xFF && audio[1]&0xE0 == 0xE0:
		return "mp3", true
	}
	return "", false
}
