package pipeline

import (
	"encoding/base64"
	"encoding/json"
)

// QueryResult is the outcome of a request that produced an answer. Audio is
// nil exactly when SynthesisErr is set.
type QueryResult struct {
	Answer       string
	Audio        []byte
	SynthesisErr *SynthesisError
}

type queryResultJSON struct {
	Answer      string  `json:"answer"`
	AudioBase64 *string `json:"audio_base64"`
	TTSError    string  `json:"tts_error,omitempty"`
}

// MarshalJSON renders the wire form:
// {"answer": ..., "audio_base64": string|null, "tts_error"?: string}.
func (r *QueryResult) MarshalJSON() ([]byte, error) {
	out := queryResultJSON{Answer: r.Answer}
	if r.Audio != nil {
		enc := base64.StdEncoding.EncodeToString(r.Audio)
		out.AudioBase64 = &enc
	}
	if r.SynthesisErr != nil {
		out.TTSError = r.SynthesisErr.Error()
	}
	return json.Marshal(out)
}
