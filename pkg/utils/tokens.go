package utils

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

func loadEncoding() (*tiktoken.Tiktoken, error) {
	return tiktoken.EncodingForModel("gpt-4-0613")
}

// encoding is resolved once per process. tiktoken downloads the BPE file on
// first use, and a failed download is not retried.
var encoding = onceEncoding(loadEncoding)

func onceEncoding(load func() (*tiktoken.Tiktoken, error)) func() (*tiktoken.Tiktoken, error) {
	return sync.OnceValues(load)
}

// NumTokens estimates the prompt size in tokens. Callers should treat an
// error as "unknown".
func NumTokens(text string) (int, error) {
	tkm, err := encoding()
	if err != nil {
		return 0, err
	}

	return len(tkm.Encode(text, nil, nil)), nil
}
