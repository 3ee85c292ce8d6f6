package prompt

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const (
	approxCharsPerToken = 4
	fallbackEncoding    = "cl100k_base"
)

var (
	encodersMu sync.Mutex
	encoders   = map[string]*tiktoken.Tiktoken{}

	loadEncoding       = encodingForModel
	estimateTokensFunc = defaultEstimateTokens
)

// EstimateTokens approximates how many tokens text costs model. It is only
// used for logging.
func EstimateTokens(model, text string) int {
	return estimateTokensFunc(model, text)
}

func defaultEstimateTokens(model, text string) int {
	return countTokens(encoderFor(model), text)
}

// countTokens falls back to a character ratio when no encoder is available.
func countTokens(enc *tiktoken.Tiktoken, text string) int {
	if enc != nil {
		if tokens := enc.Encode(text, nil, nil); len(tokens) > 0 {
			return len(tokens)
		}
	}
	return max(1, len(text)/approxCharsPerToken)
}

// encoderFor caches one encoder per model, including failed lookups.
func encoderFor(model string) *tiktoken.Tiktoken {
	encodersMu.Lock()
	defer encodersMu.Unlock()
	if enc, ok := encoders[model]; ok {
		return enc
	}
	enc := loadEncoding(model)
	encoders[model] = enc
	return enc
}

func encodingForModel(model string) *tiktoken.Tiktoken {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		return nil
	}
	return enc
}
