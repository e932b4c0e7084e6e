package ai

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var (
	codecOnce sync.Once
	codec     tokenizer.Codec
)

// CountTokens returns the number of cl100k_base tokens in text, or 0 when
// the codec cannot be loaded or the text cannot be encoded.
func CountTokens(text string) int {
	codecOnce.Do(func() {
		c, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err == nil {
			codec = c
		}
	})
	if codec == nil || text == "" {
		return 0
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return 0
	}
	return len(ids)
}
