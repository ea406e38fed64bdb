package usecase

import (
	"github.com/pkoukk/tiktoken-go"

	"autochat/internal/domain"
)

// perMessageOverhead approximates the protocol framing tokens each chat
// message costs beyond its content.
const perMessageOverhead = 4

// TiktokenCounter counts tokens with the model's BPE encoding.
type TiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTiktokenCounter builds a counter for the given model name, falling
// back to the cl100k_base encoding for models tiktoken does not know.
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, domain.WrapOp("NewTiktokenCounter", err)
		}
	}
	return &TiktokenCounter{enc: enc}, nil
}

// CountMessages implements domain.TokenCounter.
func (c *TiktokenCounter) CountMessages(msgs []domain.Message) int {
	total := 0
	for _, m := range msgs {
		total += len(c.enc.Encode(m.Content, nil, nil)) + perMessageOverhead
		for _, tc := range m.ToolCalls {
			total += len(c.enc.Encode(string(tc.Arguments), nil, nil))
		}
	}
	return total
}
