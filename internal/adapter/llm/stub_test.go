package llm

import "context"

// stubCompleter is a canned Completer that records how it was called.
type stubCompleter struct {
	reply string
	err   error

	calls    int
	received [][]PromptMessage
}

func (s *stubCompleter) Complete(ctx context.Context, messages []PromptMessage) (string, error) {
	s.calls++
	s.received = append(s.received, messages)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}
