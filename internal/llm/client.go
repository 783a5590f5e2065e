package llm

import "context"

// RawResponse is the unparsed outcome of one generateContent call.
type RawResponse struct {
	Status int
	Body   []byte
}

// Transport performs exactly one POST of a request document per call.
type Transport interface {
	Post(ctx context.Context, body []byte) (RawResponse, error)
}
