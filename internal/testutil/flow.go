package testutil

// DefaultFlowToken stamps scenario events when no flow token is given.
const DefaultFlowToken = "test-flow-default"

// FlowToken hands out itself on every call, so all events of one scenario
// share a flow. The empty token yields DefaultFlowToken.
type FlowToken string

// Generate returns the token.
func (f FlowToken) Generate() string {
	if f == "" {
		return DefaultFlowToken
	}
	return string(f)
}
