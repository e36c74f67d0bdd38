package models

// Category is a routing label produced by the classifier
type Category string

const (
	CategoryIT      Category = "IT"
	CategoryFinance Category = "Finance"
)

// RouteStatus tracks an AgentState through the routing pipeline
type RouteStatus string

const (
	StatusClassifying RouteStatus = "classifying"
	StatusDispatched  RouteStatus = "dispatched"
	StatusAnswered    RouteStatus = "answered"
	StatusFailed      RouteStatus = "failed"
)

// AgentState is created per request and filled in by the router stages.
// It is never shared between requests.
type AgentState struct {
	Query          string
	Classification Category
	Answer         string
	Status         RouteStatus
	ToolsUsed      []string
}

// Failed reports whether the request ended without an answer
func (s *AgentState) Failed() bool {
	return s.Status == StatusFailed
}
