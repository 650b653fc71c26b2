// Package hub fans JSON updates out to websocket subscribers. Each message
// carries a topic; a client receives only the topic it subscribed to.
package hub

// Dashboard topics.
const (
	TopicStatus = "status"
	TopicLogs   = "logs"
)

// Message is one encoded update for a topic.
type Message struct {
	Topic string
	Data  []byte
}
