package models

// ConnectionStatus tracks the pairing state of an Evolution instance.
type ConnectionStatus string

const (
	ConnectionNotStarted ConnectionStatus = "not_started"
	ConnectionWaiting    ConnectionStatus = "waiting"
	ConnectionConnected  ConnectionStatus = "connected"
	ConnectionFailed     ConnectionStatus = "failed"
)

// DefaultMaxRetries is the number of consecutive negative status responses
// tolerated before a pairing attempt is declared failed.
const DefaultMaxRetries = 3

// ConnectionAttempt is the state of one pairing session. RetryCount only
// counts semantic "negativo" responses from the remote; transport and parse
// failures never advance it.
type ConnectionAttempt struct {
	InstanceName string           `json:"instance_name"`
	Status       ConnectionStatus `json:"status"`
	RetryCount   int              `json:"retry_count"`
	MaxRetries   int              `json:"max_retries"`
}
