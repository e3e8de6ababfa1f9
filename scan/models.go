package scan

// Kind classifies the decoded meaning of a scanned code.
type Kind string

const (
	// KindStamp means the code asks for stamps to be issued to a customer.
	KindStamp Kind = "stamp"
	// KindRedemption means the code asks for one reward to be redeemed.
	KindRedemption Kind = "redemption"
)

// Intent is the decoded meaning of a scanned payload plus the customer
// identity it names. Intents are ephemeral and never persisted.
type Intent struct {
	Kind          Kind   `json:"kind"`
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CardID        string `json:"card_id"`

	// CurrentStamps and AvailableRewards are carried only by redemption
	// payloads, where they snapshot the customer-visible card state at the
	// moment the QR was generated.
	CurrentStamps    int `json:"current_stamps,omitempty"`
	AvailableRewards int `json:"available_rewards,omitempty"`

	// Fallback marks an intent synthesized from an unrecognized payload
	// rather than decoded from the structured wire format.
	Fallback bool `json:"fallback,omitempty"`
}
