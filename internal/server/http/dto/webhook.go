package dto

// WebhookEvent is the Square event envelope. Only the payment fields the
// reconciliation path needs are mapped; everything else is ignored.
type WebhookEvent struct {
	Type    string      `json:"type"`
	EventID string      `json:"event_id"`
	Data    WebhookData `json:"data"`
}

// WebhookData carries the event payload.
type WebhookData struct {
	Type   string        `json:"type"`
	ID     string        `json:"id"`
	Object WebhookObject `json:"object"`
}

// WebhookObject wraps the payment object.
type WebhookObject struct {
	Payment WebhookPayment `json:"payment"`
}

// WebhookPayment is the payment snapshot inside a payment.* event.
type WebhookPayment struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	ReferenceID string `json:"reference_id"`
	Note        string `json:"note"`
	ReceiptURL  string `json:"receipt_url"`
}

// WebhookAck is the acknowledgement body returned for every delivery.
type WebhookAck struct {
	Received bool `json:"received"`
}
