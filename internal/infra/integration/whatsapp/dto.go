package whatsapp

// Send statuses reported by the gateway. Timeout is distinct from a generic
// failure so callers can tell a slow provider from a rejecting one.
const (
	StatusSent          = "sent"
	StatusFailed        = "failed"
	StatusTimeout       = "timeout"
	StatusError         = "error"
	StatusNotConfigured = "not_configured"
)

// SendResult is the outcome of one outbound call. Sends never return a Go
// error; every failure mode is folded into the result so best-effort callers
// can inspect and move on.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

type Button struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
}

type InteractiveButtonsInput struct {
	PhoneNumber string
	HeaderText  string
	BodyText    string
	Buttons     []Button
}

type ListRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type ListSection struct {
	Title string    `json:"title,omitempty"`
	Rows  []ListRow `json:"rows"`
}

type InteractiveListInput struct {
	PhoneNumber string
	HeaderText  string
	BodyText    string
	ButtonText  string
	Sections    []ListSection
}

type TemplateComponent struct {
	Type       string              `json:"type"`
	Parameters []TemplateParameter `json:"parameters,omitempty"`
}

type TemplateParameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type TemplateInput struct {
	PhoneNumber  string
	TemplateName string
	Language     string
	Components   []TemplateComponent
}

type ProductInput struct {
	PhoneNumber       string
	ProductRetailerID string
	BodyText          string
}

type apiResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Contacts []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts"`
	Error *APIError `json:"error"`
}

type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

// ========== Inbound webhook payload ==========
// Shapes follow the Cloud API webhook components:
// https://developers.facebook.com/docs/whatsapp/cloud-api/webhooks/components

type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID      string          `json:"id"`
	Changes []WebhookChange `json:"changes"`
}

type WebhookChange struct {
	Field string       `json:"field"`
	Value WebhookValue `json:"value"`
}

type WebhookValue struct {
	MessagingProduct string    `json:"messaging_product"`
	Messages         []Message `json:"messages"`
}

type Message struct {
	From        string       `json:"from"`
	ID          string       `json:"id"`
	Timestamp   string       `json:"timestamp"`
	Type        string       `json:"type"`
	Text        *Text        `json:"text,omitempty"`
	Button      *ButtonReply `json:"button,omitempty"`
	Interactive *Interactive `json:"interactive,omitempty"`
}

type Text struct {
	Body string `json:"body"`
}

// ButtonReply is the quick-reply of a template message.
type ButtonReply struct {
	Payload string `json:"payload"`
	Text    string `json:"text"`
}

type Interactive struct {
	Type        string `json:"type"`
	ButtonReply *Reply `json:"button_reply,omitempty"`
	ListReply   *Reply `json:"list_reply,omitempty"`
}

type Reply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
