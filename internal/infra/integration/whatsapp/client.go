package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	defaultBaseURL      = "https://graph.facebook.com/v21.0"
	defaultTemplateName = "reengage_prompt"
	defaultTemplateLang = "en_US"

	// Bound on every provider call. A timeout is reported as its own status.
	sendTimeout = 10 * time.Second

	maxButtons       = 3
	maxButtonTitle   = 20
	maxButtonReplyID = 256
)

// Client talks to the WhatsApp Business Cloud API. All send methods are
// best-effort: they report outcomes through SendResult instead of errors.
type Client struct {
	accessToken  string
	phoneID      string
	templateName string
	templateLang string
	baseURL      string
	httpClient   *http.Client
}

func NewClient() *Client {
	templateName := os.Getenv("WHATSAPP_TEMPLATE_NAME")
	if templateName == "" {
		templateName = defaultTemplateName
	}
	templateLang := os.Getenv("WHATSAPP_TEMPLATE_LANG")
	if templateLang == "" {
		templateLang = defaultTemplateLang
	}

	return &Client{
		accessToken:  os.Getenv("WHATSAPP_API_TOKEN"),
		phoneID:      os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
		templateName: templateName,
		templateLang: templateLang,
		baseURL:      defaultBaseURL,
		httpClient:   &http.Client{Timeout: sendTimeout},
	}
}

func (c *Client) Configured() bool {
	return c.accessToken != "" && c.phoneID != ""
}

func (c *Client) SendText(ctx context.Context, phoneNumber, message string) SendResult {
	if !c.Configured() {
		log.Println("⚠️ WhatsApp credentials not configured, message logged only")
		return notConfigured()
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                formatPhoneNumber(phoneNumber),
		"type":              "text",
		"text": map[string]string{
			"body": message,
		},
	}

	return c.post(ctx, payload)
}

// SendInteractiveButtons sends a quick-reply button message (max 3 buttons).
// On provider rejection it degrades to a single plain-text send carrying the
// same body; the fallback itself is best-effort and only logged on failure.
func (c *Client) SendInteractiveButtons(ctx context.Context, input InteractiveButtonsInput) SendResult {
	if !c.Configured() {
		log.Println("⚠️ WhatsApp credentials not configured, buttons logged only")
		return notConfigured()
	}

	buttons := make([]map[string]interface{}, 0, maxButtons)
	for i, btn := range input.Buttons {
		if i >= maxButtons {
			break
		}
		id := btn.ID
		if id == "" {
			id = fmt.Sprintf("btn_%d_%d", i, time.Now().UnixMilli())
		}
		title := btn.Title
		if title == "" {
			title = fmt.Sprintf("Option %d", i+1)
		}
		buttons = append(buttons, map[string]interface{}{
			"type": "reply",
			"reply": map[string]string{
				"id":    truncate(id, maxButtonReplyID),
				"title": truncate(title, maxButtonTitle),
			},
		})
	}

	interactive := map[string]interface{}{
		"type": "button",
		"body": map[string]string{"text": input.BodyText},
		"action": map[string]interface{}{
			"buttons": buttons,
		},
	}
	if input.HeaderText != "" {
		interactive["header"] = map[string]string{"type": "text", "text": input.HeaderText}
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                formatPhoneNumber(input.PhoneNumber),
		"type":              "interactive",
		"interactive":       interactive,
	}

	result := c.post(ctx, payload)
	if !result.Success {
		fallback := input.BodyText + "\n\nReply with the option you want, or type MENU for more options."
		if input.HeaderText != "" {
			fallback = input.HeaderText + "\n\n" + fallback
		}
		c.sendFallbackText(ctx, input.PhoneNumber, fallback)
	}
	return result
}

// SendInteractiveList sends a sectioned list message with a plain-text
// rendering of the rows as fallback.
func (c *Client) SendInteractiveList(ctx context.Context, input InteractiveListInput) SendResult {
	if !c.Configured() {
		log.Println("⚠️ WhatsApp credentials not configured, list logged only")
		return notConfigured()
	}

	buttonText := input.ButtonText
	if buttonText == "" {
		buttonText = "View Options"
	}

	interactive := map[string]interface{}{
		"type": "list",
		"body": map[string]string{"text": input.BodyText},
		"action": map[string]interface{}{
			"button":   buttonText,
			"sections": input.Sections,
		},
	}
	if input.HeaderText != "" {
		interactive["header"] = map[string]string{"type": "text", "text": input.HeaderText}
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                formatPhoneNumber(input.PhoneNumber),
		"type":              "interactive",
		"interactive":       interactive,
	}

	result := c.post(ctx, payload)
	if !result.Success {
		c.sendFallbackText(ctx, input.PhoneNumber, renderListFallback(input))
	}
	return result
}

// SendTemplate sends a pre-approved template (HSM) message. Templates are
// already plain-format on the client side, so there is no fallback path.
func (c *Client) SendTemplate(ctx context.Context, input TemplateInput) SendResult {
	if !c.Configured() {
		log.Println("⚠️ WhatsApp credentials not configured, template logged only")
		return notConfigured()
	}

	name := input.TemplateName
	if name == "" {
		name = c.templateName
	}
	language := input.Language
	if language == "" {
		language = c.templateLang
	}

	template := map[string]interface{}{
		"name":     name,
		"language": map[string]string{"code": language},
	}
	if len(input.Components) > 0 {
		template["components"] = input.Components
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                formatPhoneNumber(input.PhoneNumber),
		"type":              "template",
		"template":          template,
	}

	return c.post(ctx, payload)
}

// SendProduct sends a catalog product card. Requires the business catalog and
// the item's product_retailer_id.
func (c *Client) SendProduct(ctx context.Context, input ProductInput) SendResult {
	if !c.Configured() {
		log.Println("⚠️ WhatsApp credentials not configured, product message logged only")
		return notConfigured()
	}

	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                formatPhoneNumber(input.PhoneNumber),
		"type":              "product",
		"product": map[string]string{
			"product_retailer_id": input.ProductRetailerID,
			"body":                input.BodyText,
		},
	}

	result := c.post(ctx, payload)
	if !result.Success && input.BodyText != "" {
		c.sendFallbackText(ctx, input.PhoneNumber, input.BodyText)
	}
	return result
}

func (c *Client) post(ctx context.Context, payload map[string]interface{}) SendResult {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("❌ WhatsApp: failed to serialize payload: %v", err)
		return SendResult{Status: StatusError, Error: err.Error()}
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return SendResult{Status: StatusError, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			log.Println("⏰ WhatsApp API request timed out")
			return SendResult{Status: StatusTimeout, Error: "Request timed out"}
		}
		log.Printf("❌ WhatsApp send error: %v", err)
		return SendResult{Status: StatusError, Error: err.Error()}
	}
	defer resp.Body.Close()

	var data apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		log.Printf("❌ WhatsApp: failed to parse response: %v", err)
		return SendResult{Status: StatusError, Error: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || data.Error != nil {
		msg := "Failed to send message"
		if data.Error != nil && data.Error.Message != "" {
			msg = data.Error.Message
		}
		log.Printf("❌ WhatsApp API returned status %d: %s", resp.StatusCode, msg)
		return SendResult{Status: StatusFailed, Error: msg}
	}

	var messageID string
	if len(data.Messages) > 0 {
		messageID = data.Messages[0].ID
	}

	log.Printf("✅ WhatsApp message sent: %s", messageID)
	return SendResult{Success: true, MessageID: messageID, Status: StatusSent}
}

func (c *Client) sendFallbackText(ctx context.Context, phoneNumber, message string) {
	if res := c.SendText(ctx, phoneNumber, message); !res.Success {
		log.Printf("⚠️ WhatsApp: plain-text fallback also failed: %s", res.Error)
	}
}

func renderListFallback(input InteractiveListInput) string {
	var sb strings.Builder
	if input.HeaderText != "" {
		sb.WriteString(input.HeaderText + "\n\n")
	}
	if input.BodyText != "" {
		sb.WriteString(input.BodyText + "\n\n")
	}
	for _, section := range input.Sections {
		if section.Title != "" {
			sb.WriteString(section.Title + "\n")
		}
		for _, row := range section.Rows {
			sb.WriteString("- " + row.Title)
			if row.Description != "" {
				sb.WriteString(": " + row.Description)
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nReply with the item name to view details, or type MENU.")
	return sb.String()
}

// formatPhoneNumber strips spaces, dashes and parentheses and ensures a
// leading + for international format.
func formatPhoneNumber(phoneNumber string) string {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(phoneNumber)
	if !strings.HasPrefix(cleaned, "+") {
		cleaned = "+" + cleaned
	}
	return cleaned
}

// truncate caps s at max bytes without cutting a multi-byte rune in half.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func notConfigured() SendResult {
	return SendResult{
		Status: StatusNotConfigured,
		Error:  "WhatsApp API credentials not configured",
	}
}
