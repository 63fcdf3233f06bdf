package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/pointhed/waitlist-api/internal/entity"
	"github.com/pointhed/waitlist-api/internal/infra/integration/whatsapp"
)

// Role identifiers carried in interactive reply IDs and stored in lead
// metadata. notify_yes doubles as the subscription marker the broadcast job
// selects on.
const (
	RoleBusiness  = "business"
	RoleCustomer  = "customer"
	RoleCurious   = "curious"
	RoleNotifyYes = "notify_yes"
	RoleNotifyNo  = "notify_no"
)

const webhookObject = "whatsapp_business_account"

type roleRoute struct {
	role     string
	title    string
	keywords []string
}

// Keyword fallback table, evaluated in order: first substring hit wins. The
// order matters ("no" must not shadow "notify").
var roleRoutes = []roleRoute{
	{role: RoleBusiness, title: "Business Owner", keywords: []string{"business"}},
	{role: RoleCustomer, title: "Customer / Shopper", keywords: []string{"customer", "shopper"}},
	{role: RoleCurious, title: "Just Curious", keywords: []string{"curious"}},
	{role: RoleNotifyYes, title: "Notify Me", keywords: []string{"notify", "yes"}},
	{role: RoleNotifyNo, title: "Maybe Later", keywords: []string{"maybe", "later", "no"}},
}

// Stable IDs set on outbound buttons and template quick-replies.
var replyIDRoutes = map[string]string{
	"role_business": RoleBusiness,
	"role_customer": RoleCustomer,
	"role_curious":  RoleCurious,
	RoleNotifyYes:   RoleNotifyYes,
	RoleNotifyNo:    RoleNotifyNo,
}

func routeForRole(role string) roleRoute {
	for _, route := range roleRoutes {
		if route.role == role {
			return route
		}
	}
	return roleRoute{role: role}
}

func matchKeyword(text string) (roleRoute, bool) {
	needle := strings.ToLower(text)
	for _, route := range roleRoutes {
		for _, kw := range route.keywords {
			if strings.Contains(needle, kw) {
				return route, true
			}
		}
	}
	return roleRoute{}, false
}

// WebhookRouter classifies inbound webhook events and drives the lead
// lifecycle: role selection, opt-in and opt-out. All outcomes are side
// effects; nothing is reported back to the webhook sender.
type WebhookRouter struct {
	Leads   LeadRepository
	Gateway MessageGateway
}

func NewWebhookRouter(leads LeadRepository, gateway MessageGateway) *WebhookRouter {
	return &WebhookRouter{Leads: leads, Gateway: gateway}
}

// Process handles one webhook delivery. The transport has already been
// acknowledged, so every failure here is logged and swallowed.
func (rt *WebhookRouter) Process(ctx context.Context, payload whatsapp.WebhookPayload) {
	if payload.Object != webhookObject {
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			// Delivery receipts and other subtypes arrive without messages.
			if len(change.Value.Messages) == 0 {
				continue
			}
			rt.handleMessage(ctx, change.Value.Messages[0])
			return
		}
	}
}

func (rt *WebhookRouter) handleMessage(ctx context.Context, msg whatsapp.Message) {
	phone := msg.From
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}

	switch msg.Type {
	case "button":
		// Quick-reply of a template message: payload first, button text second.
		if msg.Button == nil {
			return
		}
		if role, ok := replyIDRoutes[msg.Button.Payload]; ok {
			rt.handleRoleSelection(ctx, phone, role)
			return
		}
		if route, ok := matchKeyword(msg.Button.Payload); ok {
			rt.handleRoleSelection(ctx, phone, route.role)
			return
		}
		if route, ok := matchKeyword(msg.Button.Text); ok {
			rt.handleRoleSelection(ctx, phone, route.role)
			return
		}
		rt.sendClarification(ctx, phone)

	case "interactive":
		if msg.Interactive == nil {
			return
		}
		var replyID string
		switch {
		case msg.Interactive.ButtonReply != nil:
			replyID = msg.Interactive.ButtonReply.ID
		case msg.Interactive.ListReply != nil:
			replyID = msg.Interactive.ListReply.ID
		default:
			return
		}
		if role, ok := replyIDRoutes[replyID]; ok {
			rt.handleRoleSelection(ctx, phone, role)
			return
		}
		rt.sendClarification(ctx, phone)

	case "text":
		if msg.Text == nil {
			return
		}
		body := strings.ToLower(strings.TrimSpace(msg.Text.Body))
		switch body {
		case "stop":
			rt.handleOptOut(ctx, phone)
			return
		case "start":
			rt.handleOptIn(ctx, phone)
			return
		}
		if route, ok := matchKeyword(body); ok {
			rt.handleRoleSelection(ctx, phone, route.role)
			return
		}
		rt.sendClarification(ctx, phone)

	default:
		// Images, locations, reactions and friends are not part of the flow.
	}
}

// handleRoleSelection records the lead's self-reported role and answers with
// the canned response for it. Leads are created by the instant-demo send;
// messages from unknown numbers are dropped.
func (rt *WebhookRouter) handleRoleSelection(ctx context.Context, phone, role string) {
	lead, ok := rt.lookupLead(ctx, phone)
	if !ok {
		return
	}

	now := time.Now()
	route := routeForRole(role)
	patch := entity.LeadMetadata{
		Role:        role,
		RoleTitle:   route.title,
		RespondedAt: &now,
	}
	if err := rt.Leads.MergeMetadata(ctx, lead.ID, patch); err != nil {
		// The reply still goes out; a lost role is better than a silent bot.
		log.Printf("⚠️ failed to record role %s for %s: %v", role, phone, err)
	}

	switch role {
	case RoleBusiness:
		rt.Gateway.SendInteractiveButtons(ctx, whatsapp.InteractiveButtonsInput{
			PhoneNumber: phone,
			HeaderText:  "Pointhed",
			BodyText:    businessResponseMessage,
			Buttons: []whatsapp.Button{
				{ID: RoleNotifyYes, Title: "Notify me when ready"},
				{ID: RoleNotifyNo, Title: "Maybe later"},
			},
		})
	case RoleCustomer:
		rt.Gateway.SendText(ctx, phone, customerResponseMessage)
	case RoleCurious:
		rt.Gateway.SendText(ctx, phone, curiousResponseMessage)
	case RoleNotifyYes:
		rt.Gateway.SendText(ctx, phone, notifyYesMessage)
	case RoleNotifyNo:
		rt.Gateway.SendText(ctx, phone, notifyNoMessage)
	}
}

func (rt *WebhookRouter) handleOptOut(ctx context.Context, phone string) {
	lead, ok := rt.lookupLead(ctx, phone)
	if !ok {
		return
	}

	now := time.Now()
	optedOut := true
	patch := entity.LeadMetadata{
		OptedOut:   &optedOut,
		OptedOutAt: &now,
	}
	if err := rt.Leads.MergeMetadata(ctx, lead.ID, patch); err != nil {
		log.Printf("⚠️ failed to record opt-out for %s: %v", phone, err)
	}

	rt.Gateway.SendText(ctx, phone, optOutConfirmationMessage)
}

func (rt *WebhookRouter) handleOptIn(ctx context.Context, phone string) {
	lead, ok := rt.lookupLead(ctx, phone)
	if !ok {
		return
	}

	now := time.Now()
	optedOut := false
	patch := entity.LeadMetadata{
		OptedOut:  &optedOut,
		OptedInAt: &now,
	}
	if err := rt.Leads.MergeMetadata(ctx, lead.ID, patch); err != nil {
		log.Printf("⚠️ failed to record opt-in for %s: %v", phone, err)
	}

	rt.Gateway.SendText(ctx, phone, optInConfirmationMessage)
}

func (rt *WebhookRouter) sendClarification(ctx context.Context, phone string) {
	rt.Gateway.SendText(ctx, phone, clarificationMessage)
}

func (rt *WebhookRouter) lookupLead(ctx context.Context, phone string) (*entity.Lead, bool) {
	lead, err := rt.Leads.FindByPhone(ctx, phone)
	if err != nil {
		if !errors.Is(err, entity.ErrLeadNotFound) {
			log.Printf("❌ lead lookup failed for %s: %v", phone, err)
		}
		return nil, false
	}
	return lead, true
}
