package usecase

import "fmt"

// Canned WhatsApp copy for the demo flow. Kept in one place so marketing can
// review it without digging through handler logic.

const clarificationMessage = `Sorry, I didn't catch that. 🤔

Are you a *Business Owner*, a *Customer/Shopper*, or *Just Curious*?

Reply with one of those and I'll point you the right way.`

const businessResponseMessage = `Great to meet you! 🚀

Pointhed helps businesses like yours turn WhatsApp into a customer loyalty engine. We're onboarding pilot businesses soon.

Want us to notify you when we're ready?`

const customerResponseMessage = `Thanks for letting us know! 🛍️

Pointhed works behind the scenes at the places you already shop. Keep an eye out - your favourite stores may soon be rewarding you right here on WhatsApp.`

const curiousResponseMessage = `Curiosity is how everything starts! 👀

Pointhed turns WhatsApp conversations into customer loyalty for businesses. No apps, no plastic cards, just chat.

Reply BUSINESS if you run one, or just watch this space.`

const notifyYesMessage = `You're on the list! ✅

We'll message you here the moment Pointhed is ready for business pilots.`

const notifyNoMessage = `No problem! 👍

We'll be here whenever you're ready. Reply NOTIFY at any time to get launch updates.`

const optOutConfirmationMessage = `You've been unsubscribed and won't receive further messages from Pointhed.

Reply START at any time if you change your mind.`

const optInConfirmationMessage = `Welcome back! 🎉

You've been resubscribed to Pointhed updates.`

const defaultNotifyMessage = `🎉 Great news! Pointhed is now ready for business pilots. We'd love to work with you.

Reply to this message to get started.`

func instantDemoMessage(position int) string {
	return fmt.Sprintf(`🎉 Pointhed — Instant Experience

Hi! This message is sent from Pointhed's instant demo system.

✨ You're experiencing our live WhatsApp integration
📱 This is the actual platform in action
🚀 Reply "START" to explore interactive features

📊 You are number %d on the waitlist!

Ready to transform your customer engagement?

Powered by Pointhed`, position)
}
