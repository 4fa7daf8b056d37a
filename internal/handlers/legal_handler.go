package handlers

import (
	"html"

	"github.com/boardinghub/boardinghub-api/internal/services"
	"github.com/gofiber/fiber/v2"
)

type LegalHandler struct {
	settings *services.SettingsService
}

func NewLegalHandler(settings *services.SettingsService) *LegalHandler {
	return &LegalHandler{settings: settings}
}

func (h *LegalHandler) siteInfo() (name, supportEmail string) {
	name, supportEmail = "BoardingHub", "support@boardinghub.app"
	if h.settings == nil {
		return name, supportEmail
	}
	all, err := h.settings.All()
	if err != nil {
		return name, supportEmail
	}
	if v, ok := all["site_name"].(string); ok && v != "" {
		name = v
	}
	if v, ok := all[services.SettingSupportEmail].(string); ok && v != "" {
		supportEmail = v
	}
	return html.EscapeString(name), html.EscapeString(supportEmail)
}

func legalPage(title, body string) string {
	return `<!DOCTYPE html>
<html><head><title>` + title + `</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a}h2{color:#444;margin-top:30px}</style>
</head><body>
` + body + `
</body></html>`
}

func (h *LegalHandler) PrivacyPolicy(c *fiber.Ctx) error {
	name, support := h.siteInfo()

	return c.Type("html").SendString(legalPage("Privacy Policy - "+name, `<h1>Privacy Policy</h1>
<p>Last updated: October 2026</p>
<h2>Information We Collect</h2>
<p>We collect your name, email address and phone number when you register. Landlords additionally provide business details, permit documents and property photos. Tenants provide booking details such as move-in dates.</p>
<h2>How We Use Your Information</h2>
<p>Your data is used to operate `+name+`: to verify your account, connect tenants with landlords, process booking requests and produce reports for landlords about their own listings.</p>
<h2>Who Can See Your Data</h2>
<p>Landlords see the name and contact details of tenants who request their properties. Tenants see the contact details landlords publish on their listings. Administrators can review permit documents to verify landlords.</p>
<h2>Account Deletion</h2>
<p>You can delete your account from your profile settings. Landlords must remove their listings first and tenants must cancel active bookings.</p>
<h2>Contact</h2>
<p>For questions about this policy, contact us at `+support+`</p>`))
}

func (h *LegalHandler) TermsOfService(c *fiber.Ctx) error {
	name, support := h.siteInfo()

	return c.Type("html").SendString(legalPage("Terms of Service - "+name, `<h1>Terms of Service</h1>
<p>Last updated: October 2026</p>
<h2>Acceptance</h2>
<p>By using `+name+`, you agree to these terms.</p>
<h2>Listings</h2>
<p>Landlords must hold a valid business permit and describe their properties accurately. Listings are reviewed before they are published and may be removed if they break these terms.</p>
<h2>Bookings</h2>
<p>A booking request is not a contract until the landlord approves it. Payment is arranged directly between tenant and landlord.</p>
<h2>Reviews</h2>
<p>Only tenants with an approved or completed booking may review a property. Offensive content, contact details and spam are not allowed.</p>
<h2>Termination</h2>
<p>We may suspend or terminate accounts that violate these terms.</p>
<h2>Contact</h2>
<p>For questions, contact us at `+support+`</p>`))
}
