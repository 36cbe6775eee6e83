package registry

import "github.com/alecripto2008/petshopdash-skool-63-sub000/pkg/models"

const defaultWebhookBase = "https://webhook.n8nlabz.com.br/webhook/"

// defaultURLs maps every identifier the gateway can reference to its static
// fallback URL, used when no row is configured for it.
func defaultURLs() map[string]string {
	identifiers := []string{
		models.WebhookCreateInstance,
		models.WebhookConfirmStatus,
		models.WebhookUpdateQR,
		models.WebhookFetchAgenda,
		models.WebhookCreateEvent,
		models.WebhookUpdateEvent,
		models.WebhookDeleteEvent,
		models.WebhookSendDocument,
		models.WebhookDeleteDocument,
		models.WebhookConfirm,
		models.WebhookBotOff,
		models.WebhookBotOn,
		models.WebhookBotPause,
		models.WebhookBotStart,
	}

	urls := make(map[string]string, len(identifiers))
	for _, identifier := range identifiers {
		urls[identifier] = defaultWebhookBase + identifier
	}

	return urls
}
