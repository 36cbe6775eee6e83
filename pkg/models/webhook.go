// Package models defines the domain types shared across the gateway.
package models

import "time"

// WebhookEndpoint is one row of the webhook configuration table. The
// Identifier is the stable logical key the rest of the system resolves
// through; Name and Description exist for the configuration UI only.
type WebhookEndpoint struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Identifier  string    `json:"identifier"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Logical webhook identifiers known to the gateway.
const (
	WebhookCreateInstance = "create_evolution_instance"
	WebhookConfirmStatus  = "confirm_evolution_status"
	WebhookUpdateQR       = "update_evolution_qr"

	WebhookFetchAgenda  = "carrega_agenda"
	WebhookCreateEvent  = "cria_evento"
	WebhookUpdateEvent  = "altera_evento"
	WebhookDeleteEvent  = "exclui_evento"

	WebhookSendDocument   = "envia_rag"
	WebhookDeleteDocument = "excluir_rag"
	WebhookConfirm        = "confirma"
	WebhookBotOff         = "desliga_bot"
	WebhookBotOn          = "liga_bot"
	WebhookBotPause       = "pausa_bot"
	WebhookBotStart       = "inicia_bot"
)
